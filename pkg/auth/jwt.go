// Package auth validates bearer tokens and carries the authenticated user
// through the request context.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validator validates HS256-signed JWT tokens
type Validator struct {
	signingKey []byte
	issuer     string
	logger     *zap.Logger
}

// NewValidator creates a new JWT validator
func NewValidator(signingKey, issuer string, logger *zap.Logger) *Validator {
	return &Validator{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		logger:     logger,
	}
}

// ValidateToken validates a JWT token and returns the claims
func (v *Validator) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	if v.issuer != "" {
		iss, ok := claims["iss"].(string)
		if !ok || iss != v.issuer {
			return nil, fmt.Errorf("invalid issuer")
		}
	}

	return claims, nil
}

// UserID extracts the subject claim as a user UUID
func (v *Validator) UserID(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("token has no subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a valid user ID: %w", err)
	}
	return userID, nil
}

// Middleware authenticates requests with a Bearer token and stores the
// user ID in the request context.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := v.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			v.logger.Debug("token validation failed", zap.Error(err))
			writeUnauthorized(w, "invalid token")
			return
		}

		userID, err := v.UserID(claims)
		if err != nil {
			writeUnauthorized(w, "invalid token subject")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
