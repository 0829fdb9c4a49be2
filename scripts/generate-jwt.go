//go:build ignore

// This script generates a JWT token for calling the swap API locally.
// Run with: go run scripts/generate-jwt.go
//
// The signing key and issuer must match auth.signing_key and auth.issuer
// in the server configuration.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	signingKey := os.Getenv("COINPAY_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "devSecret123456789012345678901234"
	}

	issuer := os.Getenv("COINPAY_ISSUER")
	if issuer == "" {
		issuer = "coinpay-api"
	}

	userID := os.Getenv("COINPAY_USER_ID")
	if userID == "" {
		userID = uuid.NewString()
	}
	if _, err := uuid.Parse(userID); err != nil {
		fmt.Fprintf(os.Stderr, "COINPAY_USER_ID must be a UUID: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Swap API JWT Token ===")
	fmt.Println()
	fmt.Println("User ID:", userID)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(signed)
	fmt.Println()
	fmt.Println("To use this token:")
	fmt.Println(`  curl -H "Authorization: Bearer <token>" http://localhost:8080/api/swap/stats`)
}
