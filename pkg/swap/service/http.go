package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/coinpay/coinpay-api/pkg/app/errors"
	apphttp "github.com/coinpay/coinpay-api/pkg/app/http"
	"github.com/coinpay/coinpay-api/pkg/auth"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/store"
)

// Handler exposes the swap service over HTTP
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates the swap HTTP handler
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes mounts the swap endpoints on the given router. The router is
// expected to already carry the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/quote", apphttp.HandleError(h.quote))
	r.Post("/execute", apphttp.HandleError(h.execute))
	r.Get("/history", apphttp.HandleError(h.history))
	r.Get("/{id}/details", apphttp.HandleError(h.details))
	r.Get("/recommended-slippage", apphttp.HandleError(h.recommendedSlippage))
	r.Get("/fees/breakdown", apphttp.HandleError(h.feeBreakdown))
	r.Get("/stats", apphttp.HandleError(h.stats))
}

type executeRequest struct {
	WalletAddress     string          `json:"walletAddress" validate:"required,eth_addr"`
	FromToken         string          `json:"fromToken" validate:"required,eth_addr"`
	ToToken           string          `json:"toToken" validate:"required,eth_addr"`
	FromAmount        decimal.Decimal `json:"fromAmount"`
	SlippageTolerance decimal.Decimal `json:"slippageTolerance"`
}

type swapResponse struct {
	ID                    uuid.UUID        `json:"id"`
	WalletAddress         string           `json:"walletAddress"`
	FromToken             string           `json:"fromToken"`
	ToToken               string           `json:"toToken"`
	FromTokenSymbol       string           `json:"fromTokenSymbol"`
	ToTokenSymbol         string           `json:"toTokenSymbol"`
	FromAmount            decimal.Decimal  `json:"fromAmount"`
	ToAmount              decimal.Decimal  `json:"toAmount"`
	ExchangeRate          decimal.Decimal  `json:"exchangeRate"`
	PlatformFee           decimal.Decimal  `json:"platformFee"`
	PlatformFeePercentage decimal.Decimal  `json:"platformFeePercentage"`
	GasUsed               *string          `json:"gasUsed,omitempty"`
	GasCost               *decimal.Decimal `json:"gasCost,omitempty"`
	SlippageTolerance     decimal.Decimal  `json:"slippageTolerance"`
	PriceImpact           *decimal.Decimal `json:"priceImpact,omitempty"`
	MinimumReceived       decimal.Decimal  `json:"minimumReceived"`
	DexProvider           string           `json:"dexProvider"`
	TransactionHash       *string          `json:"transactionHash,omitempty"`
	Status                swap.Status      `json:"status"`
	ErrorMessage          *string          `json:"errorMessage,omitempty"`
	CreatedAt             string           `json:"createdAt"`
	ConfirmedAt           *string          `json:"confirmedAt,omitempty"`
}

func toSwapResponse(tx *swap.Transaction) swapResponse {
	resp := swapResponse{
		ID:                    tx.ID,
		WalletAddress:         tx.WalletAddress,
		FromToken:             tx.FromToken,
		ToToken:               tx.ToToken,
		FromTokenSymbol:       tx.FromTokenSymbol,
		ToTokenSymbol:         tx.ToTokenSymbol,
		FromAmount:            tx.FromAmount,
		ToAmount:              tx.ToAmount,
		ExchangeRate:          tx.ExchangeRate,
		PlatformFee:           tx.PlatformFee,
		PlatformFeePercentage: tx.PlatformFeePercentage,
		GasUsed:               tx.GasUsed,
		GasCost:               tx.GasCost,
		SlippageTolerance:     tx.SlippageTolerance,
		PriceImpact:           tx.PriceImpact,
		MinimumReceived:       tx.MinimumReceived,
		DexProvider:           tx.DexProvider,
		TransactionHash:       tx.TransactionHash,
		Status:                tx.Status,
		ErrorMessage:          tx.ErrorMessage,
		CreatedAt:             tx.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if tx.ConfirmedAt != nil {
		confirmed := tx.ConfirmedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ConfirmedAt = &confirmed
	}
	return resp
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) error {
	fromToken := r.URL.Query().Get("fromToken")
	toToken := r.URL.Query().Get("toToken")
	if fromToken == "" || toToken == "" {
		return apperrors.BadRequestError(nil, "fromToken and toToken are required")
	}

	amount, err := parseDecimalParam(r, "amount")
	if err != nil {
		return err
	}

	slippage := swap.RecommendSlippage(amount).RecommendedSlippage
	if raw := r.URL.Query().Get("slippage"); raw != "" {
		slippage, err = decimal.NewFromString(raw)
		if err != nil {
			return apperrors.BadRequestError(err, "slippage is not a valid number")
		}
	}

	result, err := h.svc.GetQuote(r.Context(), fromToken, toToken, amount, slippage)
	if err != nil {
		return h.mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, err.Error())
	}

	result, err := h.svc.Execute(r.Context(), ExecuteParams{
		UserID:        userID,
		WalletAddress: req.WalletAddress,
		FromToken:     req.FromToken,
		ToToken:       req.ToToken,
		Amount:        req.FromAmount,
		Slippage:      req.SlippageTolerance,
	})
	if err != nil {
		return h.mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var status *swap.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := swap.Status(raw)
		status = &parsed
	}

	page := parsePage(r)
	swaps, err := h.svc.History(r.Context(), userID, status, page)
	if err != nil {
		return h.mapError(err)
	}

	responses := make([]swapResponse, len(swaps))
	for i, tx := range swaps {
		responses[i] = toSwapResponse(tx)
	}
	apphttp.WriteJSON(w, http.StatusOK, responses)
	return nil
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	swapID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid swap id")
	}

	record, err := h.svc.SwapByID(r.Context(), userID, swapID)
	if err != nil {
		return h.mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, toSwapResponse(record))
	return nil
}

func (h *Handler) recommendedSlippage(w http.ResponseWriter, r *http.Request) error {
	amount, err := parseDecimalParam(r, "amount")
	if err != nil {
		return err
	}

	rec, err := h.svc.RecommendSlippage(amount)
	if err != nil {
		return h.mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, rec)
	return nil
}

func (h *Handler) feeBreakdown(w http.ResponseWriter, r *http.Request) error {
	amount, err := parseDecimalParam(r, "amount")
	if err != nil {
		return err
	}

	breakdown, err := h.svc.FeeBreakdown(amount, r.URL.Query().Get("fromToken"))
	if err != nil {
		return h.mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, breakdown)
	return nil
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	stats, err := h.svc.UserStats(r.Context(), userID)
	if err != nil {
		return h.mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, stats)
	return nil
}

// mapError translates domain errors into categorized service errors
func (h *Handler) mapError(err error) error {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	var insufficient *swap.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		return apperrors.UnprocessableError(err, insufficient.Error())
	case errors.Is(err, swap.ErrInvalidAmount),
		errors.Is(err, swap.ErrInvalidSlippage),
		errors.Is(err, swap.ErrSameToken),
		errors.Is(err, swap.ErrUnsupportedPair),
		errors.Is(err, errInvalidStatus):
		return apperrors.BadRequestError(err, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFoundError(err, "swap not found")
	default:
		h.logger.Error("unexpected error handling swap request", zap.Error(err))
		return apperrors.GeneralError(err)
	}
}

func parseDecimalParam(r *http.Request, name string) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return decimal.Zero, apperrors.BadRequestError(nil, name+" is required")
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.BadRequestError(err, name+" is not a valid number")
	}
	return value, nil
}

func parsePage(r *http.Request) store.Page {
	page := store.Page{}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			page.Limit = size
		}
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			page = page.Normalize()
			page.Offset = (n - 1) * page.Limit
		}
	}
	return page
}
