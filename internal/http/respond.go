package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_pizza/internal/accounts"
	"github.com/fjod/go_pizza/internal/cart"
	"github.com/fjod/go_pizza/internal/checkout"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/fjod/go_pizza/internal/orders"
	"github.com/fjod/go_pizza/internal/pricing"
	"github.com/fjod/go_pizza/internal/storage"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

type errorMapping struct {
	target error
	status int
	code   string
	// key is the translation shown to the customer, if any.
	key string
}

var errorMappings = []errorMapping{
	{checkout.ErrMixedCurrency, http.StatusConflict, "mixed_currency", "cart.mixedCurrencyError.description"},
	{checkout.ErrEmptyCart, http.StatusConflict, "empty_cart", "cart.empty"},
	{checkout.ErrIllegalStep, http.StatusConflict, "illegal_step", ""},
	{checkout.ErrNotAuthenticated, http.StatusUnauthorized, "unauthenticated", ""},
	{checkout.ErrInvalidForm, http.StatusBadRequest, "invalid_form", ""},
	{accounts.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "auth.invalidCredentials"},
	{accounts.ErrNotAuthenticated, http.StatusUnauthorized, "unauthenticated", ""},
	{accounts.ErrInvalidUser, http.StatusBadRequest, "invalid_user", ""},
	{pricing.ErrUnknownProduct, http.StatusNotFound, "unknown_product", ""},
	{pricing.ErrPriceUnavailable, http.StatusUnprocessableEntity, "price_unavailable", ""},
	{pricing.ErrInvalidSelection, http.StatusBadRequest, "invalid_selection", ""},
	{pricing.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity", ""},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity", ""},
	{cart.ErrItemNotFound, http.StatusNotFound, "item_not_found", ""},
	{orders.ErrOrderNotFound, http.StatusNotFound, "order_not_found", ""},
	{orders.ErrEmptyOrder, http.StatusBadRequest, "empty_order", ""},
	{orders.ErrInvalidOrder, http.StatusBadRequest, "invalid_order", ""},
	{storage.ErrUnavailable, http.StatusServiceUnavailable, "service_unavailable", ""},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout", ""},
}

// handleError converts a domain error into its HTTP status and error code.
func handleError(w http.ResponseWriter, r *http.Request, texts *i18n.Bundle, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := ErrorResponse{Error: err.Error(), Code: m.code}
		if m.key != "" && texts != nil {
			resp.Details = texts.For(getLanguage(r.Context())).T(m.key)
		}
		respondJSON(w, m.status, resp)
		return
	}
	zap.L().Error("unhandled request error",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
