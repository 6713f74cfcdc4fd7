package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_pizza/internal/checkout"
	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
)

// UserLookup resolves the caller's registered profile.
type UserLookup interface {
	Lookup(ctx context.Context, email string) (domain.User, bool, error)
}

type CheckoutSessions interface {
	For(userID string) *checkout.Controller
}

type CheckoutHandler struct {
	sessions CheckoutSessions
	users    UserLookup
	texts    *i18n.Bundle
	timeout  time.Duration
}

func NewCheckoutHandler(sessions CheckoutSessions, users UserLookup, texts *i18n.Bundle, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		users:    users,
		texts:    texts,
		timeout:  timeout,
	}
}

type CheckoutStepDTO struct {
	Step     checkout.Step         `json:"step"`
	Delivery checkout.DeliveryForm `json:"delivery"`
	Payment  checkout.PaymentForm  `json:"payment"`
}

type SummaryResponseDTO struct {
	Step    checkout.Step    `json:"step"`
	Summary checkout.Summary `json:"summary"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var user *domain.User
	if email := getUserEmail(r.Context()); email != "" {
		u, ok, err := h.users.Lookup(ctx, email)
		if err != nil {
			handleError(w, r, h.texts, err)
			return
		}
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "no account for "+email)
			return
		}
		user = &u
	}

	ctrl := h.sessions.For(cartOwner(r.Context()))
	if _, err := ctrl.Begin(ctx, user, getLanguage(r.Context())); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.respondStep(w, ctrl, http.StatusOK)
}

// POST /api/v1/checkout/delivery
func (h *CheckoutHandler) SubmitDelivery(w http.ResponseWriter, r *http.Request) {
	var form checkout.DeliveryForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ctrl := h.sessions.For(cartOwner(r.Context()))
	if err := ctrl.SubmitDelivery(form); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.respondStep(w, ctrl, http.StatusOK)
}

// GET /api/v1/checkout/summary
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ctrl := h.sessions.For(cartOwner(r.Context()))
	sum, err := ctrl.Summary(ctx)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusOK, SummaryResponseDTO{Step: ctrl.Step(), Summary: sum})
}

// POST /api/v1/checkout/payment
//
// Blocks for the processing delay; a client that disconnects abandons the checkout.
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form checkout.PaymentForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	conf, err := h.sessions.For(cartOwner(r.Context())).SubmitPayment(ctx, form)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusCreated, conf)
}

// GET /api/v1/checkout/confirmation
func (h *CheckoutHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	conf, err := h.sessions.For(cartOwner(r.Context())).Confirmation()
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusOK, conf)
}

// DELETE /api/v1/checkout
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.sessions.For(cartOwner(r.Context())).Cancel(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) respondStep(w http.ResponseWriter, ctrl *checkout.Controller, status int) {
	delivery, payment := ctrl.Forms()
	respondJSON(w, status, CheckoutStepDTO{
		Step:     ctrl.Step(),
		Delivery: delivery,
		Payment:  payment,
	})
}
