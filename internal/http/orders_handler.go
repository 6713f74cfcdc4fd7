package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	Tick(ctx context.Context, userID string, now time.Time) ([]domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, userID, orderID string, now time.Time) (domain.Order, error)
	MinutesRemaining(o domain.Order, now time.Time) int
}

type OrdersHandler struct {
	orders  OrderService
	texts   *i18n.Bundle
	timeout time.Duration
	now     func() time.Time
}

func NewOrdersHandler(orders OrderService, texts *i18n.Bundle, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		texts:   texts,
		timeout: timeout,
		now:     time.Now,
	}
}

type OrderResponseDTO struct {
	domain.Order
	StatusLabel      string `json:"statusLabel"`
	MinutesRemaining int    `json:"minutesRemaining"`
	ReadyIn          string `json:"readyIn,omitempty"`
	FormattedTotal   string `json:"formattedTotal"`
}

// GET /api/v1/orders
//
// Each read runs one lifecycle tick for the caller's orders before listing them.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := getUserEmail(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	now := h.now()
	if _, err := h.orders.Tick(ctx, email, now); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	list, err := h.orders.List(ctx, email)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}

	tr := h.texts.For(getLanguage(r.Context()))
	dtos := make([]OrderResponseDTO, 0, len(list))
	for _, o := range list {
		dtos = append(dtos, h.convertOrder(tr, o, now))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// POST /api/v1/orders/{order_id}/status
//
// Called by a client whose countdown reached zero.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := getUserEmail(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	now := h.now()
	o, err := h.orders.UpdateOrderStatus(ctx, email, orderID, now)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusOK, h.convertOrder(h.texts.For(getLanguage(r.Context())), o, now))
}

func (h *OrdersHandler) convertOrder(tr i18n.Translator, o domain.Order, now time.Time) OrderResponseDTO {
	if o.Items == nil {
		o.Items = make([]domain.CartItem, 0)
	}
	dto := OrderResponseDTO{
		Order:          o,
		StatusLabel:    tr.T("profile.orders.status." + string(o.Status)),
		FormattedTotal: i18n.FormatPrice(o.TotalPrice, o.Currency),
	}
	if o.Status.IsActive() {
		dto.MinutesRemaining = h.orders.MinutesRemaining(o, now)
		dto.ReadyIn = i18n.Substitute(tr.T("profile.orders.estimatedTime.readyIn"), map[string]string{
			"minutes": strconv.Itoa(dto.MinutesRemaining),
		})
	}
	return dto
}
