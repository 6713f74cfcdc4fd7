package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_pizza/internal/cart"
	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/fjod/go_pizza/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartService interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) (domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	Clear(ctx context.Context, userID string) error
	SetOpen(ctx context.Context, userID string, open bool) error
}

// LineItemFactory prices a selection into a new cart line.
type LineItemFactory interface {
	NewLineItem(productKey string, lang domain.Language, sel pricing.Selection, quantity int) (domain.CartItem, error)
}

type CartHandler struct {
	carts   CartService
	lines   LineItemFactory
	catalog PriceCatalog
	texts   *i18n.Bundle
	timeout time.Duration
}

func NewCartHandler(carts CartService, lines LineItemFactory, catalog PriceCatalog, texts *i18n.Bundle, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		lines:   lines,
		catalog: catalog,
		texts:   texts,
		timeout: timeout,
	}
}

// SelectionDTO carries the customer's option choices; fields that do not apply to the product are ignored.
type SelectionDTO struct {
	Size          domain.Size         `json:"size,omitempty"`
	CheeseOption  domain.CheeseOption `json:"cheeseOption,omitempty"`
	IsWellDone    bool                `json:"isWellDone,omitempty"`
	DrinkSize     domain.Variant      `json:"drinkSize,omitempty"`
	DefaultSize   domain.Size         `json:"defaultSize,omitempty"`
	DefaultCheese domain.CheeseOption `json:"defaultCheese,omitempty"`
}

func (o SelectionDTO) selectionFor(c domain.Category) pricing.Selection {
	switch c {
	case domain.CategoryPizza, domain.CategoryPromotion:
		return pricing.PizzaOptions{
			Size:          o.Size,
			Cheese:        o.CheeseOption,
			WellDone:      o.IsWellDone,
			DefaultSize:   o.DefaultSize,
			DefaultCheese: o.DefaultCheese,
		}
	case domain.CategoryPasta:
		return pricing.PastaOptions{Size: o.Size, DefaultSize: o.DefaultSize}
	case domain.CategorySalad:
		return pricing.SaladOptions{Size: o.Size, DefaultSize: o.DefaultSize}
	case domain.CategoryDrinks:
		return pricing.DrinkOptions{Volume: o.DrinkSize}
	case domain.CategoryDessert:
		return pricing.DessertOptions{}
	case domain.CategoryDips:
		return pricing.DipOptions{}
	default:
		return nil
	}
}

type AddItemRequestDTO struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Options   SelectionDTO `json:"options"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type SetOpenRequestDTO struct {
	IsOpen bool `json:"isCartOpen"`
}

type CartResponseDTO struct {
	UserID          string            `json:"userId"`
	Items           []domain.CartItem `json:"items"`
	TotalItems      int               `json:"totalItems"`
	TotalPrice      decimal.Decimal   `json:"totalPrice"`
	Currencies      []domain.Currency `json:"currencies"`
	MixedCurrencies bool              `json:"mixedCurrencies"`
	FormattedTotal  string            `json:"formattedTotal,omitempty"`
	IsOpen          bool              `json:"isCartOpen"`
}

func toCartResponse(c *cart.Cart) CartResponseDTO {
	resp := CartResponseDTO{
		UserID:          c.UserID(),
		Items:           c.Items(),
		TotalItems:      c.TotalItems(),
		TotalPrice:      c.TotalPrice(),
		Currencies:      c.Currencies(),
		MixedCurrencies: c.HasMixedCurrencies(),
		IsOpen:          c.IsOpen(),
	}
	if resp.Items == nil {
		resp.Items = make([]domain.CartItem, 0)
	}
	if resp.Currencies == nil {
		resp.Currencies = make([]domain.Currency, 0)
	}
	if len(resp.Currencies) == 1 {
		resp.FormattedTotal = i18n.FormatPrice(resp.TotalPrice, resp.Currencies[0])
	}
	return resp
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respondCart(ctx, w, r, http.StatusOK)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	entry, ok := h.catalog.Entry(req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "unknown product "+req.ProductID)
		return
	}

	item, err := h.lines.NewLineItem(req.ProductID, getLanguage(r.Context()), req.Options.selectionFor(entry.Category), req.Quantity)
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	if _, err := h.carts.AddItem(ctx, cartOwner(r.Context()), item); err != nil {
		handleError(w, r, h.texts, err)
		return
	}

	h.respondCart(ctx, w, r, http.StatusCreated)
}

// PUT /api/v1/cart/items/{item_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "missing_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.carts.UpdateQuantity(ctx, cartOwner(r.Context()), itemID, req.Quantity); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.respondCart(ctx, w, r, http.StatusOK)
}

// DELETE /api/v1/cart/items/{item_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.RemoveItem(ctx, cartOwner(r.Context()), chi.URLParam(r, "item_id")); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.respondCart(ctx, w, r, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.Clear(ctx, cartOwner(r.Context())); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.respondCart(ctx, w, r, http.StatusOK)
}

// PUT /api/v1/cart/open
func (h *CartHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SetOpenRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.carts.SetOpen(ctx, cartOwner(r.Context()), req.IsOpen); err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	h.respondCart(ctx, w, r, http.StatusOK)
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, r *http.Request, status int) {
	c, err := h.carts.Get(ctx, cartOwner(r.Context()))
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, status, toCartResponse(c))
}
