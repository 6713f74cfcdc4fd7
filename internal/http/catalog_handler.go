package http

import (
	"net/http"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/fjod/go_pizza/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// PriceCatalog is the read side of the product price table.
type PriceCatalog interface {
	Products() []string
	Entry(productKey string) (domain.ProductPriceEntry, bool)
	Lookup(productKey string, lang domain.Language, variant domain.Variant) (decimal.Decimal, bool)
}

// Quoter prices a selection without adding it anywhere.
type Quoter interface {
	Quote(productKey string, lang domain.Language, sel pricing.Selection) (pricing.Quote, error)
}

type CatalogHandler struct {
	catalog PriceCatalog
	quoter  Quoter
	texts   *i18n.Bundle
}

func NewCatalogHandler(catalog PriceCatalog, quoter Quoter, texts *i18n.Bundle) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		quoter:  quoter,
		texts:   texts,
	}
}

type ProductDTO struct {
	ID       string                             `json:"id"`
	Category domain.Category                    `json:"category"`
	Units    int64                              `json:"units"`
	Currency domain.Currency                    `json:"currency"`
	Prices   map[domain.Variant]decimal.Decimal `json:"prices"`
}

type PriceDTO struct {
	ProductID string          `json:"productId"`
	Language  domain.Language `json:"language"`
	Variant   domain.Variant  `json:"variant"`
	Currency  domain.Currency `json:"currency"`
	Price     decimal.Decimal `json:"price"`
	Formatted string          `json:"formatted"`
}

type QuoteDTO struct {
	ProductID       string          `json:"productId"`
	Currency        domain.Currency `json:"currency"`
	Variant         domain.Variant  `json:"variant"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	SizeSurcharge   decimal.Decimal `json:"sizeSurcharge"`
	CheeseSurcharge decimal.Decimal `json:"cheeseSurcharge"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Formatted       string          `json:"formatted"`
}

// GET /api/v1/catalog
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	lang := getLanguage(r.Context())

	products := make([]ProductDTO, 0)
	for _, key := range h.catalog.Products() {
		entry, ok := h.catalog.Entry(key)
		if !ok {
			continue
		}
		prices := entry.Prices[lang]
		if len(prices) == 0 {
			continue
		}
		products = append(products, ProductDTO{
			ID:       entry.ID,
			Category: entry.Category,
			Units:    entry.Units(),
			Currency: domain.CurrencyFor(lang),
			Prices:   prices,
		})
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/catalog/{product_id}/price?variant=
func (h *CatalogHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if _, ok := h.catalog.Entry(productID); !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "unknown product "+productID)
		return
	}

	lang := getLanguage(r.Context())
	variant := domain.Variant(r.URL.Query().Get("variant"))
	if variant == "" {
		variant = domain.VariantNormal
	}

	price, ok := h.catalog.Lookup(productID, lang, variant)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "price_unavailable", "no price for this language and variant")
		return
	}

	currency := domain.CurrencyFor(lang)
	respondJSON(w, http.StatusOK, PriceDTO{
		ProductID: productID,
		Language:  lang,
		Variant:   variant,
		Currency:  currency,
		Price:     price,
		Formatted: i18n.FormatPrice(price, currency),
	})
}

// POST /api/v1/catalog/{product_id}/quote
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	entry, ok := h.catalog.Entry(productID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "unknown product "+productID)
		return
	}

	var opts SelectionDTO
	if err := decodeJSON(r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	q, err := h.quoter.Quote(productID, getLanguage(r.Context()), opts.selectionFor(entry.Category))
	if err != nil {
		handleError(w, r, h.texts, err)
		return
	}
	respondJSON(w, http.StatusOK, QuoteDTO{
		ProductID:       q.ProductID,
		Currency:        q.Currency,
		Variant:         q.Variant,
		BasePrice:       q.BasePrice,
		SizeSurcharge:   q.SizeSurcharge,
		CheeseSurcharge: q.CheeseSurcharge,
		UnitPrice:       q.UnitPrice,
		Formatted:       i18n.FormatPrice(q.UnitPrice, q.Currency),
	})
}
