// Package pricing turns a product, a language and a selection into a frozen line price.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrInvalidSelection = errors.New("selection does not fit product")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// Catalog is the subset of the price catalog the engine reads.
type Catalog interface {
	Entry(productKey string) (domain.ProductPriceEntry, bool)
	Lookup(productKey string, lang domain.Language, variant domain.Variant) (decimal.Decimal, bool)
}

// Quote is the price breakdown of one unit.
type Quote struct {
	ProductID       string
	Category        domain.Category
	Language        domain.Language
	Currency        domain.Currency
	Variant         domain.Variant
	BasePrice       decimal.Decimal
	SizeSurcharge   decimal.Decimal
	CheeseSurcharge decimal.Decimal
	UnitPrice       decimal.Decimal
}

func (q Quote) LineTotal(quantity int) decimal.Decimal {
	return q.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

type Engine struct {
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewEngine(catalog Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Quote prices one unit of productKey as selected in lang.
// lang is the language active when the customer made the selection.
func (e *Engine) Quote(productKey string, lang domain.Language, sel Selection) (Quote, error) {
	entry, ok := e.catalog.Entry(productKey)
	if !ok {
		e.logger.Warn("product missing from catalog", zap.String("product_id", productKey))
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productKey)
	}
	if sel == nil || !sel.fits(entry.Category) {
		return Quote{}, fmt.Errorf("%w: %s is %s", ErrInvalidSelection, productKey, entry.Category)
	}

	opts := sel.resolve()
	if err := opts.validate(); err != nil {
		return Quote{}, fmt.Errorf("%s: %w", productKey, err)
	}

	variant := opts.variant()
	base, ok := e.catalog.Lookup(productKey, lang, variant)
	if !ok {
		e.logger.Warn("missing price data",
			zap.String("product_id", productKey),
			zap.String("language", string(lang)),
			zap.String("variant", string(variant)))
		return Quote{}, fmt.Errorf("%w: %s/%s/%s", ErrPriceUnavailable, productKey, lang, variant)
	}

	currency := domain.CurrencyFor(lang)
	units := decimal.NewFromInt(entry.Units())

	sizeSurcharge := decimal.Zero
	if opts.size == domain.SizeLarge && !opts.sizePinned {
		sizeSurcharge = sizeSurchargeFor(entry.Category, currency).Mul(units)
	}

	cheeseSurcharge := decimal.Zero
	if entry.Category.IsPizzaType() && !opts.cheesePinned {
		cheeseSurcharge = cheeseSurchargeFor(opts.cheese, currency).Mul(units)
	}

	return Quote{
		ProductID:       productKey,
		Category:        entry.Category,
		Language:        lang,
		Currency:        currency,
		Variant:         variant,
		BasePrice:       base,
		SizeSurcharge:   sizeSurcharge,
		CheeseSurcharge: cheeseSurcharge,
		UnitPrice:       base.Add(sizeSurcharge).Add(cheeseSurcharge),
	}, nil
}

// NewLineItem quotes the selection and freezes price and currency onto a new cart line.
func (e *Engine) NewLineItem(productKey string, lang domain.Language, sel Selection, quantity int) (domain.CartItem, error) {
	if quantity <= 0 {
		return domain.CartItem{}, ErrInvalidQuantity
	}
	q, err := e.Quote(productKey, lang, sel)
	if err != nil {
		return domain.CartItem{}, err
	}

	opts := sel.resolve()
	item := domain.CartItem{
		ID:             e.newID(),
		ProductID:      productKey,
		TranslationKey: productKey,
		Type:           q.Category,
		Quantity:       quantity,
		Currency:       q.Currency,
		IsPromotion:    q.Category == domain.CategoryPromotion,
		Price:          q.LineTotal(quantity),
		AddedAt:        e.now(),
		Options: domain.ItemOptions{
			DrinkSize: opts.drinkSize,
			ExtraPrices: domain.ExtraPrices{
				Size:   q.SizeSurcharge,
				Cheese: q.CheeseSurcharge,
			},
			BasePrice:        q.BasePrice,
			TotalPrice:       q.UnitPrice,
			OriginalLanguage: lang,
		},
	}
	if opts.drinkSize == "" && opts.size != "" {
		item.Options.Size = opts.size
	}
	if q.Category.IsPizzaType() {
		item.Options.CheeseOption = opts.cheese
		item.Options.IsWellDone = opts.wellDone
	}
	return item, nil
}
