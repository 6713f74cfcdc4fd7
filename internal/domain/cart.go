package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Size string

const (
	SizeSmall Size = "small"
	SizeLarge Size = "large"
)

type CheeseOption string

const (
	CheeseNormal CheeseOption = "normal"
	CheeseExtra  CheeseOption = "extra"
	CheeseDouble CheeseOption = "double"
)

type ExtraPrices struct {
	Size   decimal.Decimal `json:"size"`
	Cheese decimal.Decimal `json:"cheese"`
}

// ItemOptions is the configuration and cached price breakdown of a line.
// TotalPrice is the per-unit price computed when the line was added.
type ItemOptions struct {
	Size             Size            `json:"size,omitempty"`
	CheeseOption     CheeseOption    `json:"cheeseOption,omitempty"`
	IsWellDone       bool            `json:"isWellDone,omitempty"`
	DrinkSize        Variant         `json:"drinkSize,omitempty"`
	ExtraPrices      ExtraPrices     `json:"extraPrices"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	OriginalLanguage Language        `json:"originalLanguage"`
}

type CartItem struct {
	ID             string      `json:"id"`
	ProductID      string      `json:"productId"`
	TranslationKey string      `json:"translationKey"`
	Name           string      `json:"name,omitempty"`
	Type           Category    `json:"type"`
	Quantity       int         `json:"quantity"`
	Currency       Currency    `json:"currency"`
	Options        ItemOptions `json:"options"`
	IsPromotion    bool        `json:"isPromotion,omitempty"`
	IncludedWith   string      `json:"includedWith,omitempty"`
	// Price is the total for the full quantity.
	Price   decimal.Decimal `json:"price"`
	AddedAt time.Time       `json:"addedAt"`
}

// UnitPrice recovers the per-unit price of the line.
func (i CartItem) UnitPrice() decimal.Decimal {
	if !i.Options.TotalPrice.IsZero() {
		return i.Options.TotalPrice
	}
	if i.Quantity > 0 {
		return i.Price.Div(decimal.NewFromInt(int64(i.Quantity)))
	}
	return i.Price
}

// SameConfiguration reports whether two lines may be merged into one.
func (i CartItem) SameConfiguration(other CartItem) bool {
	return i.ProductID == other.ProductID &&
		i.Options.Size == other.Options.Size &&
		i.Options.CheeseOption == other.Options.CheeseOption &&
		i.Options.IsWellDone == other.Options.IsWellDone &&
		i.Options.DrinkSize == other.Options.DrinkSize &&
		i.Currency == other.Currency
}

// Cart is the persisted form of a user's cart.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	IsOpen    bool       `json:"isCartOpen"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
