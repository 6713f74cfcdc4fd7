package domain

import "github.com/shopspring/decimal"

type Language string

const (
	LanguageEnglish   Language = "en"
	LanguageNorwegian Language = "no"
)

// ParseLanguage falls back to English for anything it does not recognise.
func ParseLanguage(s string) Language {
	if Language(s) == LanguageNorwegian {
		return LanguageNorwegian
	}
	return LanguageEnglish
}

type Currency string

const (
	CurrencyNOK Currency = "NOK"
	CurrencyUSD Currency = "USD"
)

// CurrencyFor returns the currency a price quoted in lang is expressed in.
func CurrencyFor(lang Language) Currency {
	if lang == LanguageNorwegian {
		return CurrencyNOK
	}
	return CurrencyUSD
}

// Variant selects one price field of a catalog entry.
type Variant string

const (
	VariantNormal      Variant = "normal"
	VariantLarge       Variant = "large"
	VariantSmallDrink  Variant = "0.33L"
	VariantMediumDrink Variant = "0.5L"
	VariantLargeDrink  Variant = "1.5L"
)

func (v Variant) IsDrinkVolume() bool {
	return v == VariantSmallDrink || v == VariantMediumDrink || v == VariantLargeDrink
}

type Category string

const (
	CategoryPizza     Category = "pizza"
	CategoryPasta     Category = "pasta"
	CategorySalad     Category = "salad"
	CategoryDessert   Category = "dessert"
	CategoryDrinks    Category = "drinks"
	CategoryDips      Category = "dips"
	CategoryPromotion Category = "promotion"
)

// IsPizzaType reports whether cheese options apply to the category.
func (c Category) IsPizzaType() bool {
	return c == CategoryPizza || c == CategoryPromotion
}

// ProductPriceEntry holds the per-language, per-variant base prices of one product.
type ProductPriceEntry struct {
	ID       string
	Category Category
	// BundleUnits is the number of physical items a bundle contains; 0 or 1 for ordinary products.
	BundleUnits int
	Prices      map[Language]map[Variant]decimal.Decimal
}

// Units returns the surcharge multiplier of the entry.
func (e ProductPriceEntry) Units() int64 {
	if e.BundleUnits > 1 {
		return int64(e.BundleUnits)
	}
	return 1
}

func (e ProductPriceEntry) Price(lang Language, variant Variant) (decimal.Decimal, bool) {
	prices, ok := e.Prices[lang]
	if !ok {
		return decimal.Zero, false
	}
	p, ok := prices[variant]
	return p, ok
}
