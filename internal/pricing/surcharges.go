package pricing

import (
	"fmt"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
)

type flat struct{ nok, usd int64 }

func (f flat) in(c domain.Currency) decimal.Decimal {
	if c == domain.CurrencyNOK {
		return decimal.NewFromInt(f.nok)
	}
	return decimal.NewFromInt(f.usd)
}

// Large-size surcharges are flat amounts per category, independent of the base price.
var sizeSurcharges = map[domain.Category]flat{
	domain.CategoryPizza:     {nok: 70, usd: 7},
	domain.CategoryPromotion: {nok: 70, usd: 7},
	domain.CategoryPasta:     {nok: 50, usd: 5},
	domain.CategorySalad:     {nok: 40, usd: 4},
}

var cheeseSurcharges = map[domain.CheeseOption]flat{
	domain.CheeseExtra:  {nok: 20, usd: 2},
	domain.CheeseDouble: {nok: 35, usd: 4},
}

func sizeSurchargeFor(c domain.Category, cur domain.Currency) decimal.Decimal {
	f, ok := sizeSurcharges[c]
	if !ok {
		return decimal.Zero
	}
	return f.in(cur)
}

func cheeseSurchargeFor(o domain.CheeseOption, cur domain.Currency) decimal.Decimal {
	f, ok := cheeseSurcharges[o]
	if !ok {
		return decimal.Zero
	}
	return f.in(cur)
}

func (r resolved) validate() error {
	switch r.size {
	case "", domain.SizeSmall, domain.SizeLarge:
	default:
		return fmt.Errorf("%w: size %q", ErrInvalidSelection, r.size)
	}
	switch r.cheese {
	case "", domain.CheeseNormal, domain.CheeseExtra, domain.CheeseDouble:
	default:
		return fmt.Errorf("%w: cheese option %q", ErrInvalidSelection, r.cheese)
	}
	if r.drinkSize != "" && !r.drinkSize.IsDrinkVolume() {
		return fmt.Errorf("%w: drink size %q", ErrInvalidSelection, r.drinkSize)
	}
	return nil
}
