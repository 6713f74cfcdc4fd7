package catalog

import (
	"errors"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrNoPrices = errors.New("no price fields populated")

type sized struct{ normal, large string }

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sizedEntry(id string, category domain.Category, units int, en, no sized) domain.ProductPriceEntry {
	return domain.ProductPriceEntry{
		ID:          id,
		Category:    category,
		BundleUnits: units,
		Prices: map[domain.Language]map[domain.Variant]decimal.Decimal{
			domain.LanguageEnglish:   {domain.VariantNormal: d(en.normal), domain.VariantLarge: d(en.large)},
			domain.LanguageNorwegian: {domain.VariantNormal: d(no.normal), domain.VariantLarge: d(no.large)},
		},
	}
}

func singleEntry(id string, category domain.Category, en, no string) domain.ProductPriceEntry {
	return domain.ProductPriceEntry{
		ID:       id,
		Category: category,
		Prices: map[domain.Language]map[domain.Variant]decimal.Decimal{
			domain.LanguageEnglish:   {domain.VariantNormal: d(en)},
			domain.LanguageNorwegian: {domain.VariantNormal: d(no)},
		},
	}
}

func drinkEntry(id string) domain.ProductPriceEntry {
	return domain.ProductPriceEntry{
		ID:       id,
		Category: domain.CategoryDrinks,
		Prices: map[domain.Language]map[domain.Variant]decimal.Decimal{
			domain.LanguageEnglish: {
				domain.VariantSmallDrink:  d("4.5"),
				domain.VariantMediumDrink: d("5.5"),
				domain.VariantLargeDrink:  d("7.5"),
			},
			domain.LanguageNorwegian: {
				domain.VariantSmallDrink:  d("45"),
				domain.VariantMediumDrink: d("55"),
				domain.VariantLargeDrink:  d("75"),
			},
		},
	}
}

func defaultEntries() []domain.ProductPriceEntry {
	return []domain.ProductPriceEntry{
		// promotions
		sizedEntry("christmas_special", domain.CategoryPromotion, 1, sized{"25", "32"}, sized{"249", "319"}),
		sizedEntry("pepperoni_special", domain.CategoryPromotion, 1, sized{"25", "32"}, sized{"249", "319"}),
		sizedEntry("triple_pizza", domain.CategoryPromotion, 3, sized{"40", "61"}, sized{"399", "609"}),
		sizedEntry("quattro_special", domain.CategoryPromotion, 1, sized{"29", "36"}, sized{"289", "359"}),
		sizedEntry("family_deal", domain.CategoryPromotion, 1, sized{"45", "59"}, sized{"449", "589"}),

		sizedEntry("margherita", domain.CategoryPizza, 1, sized{"15", "22"}, sized{"149", "219"}),
		sizedEntry("pepperoni", domain.CategoryPizza, 1, sized{"17", "24"}, sized{"169", "239"}),
		sizedEntry("diavola", domain.CategoryPizza, 1, sized{"17", "24"}, sized{"169", "239"}),
		sizedEntry("quattro_formaggi", domain.CategoryPizza, 1, sized{"18", "25"}, sized{"179", "249"}),
		sizedEntry("vegetariana", domain.CategoryPizza, 1, sized{"16", "23"}, sized{"159", "229"}),
		sizedEntry("prosciutto_rucola", domain.CategoryPizza, 1, sized{"18", "25"}, sized{"179", "249"}),
		sizedEntry("capricciosa", domain.CategoryPizza, 1, sized{"17", "24"}, sized{"169", "239"}),
		sizedEntry("hawaiian", domain.CategoryPizza, 1, sized{"16", "23"}, sized{"159", "229"}),

		sizedEntry("carbonara", domain.CategoryPasta, 1, sized{"13", "16"}, sized{"129", "159"}),
		sizedEntry("bolognese", domain.CategoryPasta, 1, sized{"14", "17"}, sized{"139", "169"}),
		sizedEntry("alfredo", domain.CategoryPasta, 1, sized{"15", "18"}, sized{"149", "179"}),
		sizedEntry("pesto", domain.CategoryPasta, 1, sized{"12", "15"}, sized{"119", "149"}),

		sizedEntry("caesar", domain.CategorySalad, 1, sized{"13", "16"}, sized{"129", "159"}),
		sizedEntry("greek", domain.CategorySalad, 1, sized{"12", "15"}, sized{"119", "149"}),
		sizedEntry("caprese", domain.CategorySalad, 1, sized{"14", "17"}, sized{"139", "169"}),
		sizedEntry("cobb", domain.CategorySalad, 1, sized{"15", "18"}, sized{"149", "179"}),

		drinkEntry("coca_cola"),
		drinkEntry("sprite"),
		drinkEntry("fanta"),
		drinkEntry("san_pellegrino"),
		drinkEntry("cola"),

		singleEntry("tiramisu", domain.CategoryDessert, "8", "79"),
		singleEntry("panna_cotta", domain.CategoryDessert, "8", "79"),
		singleEntry("gelato", domain.CategoryDessert, "7", "69"),
		singleEntry("chocolate_fondant", domain.CategoryDessert, "9", "89"),

		singleEntry("aioli", domain.CategoryDips, "2.5", "25"),
		singleEntry("salsa", domain.CategoryDips, "2", "20"),
		singleEntry("bearnaise", domain.CategoryDips, "3", "30"),
		singleEntry("garlic", domain.CategoryDips, "2.5", "25"),
	}
}
