package catalog

import (
	"testing"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Found(t *testing.T) {
	c := Default()

	price, ok := c.Lookup("margherita", domain.LanguageNorwegian, domain.VariantNormal)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(149).Equal(price))

	price, ok = c.Lookup("coca_cola", domain.LanguageEnglish, domain.VariantMediumDrink)
	require.True(t, ok)
	assert.Equal(t, "5.5", price.String())
}

func TestLookup_Missing(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		product string
		lang    domain.Language
		variant domain.Variant
	}{
		{"unknown product", "calzone", domain.LanguageEnglish, domain.VariantNormal},
		{"unknown language", "margherita", domain.Language("de"), domain.VariantNormal},
		{"dessert has no large", "tiramisu", domain.LanguageEnglish, domain.VariantLarge},
		{"pizza has no volume", "margherita", domain.LanguageNorwegian, domain.VariantLargeDrink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := c.Lookup(tt.product, tt.lang, tt.variant)
			assert.False(t, ok)
			assert.True(t, price.IsZero())
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	assert.Empty(t, c.Validate())
	assert.Len(t, c.Products(), 34)

	triple, ok := c.Entry("triple_pizza")
	require.True(t, ok)
	assert.Equal(t, int64(3), triple.Units())
	assert.Equal(t, domain.CategoryPromotion, triple.Category)
}

func TestValidate_ReportsEmptyLanguage(t *testing.T) {
	c := New([]domain.ProductPriceEntry{
		{
			ID:       "broken",
			Category: domain.CategoryPizza,
			Prices: map[domain.Language]map[domain.Variant]decimal.Decimal{
				domain.LanguageEnglish:   {domain.VariantNormal: decimal.NewFromInt(10)},
				domain.LanguageNorwegian: {},
			},
		},
		{ID: "empty", Category: domain.CategoryDips},
	})

	defects := c.Validate()
	require.Len(t, defects, 2)
	for _, err := range defects {
		assert.ErrorIs(t, err, ErrNoPrices)
	}
}
