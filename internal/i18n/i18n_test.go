package i18n

import (
	"testing"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount   string
		currency domain.Currency
		want     string
	}{
		{"298", domain.CurrencyNOK, "298 kr"},
		{"29", domain.CurrencyUSD, "$29"},
		{"16.5", domain.CurrencyUSD, "$16.5"},
		{"0", domain.CurrencyNOK, "0 kr"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestTranslatorFallbacks(t *testing.T) {
	b := Default()

	assert.Equal(t, "Klar for henting", b.For(domain.LanguageNorwegian).T("checkout.readyForPickup"))
	assert.Equal(t, "Ready for pickup", b.For(domain.Language("de")).T("checkout.readyForPickup"))
	assert.Equal(t, "no.such.key", b.For(domain.LanguageEnglish).T("no.such.key"))
	assert.Equal(t, "k", NewBundle(nil).For(domain.LanguageEnglish).T("k"))
}

func TestSubstitute(t *testing.T) {
	got := Substitute("Ready in {minutes} minutes ({minutes})", map[string]string{"minutes": "5"})
	assert.Equal(t, "Ready in 5 minutes (5)", got)
	assert.Equal(t, "{unknown}", Substitute("{unknown}", nil))
}

func TestReadyIn(t *testing.T) {
	now := time.Date(2024, 1, 1, 13, 0, 10, 0, time.UTC)
	eta := time.Date(2024, 1, 1, 13, 50, 0, 0, time.UTC)
	b := Default()

	assert.Equal(t, "Ready in 50 minutes (approx. 01:50 PM)",
		ReadyIn(b.For(domain.LanguageEnglish), domain.LanguageEnglish, eta, now))
	assert.Equal(t, "Klar om 50 minutter (ca. 13:50)",
		ReadyIn(b.For(domain.LanguageNorwegian), domain.LanguageNorwegian, eta, now))
}

func TestEveryKeyIsTranslated(t *testing.T) {
	for key := range english {
		_, ok := norwegian[key]
		assert.True(t, ok, key)
	}
	assert.Len(t, norwegian, len(english))
}
