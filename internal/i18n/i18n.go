// Package i18n resolves display strings and formats prices and times per language.
package i18n

import (
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
)

// Translator looks up a dotted key. Unknown keys come back unchanged.
type Translator interface {
	T(key string) string
}

// Dictionary is a flat key to template mapping for one language.
type Dictionary map[string]string

func (d Dictionary) T(key string) string {
	if v, ok := d[key]; ok && v != "" {
		return v
	}
	return key
}

// Bundle holds one dictionary per language.
type Bundle struct {
	dicts map[domain.Language]Dictionary
}

func NewBundle(dicts map[domain.Language]Dictionary) *Bundle {
	return &Bundle{dicts: dicts}
}

// Default returns the storefront's built-in strings.
func Default() *Bundle {
	return NewBundle(map[domain.Language]Dictionary{
		domain.LanguageEnglish:   english,
		domain.LanguageNorwegian: norwegian,
	})
}

// For returns the translator of lang, falling back to English.
func (b *Bundle) For(lang domain.Language) Translator {
	if d, ok := b.dicts[lang]; ok {
		return d
	}
	if d, ok := b.dicts[domain.LanguageEnglish]; ok {
		return d
	}
	return Dictionary{}
}

// Substitute replaces each {token} in template with its value.
func Substitute(template string, params map[string]string) string {
	for k, v := range params {
		template = strings.ReplaceAll(template, "{"+k+"}", v)
	}
	return template
}

// FormatPrice renders an amount the way the storefront shows it: "298 kr" or "$29".
func FormatPrice(amount decimal.Decimal, currency domain.Currency) string {
	if currency == domain.CurrencyNOK {
		return amount.String() + " kr"
	}
	return "$" + amount.String()
}

// FormatClock renders the time of day in the locale of lang.
func FormatClock(t time.Time, lang domain.Language) string {
	if lang == domain.LanguageNorwegian {
		return t.Format("15:04")
	}
	return t.Format("03:04 PM")
}

// ReadyIn renders the checkout confirmation's estimated-time line.
func ReadyIn(tr Translator, lang domain.Language, eta, now time.Time) string {
	minutes := eta.Sub(now).Round(time.Minute) / time.Minute
	return Substitute(tr.T("checkout.readyIn"), map[string]string{
		"minutes": strconv.Itoa(int(minutes)),
		"time":    FormatClock(eta, lang),
	})
}
