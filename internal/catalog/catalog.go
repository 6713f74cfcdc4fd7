// Package catalog holds the static product price table and its lookups.
package catalog

import (
	"fmt"
	"sort"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is a read-only mapping from product key to price entry.
type Catalog struct {
	entries map[string]domain.ProductPriceEntry
}

func New(entries []domain.ProductPriceEntry) *Catalog {
	c := &Catalog{entries: make(map[string]domain.ProductPriceEntry, len(entries))}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	return c
}

// Default returns the catalog with the storefront's built-in prices.
func Default() *Catalog {
	return New(defaultEntries())
}

// Lookup returns the price of productKey in language for variant.
// The boolean is false when any of the three is absent; callers must not treat that as zero.
func (c *Catalog) Lookup(productKey string, lang domain.Language, variant domain.Variant) (decimal.Decimal, bool) {
	entry, ok := c.entries[productKey]
	if !ok {
		return decimal.Zero, false
	}
	return entry.Price(lang, variant)
}

func (c *Catalog) Entry(productKey string) (domain.ProductPriceEntry, bool) {
	e, ok := c.entries[productKey]
	return e, ok
}

// Products returns every product key in sorted order.
func (c *Catalog) Products() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate reports data-integrity defects: languages listed for a product without a single price.
func (c *Catalog) Validate() []error {
	var defects []error
	for _, key := range c.Products() {
		entry := c.entries[key]
		if len(entry.Prices) == 0 {
			defects = append(defects, fmt.Errorf("product %s: %w", key, ErrNoPrices))
			continue
		}
		for _, lang := range []domain.Language{domain.LanguageEnglish, domain.LanguageNorwegian} {
			prices, ok := entry.Prices[lang]
			if ok && len(prices) == 0 {
				defects = append(defects, fmt.Errorf("product %s language %s: %w", key, lang, ErrNoPrices))
			}
		}
	}
	return defects
}
