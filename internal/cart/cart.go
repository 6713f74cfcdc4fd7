// Package cart holds the shopping cart: line merging, quantity updates and derived totals.
package cart

import (
	"errors"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// Cart is one user's set of line items. Totals are derived on every read.
type Cart struct {
	userID    string
	items     []domain.CartItem
	open      bool
	createdAt time.Time
	updatedAt time.Time

	now   func() time.Time
	newID func() string
}

func New(userID string) *Cart {
	c := &Cart{userID: userID, now: time.Now, newID: uuid.NewString}
	c.createdAt = c.now()
	c.updatedAt = c.createdAt
	return c
}

// FromSnapshot rebuilds a cart from its persisted form.
func FromSnapshot(s domain.Cart) *Cart {
	c := New(s.UserID)
	c.items = append([]domain.CartItem(nil), s.Items...)
	c.open = s.IsOpen
	if !s.CreatedAt.IsZero() {
		c.createdAt = s.CreatedAt
	}
	if !s.UpdatedAt.IsZero() {
		c.updatedAt = s.UpdatedAt
	}
	return c
}

func (c *Cart) Snapshot() domain.Cart {
	return domain.Cart{
		UserID:    c.userID,
		Items:     c.Items(),
		IsOpen:    c.open,
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
}

func (c *Cart) UserID() string { return c.userID }

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

// AddItem merges item into a line with the same configuration and currency, or appends it
// as a new line with a fresh id. It returns the resulting line.
func (c *Cart) AddItem(item domain.CartItem) (domain.CartItem, error) {
	if item.Quantity <= 0 {
		return domain.CartItem{}, ErrInvalidQuantity
	}

	for i := range c.items {
		if !c.items[i].SameConfiguration(item) {
			continue
		}
		line := &c.items[i]
		line.Quantity += item.Quantity
		line.Price = item.UnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity)))
		c.touch()
		return *line, nil
	}

	item.ID = c.newID()
	if item.AddedAt.IsZero() {
		item.AddedAt = c.now()
	}
	c.items = append(c.items, item)
	c.touch()
	return item, nil
}

// RemoveItem deletes the line unconditionally. It reports whether the line existed.
func (c *Cart) RemoveItem(id string) bool {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// UpdateQuantity sets a line's quantity and reprices it from the unit price cached at add time.
// A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity <= 0 {
		if !c.RemoveItem(id) {
			return ErrItemNotFound
		}
		return nil
	}
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		line := &c.items[i]
		unit := line.UnitPrice()
		line.Quantity = quantity
		line.Price = unit.Mul(decimal.NewFromInt(int64(quantity)))
		c.touch()
		return nil
	}
	return ErrItemNotFound
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price)
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Clear empties the cart and closes it.
func (c *Cart) Clear() {
	c.items = nil
	c.open = false
	c.touch()
}

// RemoveOrdered takes the ordered quantities off their lines and closes the cart.
// Lines added or merged into after the order snapshot keep the difference.
func (c *Cart) RemoveOrdered(ordered []domain.CartItem) {
	for _, o := range ordered {
		for i := range c.items {
			if c.items[i].ID != o.ID {
				continue
			}
			if left := c.items[i].Quantity - o.Quantity; left > 0 {
				_ = c.UpdateQuantity(o.ID, left)
			} else {
				c.RemoveItem(o.ID)
			}
			break
		}
	}
	c.open = false
	c.touch()
}

// Currencies returns the distinct line currencies in order of first appearance.
func (c *Cart) Currencies() []domain.Currency {
	var out []domain.Currency
	seen := make(map[domain.Currency]bool)
	for _, item := range c.items {
		if !seen[item.Currency] {
			seen[item.Currency] = true
			out = append(out, item.Currency)
		}
	}
	return out
}

func (c *Cart) HasMixedCurrencies() bool {
	return len(c.Currencies()) > 1
}

func (c *Cart) IsOpen() bool { return c.open }

func (c *Cart) SetOpen(open bool) {
	c.open = open
}

func (c *Cart) touch() {
	c.updatedAt = c.now()
}
