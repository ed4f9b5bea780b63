// Package cart holds the cart line items and the four operations that change
// them. Every operation is total: quantities are clamped and missing entries
// are ignored, so nothing here returns an error.
package cart

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Cart is an ordered list of line items, unique by product id, color and size.
// It is not safe for concurrent use.
type Cart struct {
	items []domain.LineItem
}

func New(items ...domain.LineItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.Add(item.Product, item.Variant, item.Size, item.Quantity)
	}
	return c
}

// Add merges quantity into the entry with the same identity or appends a new
// entry. It reports whether an existing entry was updated.
func (c *Cart) Add(product domain.Product, variant domain.Variant, size string, quantity int) bool {
	key := domain.ItemKey{ProductID: product.ID, Color: variant.Color, Size: size}
	if i := c.index(key); i >= 0 {
		c.items[i].Quantity = max(1, c.items[i].Quantity+quantity)
		return true
	}
	c.items = append(c.items, domain.LineItem{
		Product:  product,
		Variant:  variant,
		Size:     size,
		Quantity: max(1, quantity),
	})
	return false
}

func (c *Cart) Remove(productID, color, size string) {
	i := c.index(domain.ItemKey{ProductID: productID, Color: color, Size: size})
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// UpdateQuantity sets the quantity of a matching entry, never below 1.
func (c *Cart) UpdateQuantity(productID, color, size string, quantity int) {
	i := c.index(domain.ItemKey{ProductID: productID, Color: color, Size: size})
	if i < 0 {
		return
	}
	c.items[i].Quantity = max(1, quantity)
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums price times quantity using the prices captured at add time.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (c *Cart) index(key domain.ItemKey) int {
	for i, item := range c.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}
