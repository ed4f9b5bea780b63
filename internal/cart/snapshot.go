package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// Encode serialises the whole cart. An empty cart encodes as "[]".
func Encode(c *Cart) ([]byte, error) {
	items := c.items
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// Decode rebuilds a cart from Encode output. Anything that does not parse, or
// that holds an entry without identity or with quantity below 1, is reported
// as ErrMalformedSnapshot.
func Decode(data []byte) (*Cart, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	c := &Cart{}
	for i, item := range items {
		if item.Product.ID == "" || item.Quantity < 1 {
			return nil, fmt.Errorf("%w: invalid entry at %d", ErrMalformedSnapshot, i)
		}
		c.Add(item.Product, item.Variant, item.Size, item.Quantity)
	}
	return c, nil
}
