package domain

import "github.com/shopspring/decimal"

// Product is the catalog summary captured when an item is added to the cart.
// Price and stock are not refreshed afterwards.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Variants []Variant       `json:"variants,omitempty"`
}

// Variant is a color option of a product with its per-size stock.
type Variant struct {
	Color     string         `json:"color"`
	ColorCode string         `json:"color_code"`
	Sizes     map[string]int `json:"sizes"`
}

// Stock returns the stock snapshot for size and whether the variant offers it.
func (v Variant) Stock(size string) (int, bool) {
	n, ok := v.Sizes[size]
	return n, ok
}

// VariantByColor finds the variant with the given color.
func (p Product) VariantByColor(color string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Color == color {
			return v, true
		}
	}
	return Variant{}, false
}

type LineItem struct {
	Product  Product `json:"product"`
	Variant  Variant `json:"variant"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
}

// ItemKey is the identity of a line item. No other id is allocated.
type ItemKey struct {
	ProductID string
	Color     string
	Size      string
}

func (i LineItem) Key() ItemKey {
	return ItemKey{ProductID: i.Product.ID, Color: i.Variant.Color, Size: i.Size}
}

// LineTotal is the snapshot price times quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
