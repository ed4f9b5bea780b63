package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// MissingFields lists the required fields that are blank. AddressLine2 and
// Country are not required.
func (a ShippingAddress) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"phone", a.Phone},
		{"address_line1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type OrderLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderDraft is assembled at checkout from the cart and sent once to the
// order-creation endpoint. It is never persisted.
type OrderDraft struct {
	Items           []OrderLine     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// NewOrderDraft copies the cart lines into a draft and totals them at their
// snapshot prices.
func NewOrderDraft(items []LineItem, address ShippingAddress) OrderDraft {
	lines := make([]OrderLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
		lines = append(lines, OrderLine{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Color:       item.Variant.Color,
			Size:        item.Size,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
		})
	}
	return OrderDraft{Items: lines, ShippingAddress: address, TotalAmount: total}
}

// PaymentSession is what the order-creation endpoint hands back for the
// payment widget.
type PaymentSession struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// PaymentConfirmation is reported by the payment widget on success.
type PaymentConfirmation struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
}
