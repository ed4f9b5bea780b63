package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutCompleted is emitted once a payment has been verified and the cart
// cleared.
type CheckoutCompleted struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CompletedAt time.Time       `json:"completed_at"`
}
