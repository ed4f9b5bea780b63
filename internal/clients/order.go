package clients

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

// The backend expects plain JSON numbers for money.
type orderLineDTO struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type createOrderDTO struct {
	Items           []orderLineDTO         `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	TotalAmount     float64                `json:"total_amount"`
}

type verifyPaymentDTO struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
	OrderID          string `json:"order_id"`
}

// CreateOrder submits the draft and returns the payment session for the
// widget.
func (oc *OrderClient) CreateOrder(ctx context.Context, token string, draft domain.OrderDraft) (*domain.PaymentSession, error) {
	req := createOrderDTO{
		Items:           make([]orderLineDTO, 0, len(draft.Items)),
		ShippingAddress: draft.ShippingAddress,
		TotalAmount:     draft.TotalAmount.InexactFloat64(),
	}
	for _, line := range draft.Items {
		req.Items = append(req.Items, orderLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Color:       line.Color,
			Size:        line.Size,
			Quantity:    line.Quantity,
			Price:       line.Price.InexactFloat64(),
		})
	}

	var session domain.PaymentSession
	if err := oc.c.doJSON(ctx, http.MethodPost, "/orders/create-razorpay-order", token, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyPayment succeeds on any 2xx answer.
func (oc *OrderClient) VerifyPayment(ctx context.Context, token, orderID string, confirmation domain.PaymentConfirmation) error {
	req := verifyPaymentDTO{
		GatewayOrderID:   confirmation.GatewayOrderID,
		GatewayPaymentID: confirmation.GatewayPaymentID,
		Signature:        confirmation.Signature,
		OrderID:          orderID,
	}
	return oc.c.doJSON(ctx, http.MethodPost, "/orders/verify-payment", token, req, nil)
}
