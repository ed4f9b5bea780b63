package checkout

import "errors"

var (
	ErrUnauthenticated     = errors.New("sign in required")
	ErrCheckoutInProgress  = errors.New("checkout already in progress")
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrInvalidAddress      = errors.New("shipping address incomplete")
	ErrOrderCreation       = errors.New("order creation failed")
	ErrNoPendingPayment    = errors.New("no payment awaiting confirmation")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrIllegalTransition   = errors.New("illegal transition of checkout status")
)
