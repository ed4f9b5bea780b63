package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrdersRedirect is where the client goes after a completed checkout.
const OrdersRedirect = "/orders"

// LoginRedirect is where an anonymous shopper is sent.
const LoginRedirect = "/login"

const publishTimeout = 3 * time.Second

// Cart is the part of the cart manager checkout needs.
type Cart interface {
	Items() []domain.LineItem
	Clear(ctx context.Context)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, draft domain.OrderDraft) (*domain.PaymentSession, error)
}

type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, token, orderID string, confirmation domain.PaymentConfirmation) error
}

type EventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, event domain.CheckoutCompleted) error
}

// Bridge holds the collaborators shared by every session's checkout.
type Bridge struct {
	orders         OrderCreator
	payments       PaymentVerifier
	events         EventPublisher
	notify         notify.Sink
	log            *zap.Logger
	defaultCountry string
}

func NewBridge(orders OrderCreator, payments PaymentVerifier, events EventPublisher, sink notify.Sink, log *zap.Logger, defaultCountry string) *Bridge {
	return &Bridge{
		orders:         orders,
		payments:       payments,
		events:         events,
		notify:         sink,
		log:            log,
		defaultCountry: defaultCountry,
	}
}

// NewMachine creates the checkout state machine of one session.
func (b *Bridge) NewMachine(cart Cart) *Machine {
	return &Machine{bridge: b, cart: cart, status: StatusIdle}
}

// Attempt is one pass through the checkout flow.
type Attempt struct {
	ID        string                 `json:"attempt_id"`
	UserID    string                 `json:"user_id"`
	Draft     domain.OrderDraft      `json:"order"`
	Session   *domain.PaymentSession `json:"payment,omitempty"`
	StartedAt time.Time              `json:"started_at"`
}

// State is what the client sees of a session's checkout.
type State struct {
	Status   Status   `json:"status"`
	Attempt  *Attempt `json:"attempt,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// Machine moves one session through Idle, address validation, order
// creation, payment and verification. The cart is cleared only after the
// payment has been verified.
type Machine struct {
	mu      sync.Mutex
	bridge  *Bridge
	cart    Cart
	status  Status
	attempt *Attempt
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Start validates the address and cart, then creates the order. On success
// the machine waits for the payment widget.
func (m *Machine) Start(ctx context.Context, identity *domain.Identity, address domain.ShippingAddress) (State, error) {
	b := m.bridge
	if identity == nil {
		notify.Error(ctx, b.notify, "Please sign in to continue")
		return State{Status: m.State().Status, Redirect: LoginRedirect}, ErrUnauthenticated
	}

	m.mu.Lock()
	if m.status.Busy() {
		m.mu.Unlock()
		return m.State(), ErrCheckoutInProgress
	}
	if m.status == StatusAwaitingPayment {
		b.log.Info("previous payment left open, starting a new attempt",
			zap.String("attempt_id", m.attempt.ID))
	}
	if m.status != StatusIdle {
		m.resetLocked()
	}
	if err := m.transitionLocked(StatusValidatingAddress); err != nil {
		m.mu.Unlock()
		return m.State(), err
	}
	cart := m.cart
	m.mu.Unlock()

	items := cart.Items()
	if len(items) == 0 {
		notify.Error(ctx, b.notify, "Your cart is empty")
		return m.fail(ErrEmptyCart)
	}
	address.Country = b.defaultCountry
	if missing := address.MissingFields(); len(missing) > 0 {
		notify.Error(ctx, b.notify, "Please fill all required fields")
		return m.fail(fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(missing, ", ")))
	}

	attempt := &Attempt{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		Draft:     domain.NewOrderDraft(items, address),
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.attempt = attempt
	if err := m.transitionLocked(StatusCreatingOrder); err != nil {
		m.mu.Unlock()
		return m.State(), err
	}
	m.mu.Unlock()

	session, err := b.orders.CreateOrder(ctx, identity.Token, attempt.Draft)
	if err != nil {
		b.log.Error("order creation failed",
			zap.String("attempt_id", attempt.ID),
			zap.Error(err))
		notify.Error(ctx, b.notify, "Failed to create order")
		return m.fail(fmt.Errorf("%w: %v", ErrOrderCreation, err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	attempt.Session = session
	if err := m.transitionLocked(StatusAwaitingPayment); err != nil {
		return m.stateLocked(), err
	}
	b.log.Info("order created, awaiting payment",
		zap.String("attempt_id", attempt.ID),
		zap.String("order_id", session.OrderID),
		zap.Int64("amount", session.Amount))
	return m.stateLocked(), nil
}

// ConfirmPayment verifies the widget's confirmation. Only a successful
// verification clears the cart; a failed one leaves it for another try.
func (m *Machine) ConfirmPayment(ctx context.Context, identity *domain.Identity, confirmation domain.PaymentConfirmation) (State, error) {
	b := m.bridge
	if identity == nil {
		notify.Error(ctx, b.notify, "Please sign in to continue")
		return State{Status: m.State().Status, Redirect: LoginRedirect}, ErrUnauthenticated
	}

	m.mu.Lock()
	if m.status != StatusAwaitingPayment {
		defer m.mu.Unlock()
		if m.status.Busy() {
			return m.stateLocked(), ErrCheckoutInProgress
		}
		return m.stateLocked(), ErrNoPendingPayment
	}
	if err := m.transitionLocked(StatusVerifyingPayment); err != nil {
		m.mu.Unlock()
		return m.State(), err
	}
	attempt := m.attempt
	cart := m.cart
	m.mu.Unlock()

	if confirmation.GatewayOrderID == "" {
		confirmation.GatewayOrderID = attempt.Session.GatewayOrderID
	}

	if err := b.payments.VerifyPayment(ctx, identity.Token, attempt.Session.OrderID, confirmation); err != nil {
		b.log.Error("payment verification failed",
			zap.String("attempt_id", attempt.ID),
			zap.String("order_id", attempt.Session.OrderID),
			zap.Error(err))
		notify.Error(ctx, b.notify, "Payment verification failed")
		return m.fail(fmt.Errorf("%w: %v", ErrPaymentVerification, err))
	}

	cart.Clear(ctx)
	notify.Success(ctx, b.notify, "Order placed successfully!")

	m.mu.Lock()
	err := m.transitionLocked(StatusCompleted)
	state := m.stateLocked()
	m.mu.Unlock()
	if err != nil {
		return state, err
	}

	b.publishCompleted(ctx, attempt)
	state.Redirect = OrdersRedirect
	return state, nil
}

// Abandon handles the shopper closing the payment widget. The order stays
// pending on the backend and the cart is untouched.
func (m *Machine) Abandon(_ context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusAwaitingPayment {
		m.bridge.log.Info("payment abandoned", zap.String("attempt_id", m.attempt.ID))
		m.resetLocked()
	}
	return m.stateLocked()
}

// ReportFailure handles a hard failure reported by the payment widget.
func (m *Machine) ReportFailure(ctx context.Context, reason string) (State, error) {
	m.mu.Lock()
	if m.status != StatusAwaitingPayment {
		defer m.mu.Unlock()
		return m.stateLocked(), ErrNoPendingPayment
	}
	m.bridge.log.Warn("payment widget failed",
		zap.String("attempt_id", m.attempt.ID),
		zap.String("reason", reason))
	m.resetLocked()
	state := m.stateLocked()
	m.mu.Unlock()

	notify.Error(ctx, m.bridge.notify, "Payment failed")
	return state, ErrPaymentFailed
}

// bind points the machine at the session's current cart.
func (m *Machine) bind(cart Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cart
}

func (m *Machine) fail(err error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return m.stateLocked(), err
}

func (m *Machine) resetLocked() {
	m.status = StatusIdle
	m.attempt = nil
}

func (m *Machine) transitionLocked(to Status) error {
	if !CanTransitionTo(m.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.status, to)
	}
	m.status = to
	return nil
}

func (m *Machine) stateLocked() State {
	state := State{Status: m.status}
	if m.attempt != nil {
		a := *m.attempt
		state.Attempt = &a
	}
	return state
}

func (b *Bridge) publishCompleted(ctx context.Context, attempt *Attempt) {
	if b.events == nil {
		return
	}
	event := domain.CheckoutCompleted{
		OrderID:     attempt.Session.OrderID,
		UserID:      attempt.UserID,
		Items:       attempt.Draft.Items,
		TotalAmount: attempt.Draft.TotalAmount,
		Currency:    attempt.Session.Currency,
		CompletedAt: time.Now(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.events.PublishCheckoutCompleted(pubCtx, event); err != nil {
		b.log.Error("checkout completed event not published",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}
