package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MockCart implements Cart for testing
type MockCart struct {
	mu      sync.Mutex
	items   []domain.LineItem
	Cleared int
}

func (m *MockCart) Items() []domain.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LineItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *MockCart) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.Cleared++
}

func (m *MockCart) count() int {
	total := 0
	for _, item := range m.Items() {
		total += item.Quantity
	}
	return total
}

// MockOrders implements OrderCreator for testing
type MockOrders struct {
	Session *domain.PaymentSession
	Err     error
	Calls   int
	Draft   domain.OrderDraft
	Token   string
	// Block, when set, holds CreateOrder until it is closed
	Block chan struct{}
	// Entered is closed once CreateOrder has been called
	Entered chan struct{}
}

func (m *MockOrders) CreateOrder(_ context.Context, token string, draft domain.OrderDraft) (*domain.PaymentSession, error) {
	m.Calls++
	m.Draft = draft
	m.Token = token
	if m.Entered != nil {
		close(m.Entered)
	}
	if m.Block != nil {
		<-m.Block
	}
	if m.Err != nil {
		return nil, m.Err
	}
	s := *m.Session
	return &s, nil
}

// MockPayments implements PaymentVerifier for testing
type MockPayments struct {
	Err          error
	Calls        int
	OrderID      string
	Confirmation domain.PaymentConfirmation
}

func (m *MockPayments) VerifyPayment(_ context.Context, _ string, orderID string, confirmation domain.PaymentConfirmation) error {
	m.Calls++
	m.OrderID = orderID
	m.Confirmation = confirmation
	return m.Err
}

// MockPublisher implements EventPublisher for testing
type MockPublisher struct {
	Events []domain.CheckoutCompleted
	Err    error
}

func (m *MockPublisher) PublishCheckoutCompleted(_ context.Context, event domain.CheckoutCompleted) error {
	m.Events = append(m.Events, event)
	return m.Err
}
