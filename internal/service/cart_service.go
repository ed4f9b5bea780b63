package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrCartNotReady = errors.New("cart not ready")

// persistTimeout bounds a snapshot write so a slow slot cannot stall a mutation.
const persistTimeout = time.Second

// CartManager owns one session's cart. It hydrates the cart from its slot,
// writes a full snapshot after every mutation once hydration has finished, and
// raises the user notifications for add, remove and clear.
type CartManager struct {
	mu     sync.Mutex
	cart   *cart.Cart
	ready  bool
	key    string
	slot   cache.Slot
	notify notify.Sink
	log    *zap.Logger
}

func NewCartManager(key string, slot cache.Slot, sink notify.Sink, log *zap.Logger) *CartManager {
	return &CartManager{
		cart:   cart.New(),
		key:    key,
		slot:   slot,
		notify: sink,
		log:    log.With(zap.String("cart_key", key)),
	}
}

// Load reads the stored snapshot. A missing or malformed snapshot leaves the
// cart empty and marks the manager ready; a malformed one is also deleted.
// A read failure keeps the manager not ready so nothing overwrites the
// stored cart.
func (m *CartManager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return nil
	}

	data, err := m.slot.Get(ctx, m.key)
	switch {
	case errors.Is(err, cache.ErrSlotEmpty):
		m.cart = cart.New()
	case err != nil:
		m.log.Error("cart load failed", zap.Error(err))
		return err
	default:
		restored, decodeErr := cart.Decode(data)
		if decodeErr != nil {
			m.log.Warn("discarding malformed cart snapshot", zap.Error(decodeErr))
			if delErr := m.slot.Delete(ctx, m.key); delErr != nil {
				m.log.Error("cart snapshot delete failed", zap.Error(delErr))
			}
			restored = cart.New()
		}
		m.cart = restored
	}

	m.ready = true
	return nil
}

func (m *CartManager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *CartManager) AddItem(ctx context.Context, product domain.Product, variant domain.Variant, size string, quantity int) {
	m.mu.Lock()
	merged := m.cart.Add(product, variant, size, quantity)
	ready := m.persistLocked(ctx)
	m.mu.Unlock()

	if !ready {
		return
	}
	if merged {
		notify.Success(ctx, m.notify, "Cart updated")
	} else {
		notify.Success(ctx, m.notify, "Added to cart")
	}
}

func (m *CartManager) RemoveItem(ctx context.Context, productID, color, size string) {
	m.mu.Lock()
	m.cart.Remove(productID, color, size)
	ready := m.persistLocked(ctx)
	m.mu.Unlock()

	if ready {
		notify.Success(ctx, m.notify, "Removed from cart")
	}
}

// UpdateQuantity does not notify; a stepper calls it on every click.
func (m *CartManager) UpdateQuantity(ctx context.Context, productID, color, size string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.UpdateQuantity(productID, color, size, quantity)
	m.persistLocked(ctx)
}

func (m *CartManager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.cart.Clear()
	ready := m.persistLocked(ctx)
	m.mu.Unlock()

	if ready {
		notify.Success(ctx, m.notify, "Cart cleared")
	}
}

func (m *CartManager) Items() []domain.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Items()
}

func (m *CartManager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.ItemCount()
}

func (m *CartManager) Subtotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Subtotal()
}

// View is a consistent read of items and totals.
type View struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func (m *CartManager) View() (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return View{}, ErrCartNotReady
	}
	return View{
		Items:     m.cart.Items(),
		ItemCount: m.cart.ItemCount(),
		Subtotal:  m.cart.Subtotal(),
	}, nil
}

// persistLocked writes the whole cart and reports whether the manager was
// ready. Before hydration nothing is written and the change is not announced,
// since Load replaces it. Write failures are logged and dropped.
func (m *CartManager) persistLocked(ctx context.Context) bool {
	if !m.ready {
		m.log.Debug("cart mutation before load not persisted")
		return false
	}

	data, err := cart.Encode(m.cart)
	if err != nil {
		m.log.Error("cart encode failed", zap.Error(err))
		return true
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := m.slot.Set(writeCtx, m.key, data); err != nil {
		m.log.Error("cart persist failed", zap.Error(err))
	}
	return true
}
