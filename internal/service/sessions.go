package service

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const sessionSweep = time.Minute

type sessionEntry struct {
	manager  *CartManager
	lastSeen time.Time
}

// Sessions hands out the single CartManager of each browser session. Managers
// unused for idleTTL are dropped; the next request hydrates a fresh one from
// the slot.
type Sessions struct {
	mu      sync.Mutex
	carts   map[string]*sessionEntry
	sfg     singleflight.Group // one hydration per session at a time
	slot    cache.Slot
	notify  notify.Sink
	log     *zap.Logger
	idleTTL time.Duration
}

func NewSessions(slot cache.Slot, sink notify.Sink, log *zap.Logger, idleTTL time.Duration) *Sessions {
	return &Sessions{
		carts:   make(map[string]*sessionEntry),
		slot:    slot,
		notify:  sink,
		log:     log,
		idleTTL: idleTTL,
	}
}

// lookup returns the cached manager and marks it used.
func (s *Sessions) lookup(sessionID string) (*CartManager, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.carts[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.manager, true
}

// Cart returns the hydrated manager for sessionID. A failed hydration is not
// remembered, so the next call reads the slot again.
func (s *Sessions) Cart(ctx context.Context, sessionID string) (*CartManager, error) {
	if m, ok := s.lookup(sessionID); ok {
		return m, nil
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if m, ok := s.lookup(sessionID); ok {
			return m, nil
		}

		m := NewCartManager(cache.CartKey(sessionID), s.slot, s.notify, s.log)
		if err := m.Load(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.carts[sessionID] = &sessionEntry{manager: m, lastSeen: time.Now()}
		s.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*CartManager), nil
}

// Len is the number of managers held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Run evicts idle managers until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	t := time.NewTicker(sessionSweep)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.sweep(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sessions) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for sid, e := range s.carts {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.carts, sid)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Debug("idle carts evicted", zap.Int("evicted", evicted), zap.Int("remaining", len(s.carts)))
	}
}
