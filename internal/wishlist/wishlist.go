// Package wishlist keeps the signed-in shopper's wishlist. The backend is the
// authority: every change replaces the local list with the one the backend
// returns.
package wishlist

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/clients"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrUpdateFailed    = errors.New("wishlist update failed")
)

type Backend interface {
	GetProfile(ctx context.Context, token string) (*clients.Profile, error)
	AddToWishlist(ctx context.Context, token, productID string) (*clients.Profile, error)
	RemoveFromWishlist(ctx context.Context, token, productID string) (*clients.Profile, error)
}

type Store struct {
	mu      sync.RWMutex
	lists   map[string][]string
	backend Backend
	notify  notify.Sink
	log     *zap.Logger
}

func NewStore(backend Backend, sink notify.Sink, log *zap.Logger) *Store {
	return &Store{
		lists:   make(map[string][]string),
		backend: backend,
		notify:  sink,
		log:     log,
	}
}

// Refresh replaces the cached list with the profile's.
func (s *Store) Refresh(ctx context.Context, identity *domain.Identity) ([]string, error) {
	if identity == nil {
		return []string{}, nil
	}
	profile, err := s.backend.GetProfile(ctx, identity.Token)
	if err != nil {
		s.log.Error("wishlist fetch failed", zap.String("user_id", identity.UserID), zap.Error(err))
		return nil, err
	}
	return s.store(identity.UserID, profile.Wishlist), nil
}

// List returns the cached list, fetching it on first use. Anonymous shoppers
// have an empty list.
func (s *Store) List(ctx context.Context, identity *domain.Identity) ([]string, error) {
	if identity == nil {
		return []string{}, nil
	}
	s.mu.RLock()
	list, ok := s.lists[identity.UserID]
	s.mu.RUnlock()
	if ok {
		return slices.Clone(list), nil
	}
	return s.Refresh(ctx, identity)
}

func (s *Store) Contains(ctx context.Context, identity *domain.Identity, productID string) (bool, error) {
	list, err := s.List(ctx, identity)
	if err != nil {
		return false, err
	}
	return slices.Contains(list, productID), nil
}

// Toggle adds productID when absent and removes it otherwise. It reports
// whether the product is in the list afterwards.
func (s *Store) Toggle(ctx context.Context, identity *domain.Identity, productID string) (bool, []string, error) {
	if identity == nil {
		notify.Error(ctx, s.notify, "Please sign in to add items to your wishlist.")
		return false, []string{}, ErrUnauthenticated
	}

	present, err := s.Contains(ctx, identity, productID)
	if err != nil {
		notify.Error(ctx, s.notify, "Failed to update wishlist.")
		return false, nil, errors.Join(ErrUpdateFailed, err)
	}

	var profile *clients.Profile
	if present {
		profile, err = s.backend.RemoveFromWishlist(ctx, identity.Token, productID)
	} else {
		profile, err = s.backend.AddToWishlist(ctx, identity.Token, productID)
	}
	if err != nil {
		s.log.Error("wishlist update failed",
			zap.String("user_id", identity.UserID),
			zap.String("product_id", productID),
			zap.Error(err))
		notify.Error(ctx, s.notify, "Failed to update wishlist.")
		return present, nil, errors.Join(ErrUpdateFailed, err)
	}

	list := s.store(identity.UserID, profile.Wishlist)
	if present {
		notify.Success(ctx, s.notify, "Removed from wishlist")
	} else {
		notify.Success(ctx, s.notify, "Added to wishlist")
	}
	return slices.Contains(list, productID), list, nil
}

func (s *Store) store(userID string, list []string) []string {
	if list == nil {
		list = []string{}
	}
	s.mu.Lock()
	s.lists[userID] = slices.Clone(list)
	s.mu.Unlock()
	return slices.Clone(list)
}
