package cache

import (
	"context"
	"errors"
	"fmt"
)

// Slot is a string-keyed store holding one serialised cart per key.
// Consumers depend on this interface, not on Redis.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrSlotEmpty = errors.New("slot empty")

// CartKey is the slot key of a browser session's cart.
func CartKey(sessionID string) string {
	return fmt.Sprintf("rishe-cart:%s", sessionID)
}
