// Package slot provides durable key-value slots that hold one serialized payload per key.
//
// A slot is the server-side counterpart of a browser's local storage: the cart store writes its
// whole serialized state under a single namespaced key and reads it back on the next visit.
package slot

import (
	"context"
	"errors"
	"strings"
)

// Slot reads and writes whole payloads by key.
type Slot interface {
	// Get returns the payload stored under key. found is false when the key was never written.
	Get(ctx context.Context, key string) (payload string, found bool, err error)
	// Set replaces the payload stored under key.
	Set(ctx context.Context, key, payload string) error
}

var ErrEmptyKey = errors.New("slot key is required")

// Key joins a namespace and a session id into a slot key, e.g. "avenge-cart:5f1c...".
func Key(namespace, id string) string {
	return strings.TrimSpace(namespace) + ":" + strings.TrimSpace(id)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
