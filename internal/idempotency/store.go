// Package idempotency remembers the response to a keyed POST so a retried
// request replays it instead of running twice.
package idempotency

import (
	"context"
	"errors"
	"time"
)

// ErrInProgress is returned by Reserve while another request holds the key.
var ErrInProgress = errors.New("request with this idempotency key is in progress")

type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Store interface {
	// Reserve claims key for ttl. It returns the stored record when the key
	// has already completed, ErrInProgress when it is held, and (nil, nil)
	// when the caller now owns the key.
	Reserve(ctx context.Context, key string, ttl time.Duration) (*Record, error)
	Complete(ctx context.Context, key string, record Record, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
