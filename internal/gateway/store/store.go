// Package store defines the gateway's persistence interface. The only state
// the gateway keeps is the set of pending federated-login nonces; everything
// else lives in cookies or upstream.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Nonce is a pending federated-login state value. It is written when an
// authorization flow starts and consumed exactly once when the callback
// arrives. Expired nonces are swept by housekeeping.
type Nonce struct {
	State     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NonceStore is the data access interface for pending nonces. Concrete
// drivers (memory, sqlite) implement this.
type NonceStore interface {
	// Save stores a freshly minted nonce.
	Save(ctx context.Context, n Nonce) error

	// Consume atomically fetches and deletes a nonce by its state value.
	// A second Consume for the same state, or a Consume after expiry,
	// returns ErrNotFound. This is what makes state values single use.
	Consume(ctx context.Context, state string) (Nonce, error)

	// DeleteExpired removes nonces past their expiry (housekeeping).
	DeleteExpired(ctx context.Context) (int64, error)

	// Ping verifies the backing storage is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}
