// Package memory is an in-process NonceStore. It is the default driver: the
// nonce working set is tiny and losing it on restart only means pending
// federated logins have to start over.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"
)

type Store struct {
	mu     sync.Mutex
	nonces map[string]store.Nonce
}

func NewStore() *Store {
	return &Store{
		nonces: make(map[string]store.Nonce),
	}
}

func (s *Store) Save(ctx context.Context, n store.Nonce) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[n.State] = n
	return nil
}

func (s *Store) Consume(ctx context.Context, state string) (store.Nonce, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nonces[state]
	if !ok {
		return store.Nonce{}, store.ErrNotFound
	}
	delete(s.nonces, state)

	if time.Now().After(n.ExpiresAt) {
		return store.Nonce{}, store.ErrNotFound
	}
	return n, nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int64
	for state, n := range s.nonces {
		if now.After(n.ExpiresAt) {
			delete(s.nonces, state)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
