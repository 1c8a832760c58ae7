// Package sqlite is the durable NonceStore driver. Use it when pending
// federated logins must survive a gateway restart.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Consume relies on a delete-then-read transaction; keep writers serialized.
	db.SetMaxOpenConns(1)

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Save(ctx context.Context, n store.Nonce) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oidc_nonces (state, created_at, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (state) DO UPDATE SET
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, n.State, n.CreatedAt, n.ExpiresAt)
	return err
}

// Consume fetches and deletes a nonce in one transaction. The delete's row
// count decides whether the nonce existed, so two racing consumers cannot
// both succeed.
func (s *Store) Consume(ctx context.Context, state string) (store.Nonce, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Nonce{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var n store.Nonce
	err = tx.QueryRowContext(ctx, `
		SELECT state, created_at, expires_at
		FROM oidc_nonces
		WHERE state = ?
	`, state).Scan(&n.State, &n.CreatedAt, &n.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Nonce{}, store.ErrNotFound
	}
	if err != nil {
		return store.Nonce{}, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM oidc_nonces WHERE state = ?`, state)
	if err != nil {
		return store.Nonce{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Nonce{}, err
	}
	if affected == 0 {
		return store.Nonce{}, store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return store.Nonce{}, err
	}

	if nonceExpired(n) {
		return store.Nonce{}, store.ErrNotFound
	}
	return n, nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM oidc_nonces
		WHERE expires_at < ?
	`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nonceExpired(n store.Nonce) bool {
	return time.Now().After(n.ExpiresAt)
}
