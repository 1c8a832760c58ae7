package credstub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/sessiongate/pkg/idx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"

	_ "modernc.org/sqlite"
)

var (
	ErrUserNotFound  = errors.New("credstub: user not found")
	ErrBadPassword   = errors.New("credstub: bad password")
	ErrUsernameTaken = errors.New("credstub: username taken")
)

// User is an account row, password hash included. Convert to a
// sessionsdk.Identity before it leaves the process.
type User struct {
	ID           string
	Username     string
	Email        string
	Role         sessionsdk.Role
	IsActive     bool
	PasswordHash string
}

// Identity strips the credential material off a User.
func (u User) Identity() sessionsdk.Identity {
	return sessionsdk.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// UserStore is a small bcrypt-backed account table. The schema is applied
// inline; this is development fixture data, not a production store.
type UserStore struct {
	db *sql.DB
}

func OpenUserStore(dsn string) (*UserStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &UserStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *UserStore) Close() error { return s.db.Close() }

func (s *UserStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL,
			role          TEXT NOT NULL,
			is_active     INTEGER NOT NULL DEFAULT 1,
			password_hash TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return s.seed()
}

// seed installs the well-known development accounts when the table is empty.
func (s *UserStore) seed() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	accounts := []struct {
		username string
		password string
		role     sessionsdk.Role
	}{
		{"admin", "admin", sessionsdk.RoleAdmin},
		{"editor", "editor", sessionsdk.RoleModerator},
		{"user", "user", sessionsdk.RoleUser},
	}

	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = s.db.Exec(`
			INSERT INTO users (id, username, email, role, is_active, password_hash)
			VALUES (?, ?, ?, ?, 1, ?)
		`, idx.New().String(), a.username, a.username+"@example.com", string(a.role), string(hash))
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", a.username, err)
		}
	}
	return nil
}

// Authenticate verifies a username/password pair.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadPassword
	}
	return u, nil
}

// Create inserts a new account with the default role.
func (s *UserStore) Create(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)

	if _, err := s.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		Role:         sessionsdk.RoleUser,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, role, is_active, password_hash)
		VALUES (?, ?, ?, ?, 1, ?)
	`, u.ID, u.Username, u.Email, string(u.Role), u.PasswordHash)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.get(ctx, `SELECT id, username, email, role, is_active, password_hash
		FROM users WHERE username = ?`, username)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.get(ctx, `SELECT id, username, email, role, is_active, password_hash
		FROM users WHERE id = ?`, id)
}

func (s *UserStore) get(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	var role string
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &role, &u.IsActive, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = sessionsdk.Role(role)
	return &u, nil
}
