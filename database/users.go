package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// UserStore persists user accounts.
type UserStore struct {
	db *DB
}

// NewUserStore returns a UserStore backed by db.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. It returns ErrDuplicate if the username is taken.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	u := &models.User{Username: username, PasswordHash: passwordHash, CreatedAt: createdAt.Format(time.RFC3339)}
	err := s.db.QueryRowContext(ctx,
		s.db.rebind("INSERT INTO users(username, password_hash, created_at) VALUES(?, ?, ?) RETURNING id"),
		username, passwordHash, createdAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByUsername looks up a user, including the password hash, by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
}

// GetByID looks up a user by id.
func (s *UserStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	return s.getOne(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u         models.User
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, s.db.rebind(query), arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &u, nil
}
