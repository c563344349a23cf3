package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/crmterm/internal/model"
)

// SaveUser replaces the cached profile with u.
func (s *SQLiteStore) SaveUser(ctx context.Context, u model.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("clearing cached profile: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", u.Username, err)
	}

	return tx.Commit()
}

// GetUser returns the cached profile, or ErrNotFound when signed out.
func (s *SQLiteStore) GetUser(ctx context.Context) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u,
		"SELECT id, username, email, first_name, last_name FROM users LIMIT 1",
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached profile: %w", err)
	}
	return &u, nil
}

// ClearUser drops the cached profile.
func (s *SQLiteStore) ClearUser(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("clearing cached profile: %w", err)
	}
	return nil
}
