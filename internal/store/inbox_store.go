package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/crmterm/internal/model"
)

// SaveIncomingEmails replaces the cached inbox with emails.
func (s *SQLiteStore) SaveIncomingEmails(
	ctx context.Context,
	emails []model.IncomingEmail,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM incoming_emails"); err != nil {
		return fmt.Errorf("clearing incoming email cache: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO incoming_emails (id, status, received_at, payload)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range emails {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling incoming email %d: %w", e.ID, err)
		}
		_, err = stmt.ExecContext(ctx, e.ID, string(e.Status), e.ReceivedAt.UTC(), string(payload))
		if err != nil {
			return fmt.Errorf("caching incoming email %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetIncomingEmails returns the cached inbox, newest first.
func (s *SQLiteStore) GetIncomingEmails(ctx context.Context) ([]model.IncomingEmail, error) {
	var rows []struct {
		Status  string `db:"status"`
		Payload string `db:"payload"`
	}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT status, payload FROM incoming_emails ORDER BY received_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying incoming email cache: %w", err)
	}

	emails := make([]model.IncomingEmail, 0, len(rows))
	for _, r := range rows {
		var e model.IncomingEmail
		if err := json.Unmarshal([]byte(r.Payload), &e); err != nil {
			return nil, fmt.Errorf("unmarshaling cached incoming email: %w", err)
		}
		// The status column tracks local read/unread changes.
		e.Status = model.IncomingStatus(r.Status)
		emails = append(emails, e)
	}
	return emails, nil
}

// SetIncomingStatus records a status change made after the last refresh.
func (s *SQLiteStore) SetIncomingStatus(
	ctx context.Context,
	id int64,
	status model.IncomingStatus,
) error {
	if !status.Valid() {
		return fmt.Errorf("setting incoming email %d: unknown status %q", id, status)
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE incoming_emails SET status = ? WHERE id = ?", string(status), id,
	)
	if err != nil {
		return fmt.Errorf("setting incoming email %d status: %w", id, err)
	}
	return nil
}
