package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/crmterm/internal/model"
)

// RecordGeneration appends a generation attempt to the local log. If g has
// no ID, a new UUID is assigned.
func (s *SQLiteStore) RecordGeneration(ctx context.Context, g *model.AIGeneration) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	var requestID sql.NullInt64
	if g.RequestID != nil {
		requestID = sql.NullInt64{Int64: *g.RequestID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_generations (id, kind, request_id, success, content, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, string(g.Kind), requestID, boolToInt(g.Success),
		g.Content, g.Error, g.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording %s generation: %w", g.Kind, err)
	}
	return nil
}

// GetGenerations returns logged generations, newest first.
func (s *SQLiteStore) GetGenerations(
	ctx context.Context,
	filter GenerationFilter,
) ([]model.AIGeneration, error) {
	var conditions []string
	var args []interface{}

	if filter.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.SuccessOnly {
		conditions = append(conditions, "success = 1")
	}

	query := "SELECT id, kind, request_id, success, content, error, created_at FROM ai_generations"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var out []model.AIGeneration
	for rows.Next() {
		var (
			g         model.AIGeneration
			kind      string
			requestID sql.NullInt64
			success   int
			createdAt time.Time
		)
		err := rows.Scan(&g.ID, &kind, &requestID, &success, &g.Content, &g.Error, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning generation row: %w", err)
		}
		g.Kind = model.AIKind(kind)
		g.Success = success != 0
		g.CreatedAt = createdAt
		if requestID.Valid {
			id := requestID.Int64
			g.RequestID = &id
		}
		out = append(out, g)
	}

	return out, rows.Err()
}
