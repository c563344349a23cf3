package store

import (
	"context"
	"errors"

	"github.com/nhle/crmterm/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// GenerationFilter controls which logged generations are returned.
type GenerationFilter struct {
	Kind        *model.AIKind
	SuccessOnly bool
	Limit       int
}

// Store is the local cache kept next to the backend: the signed-in
// profile, the last known inbox and a log of content generations.
type Store interface {
	// === Profile ===

	SaveUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context) (*model.User, error)
	ClearUser(ctx context.Context) error

	// === Incoming email cache ===

	SaveIncomingEmails(ctx context.Context, emails []model.IncomingEmail) error
	GetIncomingEmails(ctx context.Context) ([]model.IncomingEmail, error)
	SetIncomingStatus(ctx context.Context, id int64, status model.IncomingStatus) error

	// === Generation log ===

	RecordGeneration(ctx context.Context, g *model.AIGeneration) error
	GetGenerations(ctx context.Context, filter GenerationFilter) ([]model.AIGeneration, error)

	Close() error
}
