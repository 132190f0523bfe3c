package ports

import (
	"context"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

// RecordQuery is the part of a report the store evaluates itself. Results
// are always ordered by creation time, newest first.
type RecordQuery struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	StatusIn    []string
	Limit       int // 0 means no limit
}

// RecordSource reads assets and tickets as generic records.
type RecordSource interface {
	List(ctx context.Context, kind domain.RecordKind, q RecordQuery) ([]domain.Record, error)
	Count(ctx context.Context, kind domain.RecordKind, q RecordQuery) (int64, error)
	// Subscribe delivers a fresh snapshot matching q after every change to
	// the collection, starting with the current one. The channel is closed
	// when ctx is done or the underlying stream fails.
	Subscribe(ctx context.Context, kind domain.RecordKind, q RecordQuery) (<-chan []domain.Record, error)
}

type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	Update(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	Delete(ctx context.Context, id string) error
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	CountActive(ctx context.Context) (int64, error)
	SetRole(ctx context.Context, id string, role domain.Role) error
}

// Cache stores JSON-serialisable values. Get returns errors.ErrCacheMiss
// for absent keys.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
