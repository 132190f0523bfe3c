package ports

import (
	"context"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/reporting"
)

// AuthorizationService defines the port for checking user permissions.
type AuthorizationService interface {
	Can(ctx context.Context, actor domain.Identity, permission string) (bool, error)
	GetPermissions(ctx context.Context, actor domain.Identity) ([]string, error)
}

// ProfileService provisions and reads the caller's user profile.
type ProfileService interface {
	GetOrCreateProfile(ctx context.Context, actor domain.Identity, params ProfileParams) (*domain.User, error)
}

// ProfileParams carries identity-provider attributes used on first login.
type ProfileParams struct {
	Email    string
	FullName string
}

// AdminService defines the port for admin-only operations.
type AdminService interface {
	ListUsers(ctx context.Context, actor domain.Identity) ([]*domain.User, error)
	UpdateUserRole(ctx context.Context, actor domain.Identity, userID string, role domain.Role) error
}

// ReportRequest is a report query as received from a client.
type ReportRequest struct {
	Kind     domain.RecordKind
	Criteria reporting.CriteriaInput
	// Sort is the current table ordering. Zero selects the default.
	Sort domain.SortSpec
	// Toggle, when set, applies a header click on that column to Sort.
	Toggle domain.Column
}

type ReportService interface {
	Report(ctx context.Context, actor domain.Identity, req ReportRequest) (*domain.Report, error)
}

type DashboardService interface {
	Chart(ctx context.Context, actor domain.Identity, anchor time.Time) ([]domain.DayBucket, error)
	Summary(ctx context.Context, actor domain.Identity) (*domain.DashboardSummary, error)
	// RefreshChart recomputes today's chart and stores it in the cache.
	RefreshChart(ctx context.Context) ([]domain.DayBucket, error)
	// Watch pushes a recomputed chart to live clients on every ticket
	// change until ctx is done.
	Watch(ctx context.Context) error
	ChartInvalidator
}

// ChartInvalidator drops cached charts affected by a ticket created at
// createdAt. Failures are logged, not returned.
type ChartInvalidator interface {
	InvalidateChart(ctx context.Context, createdAt time.Time)
}

type AssetService interface {
	CreateAsset(ctx context.Context, actor domain.Identity, params domain.AssetParams) (*domain.Asset, error)
	GetAsset(ctx context.Context, actor domain.Identity, id string) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, actor domain.Identity, id string, params domain.AssetParams) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, actor domain.Identity, id string) error
	ListRecentAssets(ctx context.Context, actor domain.Identity, limit int) ([]*domain.Asset, error)
}

// UpdateStatusParams defines the input for changing a ticket's status.
type UpdateStatusParams struct {
	TicketID string
	Status   domain.TicketStatus
	Actor    domain.Identity
}

type TicketService interface {
	CreateTicket(ctx context.Context, actor domain.Identity, params domain.TicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, actor domain.Identity, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, actor domain.Identity, id string) error
	ListRecentTickets(ctx context.Context, actor domain.Identity, limit int) ([]*domain.Ticket, error)
}

// DigestService notifies responsibles about their late tickets.
type DigestService interface {
	SendOverdueDigest(ctx context.Context) (int, error)
}

// NotificationParams defines the data for sending a notification.
type NotificationParams struct {
	Recipient string
	Subject   string
	Message   string
}

// Notifier defines the port for sending notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// EventBroadcaster defines the port for pushing live events to clients.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
	SendToUser(userID string, event domain.Event)
}
