package mocks

import (
	"context"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockRecordSource is a mock implementation of ports.RecordSource
type MockRecordSource struct {
	mock.Mock
}

func NewMockRecordSource() *MockRecordSource {
	return &MockRecordSource{}
}

func (m *MockRecordSource) List(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) ([]domain.Record, error) {
	args := m.Called(ctx, kind, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordSource) Count(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) (int64, error) {
	args := m.Called(ctx, kind, q)
	return args.Get(0).(int64), args.Error(1)
}

// Subscribe expects the first return value to be a <-chan []domain.Record.
func (m *MockRecordSource) Subscribe(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) (<-chan []domain.Record, error) {
	args := m.Called(ctx, kind, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []domain.Record), args.Error(1)
}

// MockAssetRepository is a mock implementation of ports.AssetRepository
type MockAssetRepository struct {
	mock.Mock
}

func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{}
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	args := m.Called(ctx, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) Update(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	args := m.Called(ctx, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// MockCache is a mock implementation of ports.Cache. Use Run to fill dest
// on a simulated hit.
type MockCache struct {
	mock.Mock
}

func NewMockCache() *MockCache {
	return &MockCache{}
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockAuthorizationService is a mock implementation of ports.AuthorizationService
type MockAuthorizationService struct {
	mock.Mock
}

func NewMockAuthorizationService() *MockAuthorizationService {
	return &MockAuthorizationService{}
}

func (m *MockAuthorizationService) Can(ctx context.Context, actor domain.Identity, permission string) (bool, error) {
	args := m.Called(ctx, actor, permission)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationService) GetPermissions(ctx context.Context, actor domain.Identity) ([]string, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockProfileService is a mock implementation of ports.ProfileService
type MockProfileService struct {
	mock.Mock
}

func NewMockProfileService() *MockProfileService {
	return &MockProfileService{}
}

func (m *MockProfileService) GetOrCreateProfile(ctx context.Context, actor domain.Identity, params ports.ProfileParams) (*domain.User, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAdminService is a mock implementation of ports.AdminService
type MockAdminService struct {
	mock.Mock
}

func NewMockAdminService() *MockAdminService {
	return &MockAdminService{}
}

func (m *MockAdminService) ListUsers(ctx context.Context, actor domain.Identity) ([]*domain.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockAdminService) UpdateUserRole(ctx context.Context, actor domain.Identity, userID string, role domain.Role) error {
	args := m.Called(ctx, actor, userID, role)
	return args.Error(0)
}

// MockReportService is a mock implementation of ports.ReportService
type MockReportService struct {
	mock.Mock
}

func NewMockReportService() *MockReportService {
	return &MockReportService{}
}

func (m *MockReportService) Report(ctx context.Context, actor domain.Identity, req ports.ReportRequest) (*domain.Report, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

// MockDashboardService is a mock implementation of ports.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{}
}

func (m *MockDashboardService) Chart(ctx context.Context, actor domain.Identity, anchor time.Time) ([]domain.DayBucket, error) {
	args := m.Called(ctx, actor, anchor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DayBucket), args.Error(1)
}

func (m *MockDashboardService) Summary(ctx context.Context, actor domain.Identity) (*domain.DashboardSummary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSummary), args.Error(1)
}

func (m *MockDashboardService) RefreshChart(ctx context.Context) ([]domain.DayBucket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DayBucket), args.Error(1)
}

func (m *MockDashboardService) Watch(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDashboardService) InvalidateChart(ctx context.Context, createdAt time.Time) {
	m.Called(ctx, createdAt)
}

// MockChartInvalidator is a mock implementation of ports.ChartInvalidator
type MockChartInvalidator struct {
	mock.Mock
}

func NewMockChartInvalidator() *MockChartInvalidator {
	return &MockChartInvalidator{}
}

func (m *MockChartInvalidator) InvalidateChart(ctx context.Context, createdAt time.Time) {
	m.Called(ctx, createdAt)
}

// MockAssetService is a mock implementation of ports.AssetService
type MockAssetService struct {
	mock.Mock
}

func NewMockAssetService() *MockAssetService {
	return &MockAssetService{}
}

func (m *MockAssetService) CreateAsset(ctx context.Context, actor domain.Identity, params domain.AssetParams) (*domain.Asset, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetService) GetAsset(ctx context.Context, actor domain.Identity, id string) (*domain.Asset, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetService) UpdateAsset(ctx context.Context, actor domain.Identity, id string, params domain.AssetParams) (*domain.Asset, error) {
	args := m.Called(ctx, actor, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetService) DeleteAsset(ctx context.Context, actor domain.Identity, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockAssetService) ListRecentAssets(ctx context.Context, actor domain.Identity, limit int) ([]*domain.Asset, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

// MockTicketService is a mock implementation of ports.TicketService
type MockTicketService struct {
	mock.Mock
}

func NewMockTicketService() *MockTicketService {
	return &MockTicketService{}
}

func (m *MockTicketService) CreateTicket(ctx context.Context, actor domain.Identity, params domain.TicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, actor domain.Identity, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) DeleteTicket(ctx context.Context, actor domain.Identity, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTicketService) ListRecentTickets(ctx context.Context, actor domain.Identity, limit int) ([]*domain.Ticket, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

// MockDigestService is a mock implementation of ports.DigestService
type MockDigestService struct {
	mock.Mock
}

func NewMockDigestService() *MockDigestService {
	return &MockDigestService{}
}

func (m *MockDigestService) SendOverdueDigest(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventBroadcaster) SendToUser(userID string, event domain.Event) {
	m.Called(userID, event)
}
