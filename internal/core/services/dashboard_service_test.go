package services_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/mocks"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardDeps struct {
	source      *mocks.MockRecordSource
	users       *mocks.MockUserRepository
	authz       *mocks.MockAuthorizationService
	broadcaster *mocks.MockEventBroadcaster
}

func newDashboardService(cache ports.Cache) (ports.DashboardService, dashboardDeps) {
	d := dashboardDeps{
		source:      mocks.NewMockRecordSource(),
		users:       mocks.NewMockUserRepository(),
		authz:       mocks.NewMockAuthorizationService(),
		broadcaster: mocks.NewMockEventBroadcaster(),
	}
	svc := services.NewDashboardService(d.source, d.users, d.authz, cache, d.broadcaster,
		services.DashboardConfig{Location: time.UTC, CacheTTL: 5 * time.Minute},
		services.FixedClock(fixedNow), testLogger())
	return svc, d
}

func chartQuery(q ports.RecordQuery) bool {
	return q.CreatedFrom != nil && q.CreatedTo != nil
}

func chartTickets() []domain.Record {
	due := fixedNow.Add(-72 * time.Hour)
	return []domain.Record{
		domain.TicketRecord(&domain.Ticket{ID: "1", Title: "a", Status: domain.StatusResolved, CreatedAt: fixedNow.Add(-time.Hour)}),
		domain.TicketRecord(&domain.Ticket{ID: "2", Title: "b", Status: domain.StatusOpen, CreatedAt: fixedNow.Add(-2 * time.Hour)}),
		domain.TicketRecord(&domain.Ticket{ID: "3", Title: "c", Status: domain.StatusOpen, CreatedAt: fixedNow.Add(-96 * time.Hour), DueAt: &due}),
	}
}

func TestDashboardService_Chart_WithoutCache(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}
	svc, d := newDashboardService(nil)

	d.authz.On("Can", ctx, actor, domain.PermReportsRead).Return(true, nil)
	d.source.On("List", ctx, domain.KindTicket, mock.MatchedBy(chartQuery)).Return(chartTickets(), nil)

	chart, err := svc.Chart(ctx, actor, time.Time{})
	require.NoError(t, err)
	require.Len(t, chart, 7)

	today := chart[fixedNow.Weekday()]
	assert.Equal(t, "2024-07-25", today.DateKey)
	assert.Equal(t, 2, today.TotalCount)
	assert.Equal(t, 1, today.ResolvedCount)
	assert.InDelta(t, 50.0, today.ResolutionRatePercent, 0.001)

	old := chart[fixedNow.Add(-96*time.Hour).Weekday()]
	assert.Equal(t, 1, old.TotalCount)
	assert.Equal(t, 1, old.VeryOverdueCount)
	assert.Equal(t, domain.ColorRed, old.ColorClass)
}

func TestDashboardService_Chart_CacheHit(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}
	cache := mocks.NewMockCache()
	svc, d := newDashboardService(cache)

	cached := []domain.DayBucket{{Label: "Qui", DateKey: "2024-07-25", TotalCount: 9}}

	d.authz.On("Can", ctx, actor, domain.PermReportsRead).Return(true, nil)
	cache.On("Get", ctx, "dashboard:chart:2024-07-25", mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(2).(*[]domain.DayBucket)) = cached
		}).
		Return(nil)

	chart, err := svc.Chart(ctx, actor, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, cached, chart)
	d.source.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardService_Chart_CacheMissStores(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}
	cache := mocks.NewMockCache()
	svc, d := newDashboardService(cache)

	d.authz.On("Can", ctx, actor, domain.PermReportsRead).Return(true, nil)
	cache.On("Get", ctx, "dashboard:chart:2024-07-25", mock.Anything).Return(apperrors.ErrCacheMiss)
	d.source.On("List", ctx, domain.KindTicket, mock.MatchedBy(chartQuery)).Return(chartTickets(), nil)
	cache.On("Set", ctx, "dashboard:chart:2024-07-25", mock.Anything, mock.AnythingOfType("time.Duration")).Return(nil)

	chart, err := svc.Chart(ctx, actor, fixedNow)
	require.NoError(t, err)
	assert.Len(t, chart, 7)
	cache.AssertExpectations(t)
}

func TestDashboardService_Chart_Forbidden(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u", Role: domain.RoleUser}
	svc, d := newDashboardService(nil)

	d.authz.On("Can", ctx, actor, domain.PermReportsRead).Return(false, nil)

	_, err := svc.Chart(ctx, actor, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "admin", Role: domain.RoleAdmin}
	svc, d := newDashboardService(nil)

	recentTickets := chartTickets()[:2]
	recentAssets := []domain.Record{
		domain.AssetRecord(&domain.Asset{ID: "a1", Name: "Notebook", Status: domain.AssetActive, CreatedAt: fixedNow}),
	}

	d.authz.On("Can", ctx, actor, domain.PermReportsRead).Return(true, nil)
	d.source.On("Count", mock.Anything, domain.KindAsset, ports.RecordQuery{}).Return(int64(12), nil)
	d.source.On("Count", mock.Anything, domain.KindTicket, mock.MatchedBy(func(q ports.RecordQuery) bool {
		return len(q.StatusIn) == len(domain.ActiveTicketStatuses)
	})).Return(int64(4), nil)
	d.users.On("CountActive", mock.Anything).Return(int64(7), nil)
	d.source.On("List", mock.Anything, domain.KindTicket, ports.RecordQuery{Limit: 3}).Return(recentTickets, nil)
	d.source.On("List", mock.Anything, domain.KindAsset, ports.RecordQuery{Limit: 3}).Return(recentAssets, nil)
	d.source.On("List", mock.Anything, domain.KindTicket, mock.MatchedBy(chartQuery)).Return(chartTickets(), nil)

	summary, err := svc.Summary(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(12), summary.TotalAssets)
	assert.Equal(t, int64(4), summary.ActiveTickets)
	assert.Equal(t, int64(7), summary.ActiveUsers)
	assert.Len(t, summary.RecentTickets, 2)
	require.Len(t, summary.RecentAssets, 1)
	assert.Equal(t, "Notebook", summary.RecentAssets[0].Name)
	assert.Len(t, summary.Chart, 7)
}

func TestDashboardService_Watch(t *testing.T) {
	ctx := context.Background()
	svc, d := newDashboardService(nil)

	snapshots := make(chan []domain.Record, 2)
	snapshots <- chartTickets()
	snapshots <- chartTickets()[:1]
	close(snapshots)

	d.source.On("Subscribe", mock.Anything, domain.KindTicket, mock.MatchedBy(func(q ports.RecordQuery) bool {
		want := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)
		return q.CreatedFrom != nil && q.CreatedFrom.Equal(want)
	})).Return((<-chan []domain.Record)(snapshots), nil)
	d.broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
		_, ok := e.Payload.([]domain.DayBucket)
		return e.Type == domain.EventDashboardUpdated && e.Topic == domain.TopicDashboard && ok
	})).Return(nil).Twice()

	err := svc.Watch(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionEnded)
	d.broadcaster.AssertExpectations(t)
}

func TestDashboardService_Watch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, d := newDashboardService(nil)

	snapshots := make(chan []domain.Record)
	d.source.On("Subscribe", mock.Anything, domain.KindTicket, mock.Anything).
		Return((<-chan []domain.Record)(snapshots), nil)

	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	cancel()
	close(snapshots)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestDashboardService_Watch_RenewsWindowAtMidnight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	beforeMidnight := time.Date(2024, 7, 25, 23, 59, 59, int(900*time.Millisecond), time.UTC)
	afterMidnight := time.Date(2024, 7, 26, 0, 0, 1, 0, time.UTC)
	var calls atomic.Int32
	clock := services.Clock(func() time.Time {
		if calls.Add(1) == 1 {
			return beforeMidnight
		}
		return afterMidnight
	})

	source := mocks.NewMockRecordSource()
	svc := services.NewDashboardService(source, mocks.NewMockUserRepository(), mocks.NewMockAuthorizationService(),
		nil, mocks.NewMockEventBroadcaster(), services.DashboardConfig{Location: time.UTC}, clock, testLogger())

	windowFrom := func(day int) any {
		return mock.MatchedBy(func(q ports.RecordQuery) bool {
			return q.CreatedFrom != nil && q.CreatedFrom.Equal(time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC))
		})
	}

	first := make(chan []domain.Record)
	second := make(chan []domain.Record)
	resubscribed := make(chan struct{})
	source.On("Subscribe", mock.Anything, domain.KindTicket, windowFrom(19)).
		Return((<-chan []domain.Record)(first), nil).Once()
	source.On("Subscribe", mock.Anything, domain.KindTicket, windowFrom(20)).
		Run(func(mock.Arguments) { close(resubscribed) }).
		Return((<-chan []domain.Record)(second), nil).Once()

	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	select {
	case <-resubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not renew its window after midnight")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	source.AssertExpectations(t)
}

func TestDashboardService_InvalidateChart(t *testing.T) {
	ctx := context.Background()
	cache := mocks.NewMockCache()
	svc, _ := newDashboardService(cache)

	cache.On("Delete", ctx, []string{
		"dashboard:chart:2024-07-23",
		"dashboard:chart:2024-07-24",
		"dashboard:chart:2024-07-25",
		"dashboard:chart:2024-07-26",
		"dashboard:chart:2024-07-27",
		"dashboard:chart:2024-07-28",
		"dashboard:chart:2024-07-29",
	}).Return(nil)

	svc.InvalidateChart(ctx, time.Date(2024, 7, 23, 15, 30, 0, 0, time.UTC))
	cache.AssertExpectations(t)

	svc.InvalidateChart(ctx, time.Time{})
	cache.AssertNumberOfCalls(t, "Delete", 1)
}

// chartCache is an in-memory ports.Cache for chart values.
type chartCache struct {
	mu    sync.Mutex
	items map[string][]domain.DayBucket
}

func (c *chartCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return apperrors.ErrCacheMiss
	}
	*(dest.(*[]domain.DayBucket)) = slices.Clone(v)
	return nil
}

func (c *chartCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = slices.Clone(value.([]domain.DayBucket))
	return nil
}

func (c *chartCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func TestDashboardService_ChartReflectsResolvedTicket(t *testing.T) {
	ctx := context.Background()
	tech := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}
	createdAt := fixedNow.Add(-48 * time.Hour)

	dashboard, d := newDashboardService(&chartCache{items: make(map[string][]domain.DayBucket)})
	d.authz.On("Can", ctx, tech, domain.PermReportsRead).Return(true, nil)

	open := &domain.Ticket{ID: "t-1", Title: "Sem rede", AuthorID: "tech-1", Status: domain.StatusOpen, CreatedAt: createdAt}
	resolved := *open
	resolved.Status = domain.StatusResolved
	d.source.On("List", ctx, domain.KindTicket, mock.MatchedBy(chartQuery)).
		Return([]domain.Record{domain.TicketRecord(open)}, nil).Once()
	d.source.On("List", ctx, domain.KindTicket, mock.MatchedBy(chartQuery)).
		Return([]domain.Record{domain.TicketRecord(&resolved)}, nil).Once()

	repo := mocks.NewMockTicketRepository()
	authz := mocks.NewMockAuthorizationService()
	broadcaster := mocks.NewMockEventBroadcaster()
	tickets := services.NewTicketService(repo, mocks.NewMockRecordSource(), authz, mocks.NewMockNotifier(),
		broadcaster, dashboard, services.FixedClock(fixedNow), testLogger())

	authz.On("Can", ctx, tech, mock.Anything).Return(true, nil)
	repo.On("GetByID", ctx, "t-1").Return(open, nil)
	repo.On("Update", ctx, mock.Anything).Return(&resolved, nil)
	broadcaster.On("Broadcast", mock.Anything).Return(nil)

	before, err := dashboard.Chart(ctx, tech, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 0, before[createdAt.Weekday()].ResolvedCount)

	_, err = tickets.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "t-1", Status: domain.StatusResolved, Actor: tech})
	require.NoError(t, err)
	tickets.Shutdown()

	after, err := dashboard.Chart(ctx, tech, fixedNow)
	require.NoError(t, err)
	bucket := after[createdAt.Weekday()]
	assert.Equal(t, 1, bucket.ResolvedCount)
	assert.InDelta(t, 100.0, bucket.ResolutionRatePercent, 0.001)
	d.source.AssertExpectations(t)
}
