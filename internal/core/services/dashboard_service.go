package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/reporting"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const chartCacheKeyPrefix = "dashboard:chart:"

// DashboardConfig tunes the dashboard service.
type DashboardConfig struct {
	Location    *time.Location
	CacheTTL    time.Duration
	RecentLimit int
}

// DashboardService computes the landing page chart and summary.
type DashboardService struct {
	source      ports.RecordSource
	userRepo    ports.UserRepository
	authzSvc    ports.AuthorizationService
	cache       ports.Cache
	broadcaster ports.EventBroadcaster
	sf          singleflight.Group
	cfg         DashboardConfig
	clock       Clock
	logger      *slog.Logger
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService creates a dashboard service. cache may be nil, in
// which case every chart is computed on demand.
func NewDashboardService(
	source ports.RecordSource,
	userRepo ports.UserRepository,
	authzSvc ports.AuthorizationService,
	cache ports.Cache,
	broadcaster ports.EventBroadcaster,
	cfg DashboardConfig,
	clock Clock,
	logger *slog.Logger,
) ports.DashboardService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 3
	}
	return &DashboardService{
		source:      source,
		userRepo:    userRepo,
		authzSvc:    authzSvc,
		cache:       cache,
		broadcaster: broadcaster,
		cfg:         cfg,
		clock:       clock,
		logger:      logger.With("service", "dashboard"),
	}
}

// Chart returns the seven-day ticket chart ending on anchor's day. A zero
// anchor means now.
func (s *DashboardService) Chart(ctx context.Context, actor domain.Identity, anchor time.Time) ([]domain.DayBucket, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermReportsRead); err != nil {
		return nil, err
	}
	if anchor.IsZero() {
		anchor = s.clock()
	}
	return s.cachedChart(ctx, anchor.In(s.cfg.Location))
}

func (s *DashboardService) Summary(ctx context.Context, actor domain.Identity) (*domain.DashboardSummary, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermReportsRead); err != nil {
		return nil, err
	}

	now := s.clock().In(s.cfg.Location)
	summary := &domain.DashboardSummary{GeneratedAt: now}

	activeStatuses := make([]string, 0, len(domain.ActiveTicketStatuses))
	for _, st := range domain.ActiveTicketStatuses {
		activeStatuses = append(activeStatuses, string(st))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.source.Count(gctx, domain.KindAsset, ports.RecordQuery{})
		if err != nil {
			return fmt.Errorf("failed to count assets: %w", err)
		}
		summary.TotalAssets = n
		return nil
	})

	g.Go(func() error {
		n, err := s.source.Count(gctx, domain.KindTicket, ports.RecordQuery{StatusIn: activeStatuses})
		if err != nil {
			return fmt.Errorf("failed to count active tickets: %w", err)
		}
		summary.ActiveTickets = n
		return nil
	})

	g.Go(func() error {
		n, err := s.userRepo.CountActive(gctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		summary.ActiveUsers = n
		return nil
	})

	g.Go(func() error {
		records, err := s.source.List(gctx, domain.KindTicket, ports.RecordQuery{Limit: s.cfg.RecentLimit})
		if err != nil {
			return fmt.Errorf("failed to load recent tickets: %w", err)
		}
		summary.RecentTickets = ticketsOf(records)
		return nil
	})

	g.Go(func() error {
		records, err := s.source.List(gctx, domain.KindAsset, ports.RecordQuery{Limit: s.cfg.RecentLimit})
		if err != nil {
			return fmt.Errorf("failed to load recent assets: %w", err)
		}
		summary.RecentAssets = assetsOf(records)
		return nil
	})

	g.Go(func() error {
		chart, err := s.cachedChart(gctx, now)
		if err != nil {
			return err
		}
		summary.Chart = chart
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// RefreshChart recomputes today's chart and overwrites the cached copy.
func (s *DashboardService) RefreshChart(ctx context.Context) ([]domain.DayBucket, error) {
	now := s.clock().In(s.cfg.Location)
	chart, err := s.computeChart(ctx, now)
	if err != nil {
		return nil, err
	}
	s.storeChart(ctx, now, chart)
	return chart, nil
}

// Watch recomputes the chart on every ticket snapshot and pushes it to the
// dashboard topic. The subscription is renewed at each local midnight so
// its window follows the current day. It returns when ctx is done or the
// subscription ends.
func (s *DashboardService) Watch(ctx context.Context) error {
	s.logger.Info("watching tickets for dashboard updates")
	for {
		err := s.watchDay(ctx)
		if !errors.Is(err, errDayRolledOver) {
			return err
		}
		s.logger.Debug("dashboard window rolled over, resubscribing")
	}
}

var errDayRolledOver = errors.New("dashboard day rolled over")

func (s *DashboardService) watchDay(ctx context.Context) error {
	now := s.clock().In(s.cfg.Location)
	windowStart := s.windowStart(now)
	nextDay := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshots, err := s.source.Subscribe(subCtx, domain.KindTicket, ports.RecordQuery{CreatedFrom: &windowStart})
	if err != nil {
		return fmt.Errorf("failed to subscribe to tickets: %w", err)
	}

	rollover := time.NewTimer(nextDay.Sub(now))
	defer rollover.Stop()

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return apperrors.ErrSubscriptionEnded
			}
			s.publishChart(ctx, snapshot)
		case <-rollover.C:
			return errDayRolledOver
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *DashboardService) publishChart(ctx context.Context, snapshot []domain.Record) {
	now := s.clock().In(s.cfg.Location)
	chart := reporting.Aggregate(snapshot, now)
	s.storeChart(ctx, now, chart)

	if err := s.broadcaster.Broadcast(domain.Event{
		Type:    domain.EventDashboardUpdated,
		Topic:   domain.TopicDashboard,
		Payload: chart,
	}); err != nil {
		s.logger.Warn("failed to broadcast dashboard update", "error", err)
	}
}

// InvalidateChart drops every cached chart whose window contains createdAt.
func (s *DashboardService) InvalidateChart(ctx context.Context, createdAt time.Time) {
	if s.cache == nil || createdAt.IsZero() {
		return
	}

	day := createdAt.In(s.cfg.Location)
	keys := make([]string, 0, reporting.WindowDays)
	for i := range reporting.WindowDays {
		keys = append(keys, chartCacheKey(time.Date(day.Year(), day.Month(), day.Day()+i, 0, 0, 0, 0, day.Location())))
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate dashboard chart", "keys", keys, "error", err)
	}
}

func (s *DashboardService) cachedChart(ctx context.Context, anchor time.Time) ([]domain.DayBucket, error) {
	return findAndCache(ctx, s.cache, &s.sf, chartCacheKey(anchor), s.cfg.CacheTTL, s.logger,
		func(ctx context.Context) ([]domain.DayBucket, error) {
			return s.computeChart(ctx, anchor)
		})
}

func (s *DashboardService) computeChart(ctx context.Context, anchor time.Time) ([]domain.DayBucket, error) {
	from := s.windowStart(anchor)
	to := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 23, 59, 59, int(999*time.Millisecond), anchor.Location())

	records, err := s.source.List(ctx, domain.KindTicket, ports.RecordQuery{CreatedFrom: &from, CreatedTo: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets for chart: %w", err)
	}
	return reporting.Aggregate(records, anchor), nil
}

func (s *DashboardService) storeChart(ctx context.Context, anchor time.Time, chart []domain.DayBucket) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, chartCacheKey(anchor), chart, addTTLJitter(s.cfg.CacheTTL)); err != nil {
		s.logger.Warn("failed to store dashboard chart", "error", err)
	}
}

func (s *DashboardService) windowStart(anchor time.Time) time.Time {
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day()-(reporting.WindowDays-1), 0, 0, 0, 0, anchor.Location())
}

func chartCacheKey(anchor time.Time) string {
	return chartCacheKeyPrefix + anchor.Format(domain.DateKeyLayout)
}

func ticketsOf(records []domain.Record) []*domain.Ticket {
	out := make([]*domain.Ticket, 0, len(records))
	for _, r := range records {
		if t, ok := r.Ticket(); ok {
			out = append(out, t)
		}
	}
	return out
}

func assetsOf(records []domain.Record) []*domain.Asset {
	out := make([]*domain.Asset, 0, len(records))
	for _, r := range records {
		if a, ok := r.Asset(); ok {
			out = append(out, a)
		}
	}
	return out
}
