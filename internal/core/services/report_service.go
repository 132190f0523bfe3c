package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/reporting"
)

// ReportService builds filtered, sorted report tables. Date bounds and
// ordering are pushed down to the store; the remaining predicates run in
// memory through the reporting engine.
type ReportService struct {
	source      ports.RecordSource
	authzSvc    ports.AuthorizationService
	broadcaster ports.EventBroadcaster
	evaluator   *reporting.Evaluator
	location    *time.Location
	clock       Clock
	logger      *slog.Logger
}

var _ ports.ReportService = (*ReportService)(nil)

func NewReportService(
	source ports.RecordSource,
	authzSvc ports.AuthorizationService,
	broadcaster ports.EventBroadcaster,
	location *time.Location,
	clock Clock,
	logger *slog.Logger,
) ports.ReportService {
	return &ReportService{
		source:      source,
		authzSvc:    authzSvc,
		broadcaster: broadcaster,
		evaluator:   reporting.NewEvaluator(nil),
		location:    location,
		clock:       clock,
		logger:      logger.With("service", "report"),
	}
}

func (s *ReportService) Report(ctx context.Context, actor domain.Identity, req ports.ReportRequest) (*domain.Report, error) {
	// 1. Authorization Check
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermReportsRead); err != nil {
		return nil, err
	}

	// 2. Resolve criteria and sort before touching the store
	now := s.clock().In(s.location)
	criteria, err := reporting.BuildCriteria(req.Criteria, now)
	if err != nil {
		return nil, err
	}

	spec := req.Sort
	if spec == (domain.SortSpec{}) {
		spec = reporting.DefaultSort
	}
	if req.Toggle != "" {
		spec = reporting.NextSort(spec, req.Toggle)
	}
	if err := reporting.ValidateSort(spec); err != nil {
		return nil, err
	}

	// 3. Fetch with the date bounds pushed down
	records, err := s.source.List(ctx, req.Kind, ports.RecordQuery{
		CreatedFrom: criteria.DateRangeStart,
		CreatedTo:   criteria.DateRangeEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", req.Kind, err)
	}

	// 4. Evaluate the remaining predicates and order the rows
	filtered, skipped := s.evaluator.Filter(records, criteria)
	if skipped > 0 {
		s.logger.Debug("skipped malformed records",
			"kind", req.Kind,
			"skipped", skipped,
		)
	}

	sorted, err := reporting.Sort(filtered, spec)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Kind:        req.Kind,
		Records:     sorted,
		Stats:       reporting.CalculateStats(sorted),
		Sort:        spec,
		Columns:     reporting.TableColumns(req.Kind),
		Criteria:    criteria,
		Skipped:     skipped,
		GeneratedAt: now,
	}

	// 5. Announce sort changes to the caller's live connections
	if req.Toggle != "" {
		announcement := reporting.SortAnnouncement(req.Kind, spec)
		report.Announcement = &announcement
		s.broadcaster.SendToUser(actor.UserID, domain.Event{
			Type:    domain.EventAnnouncement,
			Payload: announcement,
		})
	}

	return report, nil
}
