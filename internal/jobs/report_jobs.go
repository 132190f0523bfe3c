package jobs

import (
	"context"
	"fmt"

	"github.com/lorrc/asset-desk-backend/internal/config"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

const (
	JobWarmDashboardCache = "warm-dashboard-cache"
	JobOverdueDigest      = "overdue-digest"
)

// RegisterReportJobs schedules the dashboard cache warm-up and the daily
// overdue digest.
func RegisterReportJobs(s *Scheduler, cfg config.ReportsConfig, dashboard ports.DashboardService, digest ports.DigestService) error {
	err := s.Register(JobWarmDashboardCache, cfg.WarmupSchedule, func(ctx context.Context) error {
		buckets, err := dashboard.RefreshChart(ctx)
		if err != nil {
			return fmt.Errorf("refresh chart: %w", err)
		}
		s.logger.Debug("dashboard chart warmed", "days", len(buckets))
		return nil
	})
	if err != nil {
		return err
	}

	return s.Register(JobOverdueDigest, cfg.DigestSchedule, func(ctx context.Context) error {
		sent, err := digest.SendOverdueDigest(ctx)
		if err != nil {
			return fmt.Errorf("send overdue digest: %w", err)
		}
		s.logger.Info("overdue digest finished", "notifications", sent)
		return nil
	})
}
