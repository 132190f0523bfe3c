package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/reporting"
)

// DigestService sends each responsible a summary of their late tickets.
type DigestService struct {
	source   ports.RecordSource
	notifier ports.Notifier
	location *time.Location
	clock    Clock
	logger   *slog.Logger
}

var _ ports.DigestService = (*DigestService)(nil)

func NewDigestService(
	source ports.RecordSource,
	notifier ports.Notifier,
	location *time.Location,
	clock Clock,
	logger *slog.Logger,
) ports.DigestService {
	return &DigestService{
		source:   source,
		notifier: notifier,
		location: location,
		clock:    clock,
		logger:   logger.With("service", "digest"),
	}
}

type lateTicket struct {
	ticket   *domain.Ticket
	lateness domain.Lateness
}

// SendOverdueDigest classifies active tickets against today and notifies
// every responsible with at least one late ticket. It returns the number
// of notifications sent.
func (s *DigestService) SendOverdueDigest(ctx context.Context) (int, error) {
	statuses := make([]string, 0, len(domain.ActiveTicketStatuses))
	for _, st := range domain.ActiveTicketStatuses {
		statuses = append(statuses, string(st))
	}

	records, err := s.source.List(ctx, domain.KindTicket, ports.RecordQuery{StatusIn: statuses})
	if err != nil {
		return 0, fmt.Errorf("failed to load active tickets: %w", err)
	}

	now := s.clock().In(s.location)
	byResponsible := make(map[string][]lateTicket)
	unassigned := 0

	for _, r := range records {
		if r.Validate() != nil {
			continue
		}
		lateness := reporting.Classify(r, now)
		if lateness == domain.NotLate {
			continue
		}
		t, _ := r.Ticket()
		responsible := strings.TrimSpace(t.Responsible)
		if responsible == "" {
			unassigned++
			continue
		}
		byResponsible[responsible] = append(byResponsible[responsible], lateTicket{ticket: t, lateness: lateness})
	}

	if unassigned > 0 {
		s.logger.Warn("late tickets without responsible", "count", unassigned)
	}

	recipients := make([]string, 0, len(byResponsible))
	for r := range byResponsible {
		recipients = append(recipients, r)
	}
	slices.Sort(recipients)

	sent := 0
	for _, recipient := range recipients {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		s.notifier.Notify(ctx, buildDigest(recipient, byResponsible[recipient]))
		sent++
	}

	s.logger.Info("overdue digest sent", "recipients", sent)
	return sent, nil
}

func buildDigest(recipient string, tickets []lateTicket) ports.NotificationParams {
	var b strings.Builder
	for _, lt := range tickets {
		due := ""
		if lt.ticket.DueAt != nil {
			due = lt.ticket.DueAt.Format(domain.DateKeyLayout)
		}
		fmt.Fprintf(&b, "- [%s] %s (prazo %s, %s)\n", lt.ticket.ID, lt.ticket.Title, due, lt.lateness)
	}

	return ports.NotificationParams{
		Recipient: recipient,
		Subject:   fmt.Sprintf("%d chamado(s) em atraso", len(tickets)),
		Message:   b.String(),
	}
}
