package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// TicketService implements business logic for ticket management
type TicketService struct {
	ticketRepo  ports.TicketRepository
	source      ports.RecordSource
	authzSvc    ports.AuthorizationService
	notifier    ports.Notifier
	broadcaster ports.EventBroadcaster
	charts      ports.ChartInvalidator
	clock       Clock
	logger      *slog.Logger
	wg          sync.WaitGroup
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service. charts may be nil when no
// chart cache is in use.
func NewTicketService(
	ticketRepo ports.TicketRepository,
	source ports.RecordSource,
	authzSvc ports.AuthorizationService,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
	charts ports.ChartInvalidator,
	clock Clock,
	logger *slog.Logger,
) *TicketService {
	return &TicketService{
		ticketRepo:  ticketRepo,
		source:      source,
		authzSvc:    authzSvc,
		notifier:    notifier,
		broadcaster: broadcaster,
		charts:      charts,
		clock:       clock,
		logger:      logger.With("service", "ticket"),
	}
}

// CreateTicket handles the use case for opening a new ticket
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Identity, params domain.TicketParams) (*domain.Ticket, error) {
	// 1. Authorization Check
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermTicketsWrite); err != nil {
		return nil, err
	}

	// 2. Create domain entity with validation
	params.AuthorID = actor.UserID
	ticket, err := domain.NewTicket(params, s.clock())
	if err != nil {
		return nil, err
	}

	// 3. Persist the ticket
	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.invalidateChart(ctx, created.CreatedAt)
	publishRecordChange(s.broadcaster, s.logger, domain.KindTicket, created.ID, "created")
	return created, nil
}

func (s *TicketService) GetTicket(ctx context.Context, actor domain.Identity, id string) (*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermTicketsRead); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetByID(ctx, id)
}

// UpdateStatus changes a ticket's status. Resolving or closing needs the
// tickets:resolve permission.
func (s *TicketService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Ticket, error) {
	// 1. Authorization Check
	if err := requirePermission(ctx, s.authzSvc, params.Actor, domain.PermTicketsWrite); err != nil {
		return nil, err
	}
	if params.Status == domain.StatusResolved || params.Status == domain.StatusClosed {
		if err := requirePermission(ctx, s.authzSvc, params.Actor, domain.PermTicketsResolve); err != nil {
			return nil, err
		}
	}

	// 2. Fetch and apply the transition (domain validates it)
	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	previous := ticket.Status
	if err := ticket.UpdateStatus(params.Status, s.clock()); err != nil {
		return nil, err
	}

	// 3. Persist changes
	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket status updated",
		"ticket_id", updated.ID,
		"from", previous,
		"to", updated.Status,
		"actor_id", params.Actor.UserID,
	)

	// 4. Notify the author (async, in background context)
	if updated.AuthorID != "" && updated.AuthorID != params.Actor.UserID {
		s.notifyStatusUpdate(updated)
	}

	s.invalidateChart(ctx, updated.CreatedAt)
	publishRecordChange(s.broadcaster, s.logger, domain.KindTicket, updated.ID, "status_updated")
	return updated, nil
}

// DeleteTicket removes a ticket for good.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Identity, id string) error {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermTicketsDelete); err != nil {
		return err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ticketRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("ticket deleted", "ticket_id", id, "actor_id", actor.UserID)
	s.invalidateChart(ctx, ticket.CreatedAt)
	publishRecordChange(s.broadcaster, s.logger, domain.KindTicket, id, "deleted")
	return nil
}

// ListRecentTickets returns the newest tickets first.
func (s *TicketService) ListRecentTickets(ctx context.Context, actor domain.Identity, limit int) ([]*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermTicketsRead); err != nil {
		return nil, err
	}

	records, err := s.source.List(ctx, domain.KindTicket, ports.RecordQuery{Limit: limit})
	if err != nil {
		return nil, err
	}
	return ticketsOf(records), nil
}

func (s *TicketService) invalidateChart(ctx context.Context, createdAt time.Time) {
	if s.charts != nil {
		s.charts.InvalidateChart(ctx, createdAt)
	}
}

// notifyStatusUpdate sends email notification for status changes
func (s *TicketService) notifyStatusUpdate(ticket *domain.Ticket) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		ctx := context.Background()

		s.notifier.Notify(ctx, ports.NotificationParams{
			Recipient: ticket.AuthorID,
			Subject:   fmt.Sprintf("Seu chamado foi atualizado: %s", ticket.ID),
			Message:   fmt.Sprintf("O status do chamado '%s' foi alterado para %s.", ticket.Title, ticket.Status),
		})
	}()
}

// Shutdown waits for in-flight notifications.
func (s *TicketService) Shutdown() {
	s.wg.Wait()
}
