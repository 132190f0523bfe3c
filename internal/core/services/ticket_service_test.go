package services_test

import (
	"context"
	"io"
	"log/slog"
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

var fixedNow = time.Date(2024, 7, 25, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ticketDeps struct {
	repo        *mocks.MockTicketRepository
	source      *mocks.MockRecordSource
	authz       *mocks.MockAuthorizationService
	notifier    *mocks.MockNotifier
	broadcaster *mocks.MockEventBroadcaster
	charts      *mocks.MockChartInvalidator
}

func newTicketService() (*services.TicketService, ticketDeps) {
	d := ticketDeps{
		repo:        mocks.NewMockTicketRepository(),
		source:      mocks.NewMockRecordSource(),
		authz:       mocks.NewMockAuthorizationService(),
		notifier:    mocks.NewMockNotifier(),
		broadcaster: mocks.NewMockEventBroadcaster(),
		charts:      mocks.NewMockChartInvalidator(),
	}
	d.charts.On("InvalidateChart", mock.Anything, mock.Anything).Return().Maybe()
	svc := services.NewTicketService(d.repo, d.source, d.authz, d.notifier, d.broadcaster, d.charts,
		services.FixedClock(fixedNow), testLogger())
	return svc, d
}

func TestTicketService_CreateTicket(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "user-1", Role: domain.RoleUser}

	t.Run("success", func(t *testing.T) {
		svc, d := newTicketService()

		d.authz.On("Can", ctx, actor, domain.PermTicketsWrite).Return(true, nil)
		d.repo.On("Create", ctx, mock.MatchedBy(func(tk *domain.Ticket) bool {
			return tk.AuthorID == "user-1" && tk.Status == domain.StatusOpen && tk.CreatedAt.Equal(fixedNow)
		})).Return(&domain.Ticket{
			ID:       "t-1",
			Title:    "Impressora parada",
			AuthorID: "user-1",
			Priority: domain.PriorityMedium,
			Status:   domain.StatusOpen,
		}, nil)
		d.broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventRecordsChanged && e.Topic == "reports:tickets"
		})).Return(nil)

		ticket, err := svc.CreateTicket(ctx, actor, domain.TicketParams{
			Title:       "Impressora parada",
			Description: "Não liga",
		})

		require.NoError(t, err)
		assert.Equal(t, "t-1", ticket.ID)
		assert.Equal(t, domain.StatusOpen, ticket.Status)

		d.authz.AssertExpectations(t)
		d.repo.AssertExpectations(t)
		d.broadcaster.AssertExpectations(t)
	})

	t.Run("forbidden when no permission", func(t *testing.T) {
		svc, d := newTicketService()
		d.authz.On("Can", ctx, actor, domain.PermTicketsWrite).Return(false, nil)

		ticket, err := svc.CreateTicket(ctx, actor, domain.TicketParams{Title: "x"})

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation error", func(t *testing.T) {
		svc, d := newTicketService()
		d.authz.On("Can", ctx, actor, domain.PermTicketsWrite).Return(true, nil)

		ticket, err := svc.CreateTicket(ctx, actor, domain.TicketParams{Title: ""})

		assert.Nil(t, ticket)
		var verrs *apperrors.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
		d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTicketService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	tech := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}

	existing := func() *domain.Ticket {
		return &domain.Ticket{
			ID:        "t-1",
			Title:     "Sem rede",
			AuthorID:  "user-1",
			Status:    domain.StatusOpen,
			Priority:  domain.PriorityHigh,
			CreatedAt: fixedNow.Add(-48 * time.Hour),
		}
	}

	t.Run("resolve notifies author", func(t *testing.T) {
		svc, d := newTicketService()

		d.authz.On("Can", ctx, tech, domain.PermTicketsWrite).Return(true, nil)
		d.authz.On("Can", ctx, tech, domain.PermTicketsResolve).Return(true, nil)
		current := existing()
		d.repo.On("GetByID", ctx, "t-1").Return(current, nil)
		d.repo.On("Update", ctx, mock.MatchedBy(func(tk *domain.Ticket) bool {
			return tk.Status == domain.StatusResolved && tk.ResolvedAt != nil
		})).Return(current, nil)
		d.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(p ports.NotificationParams) bool {
			return p.Recipient == "user-1"
		})).Return()
		d.broadcaster.On("Broadcast", mock.Anything).Return(nil)

		updated, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: "t-1",
			Status:   domain.StatusResolved,
			Actor:    tech,
		})
		svc.Shutdown()

		require.NoError(t, err)
		assert.Equal(t, domain.StatusResolved, updated.Status)
		d.notifier.AssertExpectations(t)
		d.repo.AssertExpectations(t)
	})

	t.Run("resolve requires resolve permission", func(t *testing.T) {
		svc, d := newTicketService()
		user := domain.Identity{UserID: "user-1", Role: domain.RoleUser}

		d.authz.On("Can", ctx, user, domain.PermTicketsWrite).Return(true, nil)
		d.authz.On("Can", ctx, user, domain.PermTicketsResolve).Return(false, nil)

		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: "t-1",
			Status:   domain.StatusClosed,
			Actor:    user,
		})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		d.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("author changing own ticket is not notified", func(t *testing.T) {
		svc, d := newTicketService()
		author := domain.Identity{UserID: "user-1", Role: domain.RoleUser}

		d.authz.On("Can", ctx, author, domain.PermTicketsWrite).Return(true, nil)
		current := existing()
		d.repo.On("GetByID", ctx, "t-1").Return(current, nil)
		d.repo.On("Update", ctx, current).Return(current, nil)
		d.broadcaster.On("Broadcast", mock.Anything).Return(nil)

		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: "t-1",
			Status:   domain.StatusPending,
			Actor:    author,
		})
		svc.Shutdown()

		require.NoError(t, err)
		d.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("invalid transition", func(t *testing.T) {
		svc, d := newTicketService()
		closed := existing()
		closed.Status = domain.StatusClosed

		d.authz.On("Can", ctx, tech, domain.PermTicketsWrite).Return(true, nil)
		d.repo.On("GetByID", ctx, "t-1").Return(closed, nil)

		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: "t-1",
			Status:   domain.StatusPending,
			Actor:    tech,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
		d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc, d := newTicketService()

		d.authz.On("Can", ctx, tech, domain.PermTicketsWrite).Return(true, nil)
		d.repo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrTicketNotFound)

		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: "missing",
			Status:   domain.StatusInProgress,
			Actor:    tech,
		})

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketService_ListRecentTickets(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "user-1", Role: domain.RoleUser}
	svc, d := newTicketService()

	records := []domain.Record{
		domain.TicketRecord(&domain.Ticket{ID: "t-2", Title: "b", Status: domain.StatusOpen, CreatedAt: fixedNow}),
		domain.TicketRecord(&domain.Ticket{ID: "t-1", Title: "a", Status: domain.StatusOpen, CreatedAt: fixedNow.Add(-time.Hour)}),
	}

	d.authz.On("Can", ctx, actor, domain.PermTicketsRead).Return(true, nil)
	d.source.On("List", ctx, domain.KindTicket, ports.RecordQuery{Limit: 2}).Return(records, nil)

	tickets, err := svc.ListRecentTickets(ctx, actor, 2)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "t-2", tickets[0].ID)
}

func TestTicketService_InvalidatesChartOnWrite(t *testing.T) {
	ctx := context.Background()
	tech := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}
	createdAt := fixedNow.Add(-48 * time.Hour)

	d := ticketDeps{
		repo:        mocks.NewMockTicketRepository(),
		source:      mocks.NewMockRecordSource(),
		authz:       mocks.NewMockAuthorizationService(),
		notifier:    mocks.NewMockNotifier(),
		broadcaster: mocks.NewMockEventBroadcaster(),
		charts:      mocks.NewMockChartInvalidator(),
	}
	svc := services.NewTicketService(d.repo, d.source, d.authz, d.notifier, d.broadcaster, d.charts,
		services.FixedClock(fixedNow), testLogger())

	current := &domain.Ticket{ID: "t-1", Title: "Sem rede", AuthorID: "tech-1", Status: domain.StatusOpen, CreatedAt: createdAt}
	d.authz.On("Can", ctx, tech, mock.Anything).Return(true, nil)
	d.repo.On("GetByID", ctx, "t-1").Return(current, nil)
	d.repo.On("Update", ctx, current).Return(current, nil)
	d.broadcaster.On("Broadcast", mock.Anything).Return(nil)
	d.charts.On("InvalidateChart", ctx, createdAt).Return().Once()

	_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "t-1", Status: domain.StatusResolved, Actor: tech})
	svc.Shutdown()

	require.NoError(t, err)
	d.charts.AssertExpectations(t)
}

func TestTicketService_DeleteTicket(t *testing.T) {
	ctx := context.Background()
	tech := domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}

	t.Run("success", func(t *testing.T) {
		svc, d := newTicketService()
		createdAt := fixedNow.Add(-24 * time.Hour)

		d.authz.On("Can", ctx, tech, domain.PermTicketsDelete).Return(true, nil)
		d.repo.On("GetByID", ctx, "t-1").Return(&domain.Ticket{ID: "t-1", Title: "x", CreatedAt: createdAt}, nil)
		d.repo.On("Delete", ctx, "t-1").Return(nil)
		d.broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
			change, ok := e.Payload.(services.RecordChange)
			return e.Type == domain.EventRecordsChanged && ok && change.ID == "t-1" && change.Action == "deleted"
		})).Return(nil)

		err := svc.DeleteTicket(ctx, tech, "t-1")

		require.NoError(t, err)
		d.repo.AssertExpectations(t)
		d.broadcaster.AssertExpectations(t)
		d.charts.AssertCalled(t, "InvalidateChart", ctx, createdAt)
	})

	t.Run("forbidden for users", func(t *testing.T) {
		svc, d := newTicketService()
		user := domain.Identity{UserID: "user-1", Role: domain.RoleUser}
		d.authz.On("Can", ctx, user, domain.PermTicketsDelete).Return(false, nil)

		err := svc.DeleteTicket(ctx, user, "t-1")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		d.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc, d := newTicketService()
		d.authz.On("Can", ctx, tech, domain.PermTicketsDelete).Return(true, nil)
		d.repo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrTicketNotFound)

		err := svc.DeleteTicket(ctx, tech, "missing")

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
		d.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		d.broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything)
	})
}
