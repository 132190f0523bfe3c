package http

import (
	stdhttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/mocks"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

func newTicketRouter(svc *mocks.MockTicketService) stdhttp.Handler {
	h := NewTicketHandler(svc, NewErrorHandler(testLogger()), testLogger())
	return newRouter(techUser, "/tickets", h.RegisterRoutes)
}

func TestTicketHandler_Create(t *testing.T) {
	svc := mocks.NewMockTicketService()
	svc.On("CreateTicket", mock.Anything, techUser, mock.MatchedBy(func(p domain.TicketParams) bool {
		return p.Title == "Monitor piscando" && p.Priority == domain.PriorityHigh && p.AssetID == "a1"
	})).Return(&domain.Ticket{
		ID:        "t1",
		Title:     "Monitor piscando",
		AuthorID:  techUser.UserID,
		Priority:  domain.PriorityHigh,
		Status:    domain.StatusOpen,
		CreatedAt: fixedAt,
	}, nil)

	rec := do(t, newTicketRouter(svc), stdhttp.MethodPost, "/tickets", map[string]any{
		"title":    "Monitor piscando",
		"priority": "Alta",
		"assetId":  "a1",
	})

	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	body := decode[TicketDTO](t, rec)
	assert.Equal(t, "t1", body.ID)
	assert.Equal(t, "Aberto", body.Status)
}

func TestTicketHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantField  string
	}{
		{"missing title", map[string]any{"priority": "Alta"}, stdhttp.StatusUnprocessableEntity, "title"},
		{"bad priority", map[string]any{"title": "x", "priority": "HIGH"}, stdhttp.StatusUnprocessableEntity, "priority"},
		{"unknown field", `{"title":"x","assignee":"bob"}`, stdhttp.StatusBadRequest, ""},
		{"empty body", "", stdhttp.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockTicketService()

			rec := do(t, newTicketRouter(svc), stdhttp.MethodPost, "/tickets", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != "" {
				assert.Contains(t, decode[ValidationErrorResponse](t, rec).Fields, tt.wantField)
			}
			svc.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTicketHandler_UpdateStatus(t *testing.T) {
	svc := mocks.NewMockTicketService()
	svc.On("UpdateStatus", mock.Anything, ports.UpdateStatusParams{
		TicketID: "t1",
		Status:   domain.StatusResolved,
		Actor:    techUser,
	}).Return(&domain.Ticket{ID: "t1", Status: domain.StatusResolved, ResolvedAt: &fixedAt, CreatedAt: fixedAt}, nil)

	rec := do(t, newTicketRouter(svc), stdhttp.MethodPatch, "/tickets/t1/status", map[string]string{"status": "Resolvido"})

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	body := decode[TicketDTO](t, rec)
	assert.Equal(t, "Resolvido", body.Status)
	require.NotNil(t, body.ResolvedAt)
}

func TestTicketHandler_UpdateStatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"unknown status", "Done", nil, stdhttp.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid transition", "Pendente", apperrors.ErrInvalidStatusTransition, stdhttp.StatusBadRequest, "INVALID_STATUS_TRANSITION"},
		{"not found", "Aberto", apperrors.ErrTicketNotFound, stdhttp.StatusNotFound, "TICKET_NOT_FOUND"},
		{"forbidden", "Resolvido", apperrors.ErrForbidden, stdhttp.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockTicketService()
			if tt.serviceErr != nil {
				svc.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			rec := do(t, newTicketRouter(svc), stdhttp.MethodPatch, "/tickets/t1/status", map[string]string{"status": tt.status})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestTicketHandler_ListRecentClampsLimit(t *testing.T) {
	svc := mocks.NewMockTicketService()
	svc.On("ListRecentTickets", mock.Anything, techUser, maxRecentLimit).Return([]*domain.Ticket{}, nil)

	rec := do(t, newTicketRouter(svc), stdhttp.MethodGet, "/tickets?limit=5000", nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	body := decode[ListResponse[TicketDTO]](t, rec)
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Data)
	svc.AssertExpectations(t)
}

func TestTicketHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"deleted", nil, stdhttp.StatusNoContent, ""},
		{"not found", apperrors.ErrTicketNotFound, stdhttp.StatusNotFound, "TICKET_NOT_FOUND"},
		{"forbidden", apperrors.ErrForbidden, stdhttp.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockTicketService()
			svc.On("DeleteTicket", mock.Anything, techUser, "t1").Return(tt.serviceErr)

			rec := do(t, newTicketRouter(svc), stdhttp.MethodDelete, "/tickets/t1", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
			} else {
				assert.Empty(t, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}
