package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/asset-desk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

const (
	defaultRecentLimit = 3
	maxRecentLimit     = 50
)

var (
	ticketStatuses = []string{
		string(domain.StatusOpen), string(domain.StatusInProgress), string(domain.StatusPending),
		string(domain.StatusResolved), string(domain.StatusClosed),
	}
	ticketPriorities = []string{
		string(domain.PriorityLow), string(domain.PriorityMedium),
		string(domain.PriorityHigh), string(domain.PriorityUrgent),
	}
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService ports.TicketService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

func NewTicketHandler(
	ticketService ports.TicketService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "ticket"),
	}
}

func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListRecentTickets)
	r.Post("/", h.HandleCreateTicket)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Delete("/", h.HandleDeleteTicket)
		r.Patch("/status", h.HandleUpdateTicketStatus)
	})
}

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssetID     string     `json:"assetId"`
	AssetName   string     `json:"assetName"`
	AuthorName  string     `json:"authorName"`
	Responsible string     `json:"responsible"`
	Department  string     `json:"department"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"dueAt"`
}

func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	v.OneOf("priority", r.Priority, ticketPriorities)

	return v.Err()
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("status", r.Status).
		OneOf("status", r.Status, ticketStatuses)

	return v.Err()
}

// HandleListRecentTickets handles GET /tickets?limit=
func (h *TicketHandler) HandleListRecentTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := validation.ParseLimit(r, defaultRecentLimit, maxRecentLimit)

	tickets, err := h.ticketService.ListRecentTickets(r.Context(), actor, limit)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, toTicketDTOs(tickets))
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), actor, domain.TicketParams{
		Title:       req.Title,
		Description: req.Description,
		AssetID:     req.AssetID,
		AssetName:   req.AssetName,
		AuthorName:  req.AuthorName,
		Responsible: req.Responsible,
		Department:  req.Department,
		Category:    req.Category,
		Priority:    domain.TicketPriority(req.Priority),
		DueAt:       req.DueAt,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created", "ticket_id", ticket.ID)

	WriteCreated(w, toTicketDTO(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), actor, chi.URLParam(r, "ticketID"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleUpdateTicketStatus handles PATCH /tickets/{ticketID}/status
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	req.Status = strings.TrimSpace(req.Status)
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.ticketService.UpdateStatus(r.Context(), ports.UpdateStatusParams{
		TicketID: ticketID,
		Status:   domain.TicketStatus(req.Status),
		Actor:    actor,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "ticket status updated",
		"ticket_id", ticketID,
		"new_status", req.Status,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleDeleteTicket handles DELETE /tickets/{ticketID}
func (h *TicketHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	if HandleError(w, r, h.ticketService.DeleteTicket(r.Context(), actor, ticketID), h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "ticket deleted", "ticket_id", ticketID)

	WriteNoContent(w)
}
