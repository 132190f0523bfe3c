package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// TicketStatus represents the possible states of a ticket (chamado).
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Aberto"
	StatusInProgress TicketStatus = "Em andamento"
	StatusPending    TicketStatus = "Pendente"
	StatusResolved   TicketStatus = "Resolvido"
	StatusClosed     TicketStatus = "Fechado"

	// StatusCompleted is a legacy value still present in older documents.
	// It is never produced by UpdateStatus.
	StatusCompleted TicketStatus = "Concluído"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusPending, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}

// IsActive reports whether the ticket still needs attention.
func (s TicketStatus) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusPending
}

// ActiveTicketStatuses lists the statuses counted as active on the dashboard.
var ActiveTicketStatuses = []TicketStatus{StatusOpen, StatusInProgress, StatusPending}

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Baixa"
	PriorityMedium TicketPriority = "Média"
	PriorityHigh   TicketPriority = "Alta"
	PriorityUrgent TicketPriority = "Urgente"
)

func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// validTransitions lists where each status may move. Resolved and closed
// tickets can only be reopened (or a resolved one closed).
var validTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress, StatusPending, StatusResolved, StatusClosed},
	StatusInProgress: {StatusOpen, StatusPending, StatusResolved, StatusClosed},
	StatusPending:    {StatusOpen, StatusInProgress, StatusResolved, StatusClosed},
	StatusResolved:   {StatusOpen, StatusClosed},
	StatusClosed:     {StatusOpen},
}

// Ticket is a support request raised against an asset.
type Ticket struct {
	ID          string
	Title       string
	Description string
	AssetID     string
	AssetName   string
	AuthorID    string
	AuthorName  string
	Responsible string
	Department  string
	Category    string
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	DueAt       *time.Time
	ResolvedAt  *time.Time
}

// TicketParams holds parameters for creating a new ticket.
type TicketParams struct {
	Title       string
	Description string
	AssetID     string
	AssetName   string
	AuthorID    string
	AuthorName  string
	Responsible string
	Department  string
	Category    string
	Priority    TicketPriority
	DueAt       *time.Time
}

// NewTicket validates params and returns an open ticket created at now.
func NewTicket(params TicketParams, now time.Time) (*Ticket, error) {
	errs := apperrors.NewValidationErrors()

	title := strings.TrimSpace(params.Title)
	if title == "" {
		errs.Add("title", apperrors.ErrTitleRequired.Error())
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		errs.Add("title", apperrors.ErrTitleTooLong.Error())
	}

	if utf8.RuneCountInString(params.Description) > MaxDescriptionLength {
		errs.Add("description", apperrors.ErrDescriptionTooLong.Error())
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		errs.Add("priority", apperrors.ErrInvalidPriority.Error())
	}

	if strings.TrimSpace(params.AuthorID) == "" {
		errs.Add("authorId", apperrors.ErrAuthorRequired.Error())
	}

	if params.DueAt != nil && params.DueAt.Before(now) {
		errs.Add("dueAt", apperrors.ErrDueBeforeCreation.Error())
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &Ticket{
		Title:       title,
		Description: params.Description,
		AssetID:     params.AssetID,
		AssetName:   params.AssetName,
		AuthorID:    params.AuthorID,
		AuthorName:  params.AuthorName,
		Responsible: params.Responsible,
		Department:  params.Department,
		Category:    params.Category,
		Priority:    priority,
		Status:      StatusOpen,
		CreatedAt:   now,
		DueAt:       params.DueAt,
	}, nil
}

// UpdateStatus moves the ticket to newStatus. ResolvedAt is set when the
// ticket becomes Resolvido and cleared for every other status.
func (t *Ticket) UpdateStatus(newStatus TicketStatus, at time.Time) error {
	if !newStatus.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	for _, s := range validTransitions[t.Status] {
		if s == newStatus {
			t.Status = newStatus
			if newStatus == StatusResolved {
				resolved := at
				t.ResolvedAt = &resolved
			} else {
				t.ResolvedAt = nil
			}
			return nil
		}
	}

	return apperrors.ErrInvalidStatusTransition
}

// IsResolved reports whether the ticket counts as resolved on the dashboard.
func (t *Ticket) IsResolved() bool {
	return t.Status == StatusResolved
}
