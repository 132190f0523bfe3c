package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

const ticketColumns = `id, title, description, asset_id, asset_name, author_id, author_name,
	responsible, department, category, priority, status, created_at, due_at, resolved_at`

// TicketRepository persists tickets in the tickets table.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t                                     domain.Ticket
		descr, assetID, assetName, authorName pgtype.Text
		responsible, department, category     pgtype.Text
		priority, status                      string
		dueAt, resolvedAt                     pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID, &t.Title, &descr, &assetID, &assetName, &t.AuthorID, &authorName,
		&responsible, &department, &category, &priority, &status, &t.CreatedAt, &dueAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = fromText(descr)
	t.AssetID = fromText(assetID)
	t.AssetName = fromText(assetName)
	t.AuthorName = fromText(authorName)
	t.Responsible = fromText(responsible)
	t.Department = fromText(department)
	t.Category = fromText(category)
	t.Priority = domain.TicketPriority(priority)
	t.Status = domain.TicketStatus(status)
	t.DueAt = fromTimestamptz(dueAt)
	t.ResolvedAt = fromTimestamptz(resolvedAt)
	return &t, nil
}

// Create assigns a new id when the ticket has none.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	id := ticket.ID
	if id == "" {
		id = uuid.NewString()
	}

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+ticketColumns,
		id, ticket.Title, toText(ticket.Description), toText(ticket.AssetID), toText(ticket.AssetName),
		ticket.AuthorID, toText(ticket.AuthorName), toText(ticket.Responsible), toText(ticket.Department),
		toText(ticket.Category), string(ticket.Priority), string(ticket.Status), ticket.CreatedAt,
		toTimestamptz(ticket.DueAt), toTimestamptz(ticket.ResolvedAt),
	)

	created, err := scanTicket(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ticket: %w", mapWriteError(err))
	}
	return created, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)

	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// Update writes the mutable fields. Title, author and creation time are
// fixed once the ticket exists.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		UPDATE tickets SET
			description = $2, responsible = $3, department = $4, category = $5,
			priority = $6, status = $7, due_at = $8, resolved_at = $9
		WHERE id = $1
		RETURNING `+ticketColumns,
		ticket.ID, toText(ticket.Description), toText(ticket.Responsible), toText(ticket.Department),
		toText(ticket.Category), string(ticket.Priority), string(ticket.Status),
		toTimestamptz(ticket.DueAt), toTimestamptz(ticket.ResolvedAt),
	)

	updated, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update ticket: %w", mapWriteError(err))
	}
	return updated, nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}
