package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// recordsChangedChannel is notified with the table name by the
// records_changed triggers.
const recordsChangedChannel = "records_changed"

// RecordSource reads assets and tickets for reports and the dashboard.
type RecordSource struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ ports.RecordSource = (*RecordSource)(nil)

func NewRecordSource(pool *pgxpool.Pool, logger *slog.Logger) *RecordSource {
	return &RecordSource{pool: pool, logger: logger}
}

func tableFor(kind domain.RecordKind) (table, columns string, err error) {
	switch kind {
	case domain.KindAsset:
		return "assets", assetColumns, nil
	case domain.KindTicket:
		return "tickets", ticketColumns, nil
	}
	return "", "", fmt.Errorf("%w: %q", apperrors.ErrUnknownCollection, kind)
}

// whereClause renders the query filters as positional parameters.
func whereClause(q ports.RecordQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.CreatedFrom != nil {
		args = append(args, *q.CreatedFrom)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if q.CreatedTo != nil {
		args = append(args, *q.CreatedTo)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(q.StatusIn) > 0 {
		args = append(args, q.StatusIn)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *RecordSource) List(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) ([]domain.Record, error) {
	table, columns, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	where, args := whereClause(q)
	sql := "SELECT " + columns + " FROM " + table + where + " ORDER BY created_at DESC, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := GetDBTX(ctx, s.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(kind domain.RecordKind, row pgx.Row) (domain.Record, error) {
	if kind == domain.KindAsset {
		a, err := scanAsset(row)
		if err != nil {
			return domain.Record{}, err
		}
		return domain.AssetRecord(a), nil
	}

	t, err := scanTicket(row)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.TicketRecord(t), nil
}

// Count ignores q.Limit.
func (s *RecordSource) Count(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) (int64, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	where, args := whereClause(q)
	var n int64
	if err := GetDBTX(ctx, s.pool).QueryRow(ctx, "SELECT COUNT(*) FROM "+table+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Subscribe holds a dedicated connection listening on records_changed and
// re-runs the query whenever the table of kind changes.
func (s *RecordSource) Subscribe(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) (<-chan []domain.Record, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listener connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+recordsChangedChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", recordsChangedChannel, err)
	}

	initial, err := s.List(ctx, kind, q)
	if err != nil {
		releaseListener(conn)
		return nil, err
	}

	out := make(chan []domain.Record, 1)
	out <- initial

	go s.watch(ctx, conn, kind, table, q, out)
	return out, nil
}

func (s *RecordSource) watch(ctx context.Context, conn *pgxpool.Conn, kind domain.RecordKind, table string, q ports.RecordQuery, out chan<- []domain.Record) {
	defer close(out)
	defer releaseListener(conn)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.WarnContext(ctx, "record subscription ended", "table", table, "error", err)
			}
			return
		}
		if n.Payload != table {
			continue
		}

		records, err := s.List(ctx, kind, q)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.WarnContext(ctx, "failed to refresh subscription snapshot", "table", table, "error", err)
			}
			return
		}

		select {
		case out <- records:
		case <-ctx.Done():
			return
		}
	}
}

// releaseListener clears the session's LISTEN state before the connection
// goes back to the pool. A connection broken by cancellation is discarded
// by the pool on release.
func releaseListener(conn *pgxpool.Conn) {
	if !conn.Conn().IsClosed() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = conn.Exec(ctx, "UNLISTEN *")
		cancel()
	}
	conn.Release()
}
