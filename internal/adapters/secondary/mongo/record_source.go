package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordSource reads records from the ativos and chamados collections.
// Subscribe needs a replica set, since it is built on change streams.
type RecordSource struct {
	db     *mongo.Database
	logger *slog.Logger
}

var _ ports.RecordSource = (*RecordSource)(nil)

func NewRecordSource(db *mongo.Database, logger *slog.Logger) *RecordSource {
	return &RecordSource{db: db, logger: logger}
}

func (s *RecordSource) collection(kind domain.RecordKind) (*mongo.Collection, error) {
	switch kind {
	case domain.KindAsset:
		return s.db.Collection(assetsCollection), nil
	case domain.KindTicket:
		return s.db.Collection(ticketsCollection), nil
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownCollection, kind)
}

// queryFilter pushes the date bounds down as BSON dates. Documents whose
// createdAt uses another encoding only match unbounded queries.
func queryFilter(q ports.RecordQuery) bson.M {
	filter := bson.M{}

	created := bson.M{}
	if q.CreatedFrom != nil {
		created["$gte"] = *q.CreatedFrom
	}
	if q.CreatedTo != nil {
		created["$lte"] = *q.CreatedTo
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	if len(q.StatusIn) > 0 {
		filter["status"] = bson.M{"$in": q.StatusIn}
	}
	return filter
}

func (s *RecordSource) List(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) ([]domain.Record, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := coll.Find(ctx, queryFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var records []domain.Record
	for cursor.Next(ctx) {
		records = append(records, s.decode(ctx, kind, cursor))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", coll.Name(), err)
	}
	return records, nil
}

// decode never fails: a document that does not fit the schema becomes a
// record without a creation time, which callers count as skipped.
func (s *RecordSource) decode(ctx context.Context, kind domain.RecordKind, cursor *mongo.Cursor) domain.Record {
	var id docID
	if raw, err := cursor.Current.LookupErr("_id"); err == nil {
		_ = id.UnmarshalBSONValue(raw.Type, raw.Value)
	}

	if kind == domain.KindAsset {
		var doc assetDoc
		if err := cursor.Decode(&doc); err != nil {
			s.logger.DebugContext(ctx, "undecodable asset document", "id", id, "error", err)
			return domain.AssetRecord(&domain.Asset{ID: string(id)})
		}
		return domain.AssetRecord(doc.toDomain())
	}

	var doc ticketDoc
	if err := cursor.Decode(&doc); err != nil {
		s.logger.DebugContext(ctx, "undecodable ticket document", "id", id, "error", err)
		return domain.TicketRecord(&domain.Ticket{ID: string(id)})
	}
	return domain.TicketRecord(doc.toDomain())
}

// Count ignores q.Limit.
func (s *RecordSource) Count(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) (int64, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, queryFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", coll.Name(), err)
	}
	return n, nil
}

// Subscribe opens a change stream on the collection before taking the
// first snapshot, so no write between the two is missed.
func (s *RecordSource) Subscribe(ctx context.Context, kind domain.RecordKind, q ports.RecordQuery) (<-chan []domain.Record, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", coll.Name(), err)
	}

	initial, err := s.List(ctx, kind, q)
	if err != nil {
		_ = stream.Close(context.Background())
		return nil, err
	}

	out := make(chan []domain.Record, 1)
	out <- initial

	go s.watch(ctx, stream, kind, q, out)
	return out, nil
}

func (s *RecordSource) watch(ctx context.Context, stream *mongo.ChangeStream, kind domain.RecordKind, q ports.RecordQuery, out chan<- []domain.Record) {
	defer close(out)
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		// Collapse a burst of changes into one snapshot.
		for stream.RemainingBatchLength() > 0 && stream.TryNext(ctx) {
		}

		records, err := s.List(ctx, kind, q)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.WarnContext(ctx, "failed to refresh subscription snapshot", "kind", kind, "error", err)
			}
			return
		}

		select {
		case out <- records:
		case <-ctx.Done():
			return
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.logger.WarnContext(ctx, "record subscription ended", "kind", kind, "error", err)
	}
}
