package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssetRepository persists assets in the ativos collection.
type AssetRepository struct {
	coll *mongo.Collection
}

var _ ports.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(db *mongo.Database) *AssetRepository {
	return &AssetRepository{coll: db.Collection(assetsCollection)}
}

func (r *AssetRepository) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	doc := newAssetDoc(asset)
	if doc.ID == "" {
		doc.ID = docID(primitive.NewObjectID().Hex())
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert asset: %w", mapWriteError(err))
	}
	return doc.toDomain(), nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	var doc assetDoc
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the stored document, keeping its _id.
func (r *AssetRepository) Update(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	doc := newAssetDoc(asset)
	doc.ID = ""

	var updated assetDoc
	err := r.coll.FindOneAndReplace(ctx, idFilter(asset.ID), doc,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to update asset: %w", mapWriteError(err))
	}
	return updated.toDomain(), nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

// TicketRepository persists tickets in the chamados collection.
type TicketRepository struct {
	coll *mongo.Collection
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{coll: db.Collection(ticketsCollection)}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	doc := newTicketDoc(ticket)
	if doc.ID == "" {
		doc.ID = docID(primitive.NewObjectID().Hex())
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert ticket: %w", mapWriteError(err))
	}
	return doc.toDomain(), nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var doc ticketDoc
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the whole document so a cleared resolvedAt is removed.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	doc := newTicketDoc(ticket)
	doc.ID = ""

	var updated ticketDoc
	err := r.coll.FindOneAndReplace(ctx, idFilter(ticket.ID), doc,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update ticket: %w", mapWriteError(err))
	}
	return updated.toDomain(), nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}
	return err
}
