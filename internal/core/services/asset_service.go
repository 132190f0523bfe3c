package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// AssetService implements inventory management.
type AssetService struct {
	assetRepo   ports.AssetRepository
	source      ports.RecordSource
	authzSvc    ports.AuthorizationService
	broadcaster ports.EventBroadcaster
	clock       Clock
	logger      *slog.Logger
}

var _ ports.AssetService = (*AssetService)(nil)

func NewAssetService(
	assetRepo ports.AssetRepository,
	source ports.RecordSource,
	authzSvc ports.AuthorizationService,
	broadcaster ports.EventBroadcaster,
	clock Clock,
	logger *slog.Logger,
) ports.AssetService {
	return &AssetService{
		assetRepo:   assetRepo,
		source:      source,
		authzSvc:    authzSvc,
		broadcaster: broadcaster,
		clock:       clock,
		logger:      logger.With("service", "asset"),
	}
}

func (s *AssetService) CreateAsset(ctx context.Context, actor domain.Identity, params domain.AssetParams) (*domain.Asset, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermAssetsWrite); err != nil {
		return nil, err
	}

	asset, err := domain.NewAsset(params, s.clock())
	if err != nil {
		return nil, err
	}

	created, err := s.assetRepo.Create(ctx, asset)
	if err != nil {
		return nil, err
	}

	s.publish(created.ID, "created")
	return created, nil
}

func (s *AssetService) GetAsset(ctx context.Context, actor domain.Identity, id string) (*domain.Asset, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermAssetsRead); err != nil {
		return nil, err
	}
	return s.assetRepo.GetByID(ctx, id)
}

func (s *AssetService) UpdateAsset(ctx context.Context, actor domain.Identity, id string, params domain.AssetParams) (*domain.Asset, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermAssetsWrite); err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := asset.Update(params, s.clock()); err != nil {
		return nil, err
	}

	updated, err := s.assetRepo.Update(ctx, asset)
	if err != nil {
		return nil, err
	}

	s.publish(updated.ID, "updated")
	return updated, nil
}

func (s *AssetService) DeleteAsset(ctx context.Context, actor domain.Identity, id string) error {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermAssetsWrite); err != nil {
		return err
	}

	if err := s.assetRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("asset deleted", "asset_id", id, "actor_id", actor.UserID)
	s.publish(id, "deleted")
	return nil
}

// ListRecentAssets returns the newest assets first.
func (s *AssetService) ListRecentAssets(ctx context.Context, actor domain.Identity, limit int) ([]*domain.Asset, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermAssetsRead); err != nil {
		return nil, err
	}

	records, err := s.source.List(ctx, domain.KindAsset, ports.RecordQuery{Limit: limit})
	if err != nil {
		return nil, err
	}
	return assetsOf(records), nil
}

func (s *AssetService) publish(id, action string) {
	publishRecordChange(s.broadcaster, s.logger, domain.KindAsset, id, action)
}

// RecordChange is the payload of a RECORDS_CHANGED event.
type RecordChange struct {
	Kind   domain.RecordKind `json:"kind"`
	ID     string            `json:"id"`
	Action string            `json:"action"`
}

func publishRecordChange(b ports.EventBroadcaster, logger *slog.Logger, kind domain.RecordKind, id, action string) {
	event := domain.Event{
		Type:    domain.EventRecordsChanged,
		Topic:   domain.ReportTopic(kind),
		Payload: RecordChange{Kind: kind, ID: id, Action: action},
	}
	if err := b.Broadcast(event); err != nil {
		logger.Warn("failed to broadcast record change", "kind", kind, "id", id, "error", err)
	}
}
