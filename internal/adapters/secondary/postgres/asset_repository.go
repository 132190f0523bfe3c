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

const assetColumns = `id, name, serial_number, patrimony, type, category, status, location,
	responsible, department, description, created_at, updated_at, last_maintenance`

// AssetRepository persists assets in the assets table.
type AssetRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

var _ ports.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool, tm: NewTransactionManager(pool)}
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var (
		a                                        domain.Asset
		serial, patrimony, typ, category, status pgtype.Text
		location, responsible, department, descr pgtype.Text
		updatedAt, lastMaintenance               pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID, &a.Name, &serial, &patrimony, &typ, &category, &status, &location,
		&responsible, &department, &descr, &a.CreatedAt, &updatedAt, &lastMaintenance,
	)
	if err != nil {
		return nil, err
	}

	a.SerialNumber = fromText(serial)
	a.Patrimony = fromText(patrimony)
	a.Type = fromText(typ)
	a.Category = fromText(category)
	a.Status = domain.AssetStatus(fromText(status))
	a.Location = fromText(location)
	a.Responsible = fromText(responsible)
	a.Department = fromText(department)
	a.Description = fromText(descr)
	a.UpdatedAt = fromTimestamptz(updatedAt)
	a.LastMaintenance = fromTimestamptz(lastMaintenance)
	return &a, nil
}

// Create assigns a new id when the asset has none.
func (r *AssetRepository) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	id := asset.ID
	if id == "" {
		id = uuid.NewString()
	}

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+assetColumns,
		id, asset.Name, toText(asset.SerialNumber), toText(asset.Patrimony), toText(asset.Type),
		toText(asset.Category), string(asset.Status), toText(asset.Location), toText(asset.Responsible),
		toText(asset.Department), toText(asset.Description), asset.CreatedAt,
		toTimestamptz(asset.UpdatedAt), toTimestamptz(asset.LastMaintenance),
	)

	created, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert asset: %w", mapWriteError(err))
	}
	return created, nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)

	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

func (r *AssetRepository) Update(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		UPDATE assets SET
			name = $2, serial_number = $3, patrimony = $4, type = $5, category = $6,
			status = $7, location = $8, responsible = $9, department = $10,
			description = $11, updated_at = $12, last_maintenance = $13
		WHERE id = $1
		RETURNING `+assetColumns,
		asset.ID, asset.Name, toText(asset.SerialNumber), toText(asset.Patrimony), toText(asset.Type),
		toText(asset.Category), string(asset.Status), toText(asset.Location), toText(asset.Responsible),
		toText(asset.Department), toText(asset.Description),
		toTimestamptz(asset.UpdatedAt), toTimestamptz(asset.LastMaintenance),
	)

	updated, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to update asset: %w", mapWriteError(err))
	}
	return updated, nil
}

// Delete removes the asset and detaches the tickets raised against it.
// Those tickets keep the asset name they were created with.
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	return r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE tickets SET asset_id = NULL WHERE asset_id = $1`, id); err != nil {
			return fmt.Errorf("failed to detach tickets: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrAssetNotFound
		}
		return nil
	})
}
