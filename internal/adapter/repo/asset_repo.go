package repo

import (
	"context"
	"fmt"

	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/sqlinline"
)

// AssetRepositoryPG implements domain.AssetStore.
type AssetRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAssetRepository creates an asset store backed by PostgreSQL.
func NewAssetRepository(sql infra.SQLExecutor) *AssetRepositoryPG {
	return &AssetRepositoryPG{sql: sql}
}

// Create inserts an asset row and fills in the generated id and timestamp.
func (r *AssetRepositoryPG) Create(ctx context.Context, asset *domain.Asset) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertAsset,
		asset.UserID,
		deref(asset.JobID),
		string(asset.Kind),
		string(asset.Side),
		asset.StorageKey,
		asset.Filename,
		asset.MIME,
		asset.Bytes,
		nullableJSON(asset.Properties),
	)
	if err := row.Scan(&asset.ID, &asset.CreatedAt); err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetOwned fetches an asset and enforces ownership.
func (r *AssetRepositoryPG) GetOwned(ctx context.Context, assetID, userID string) (*domain.Asset, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAssetByID, assetID)
	var asset domain.Asset
	if err := row.Scan(
		&asset.ID,
		&asset.UserID,
		&asset.JobID,
		&asset.Kind,
		&asset.Side,
		&asset.StorageKey,
		&asset.Filename,
		&asset.MIME,
		&asset.Bytes,
		&asset.Properties,
		&asset.CreatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("select asset: %w", err)
	}
	if asset.UserID != userID {
		return nil, fmt.Errorf("asset %s: %w", assetID, domain.ErrForbidden)
	}
	return &asset, nil
}

func nullableJSON(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.AssetStore = (*AssetRepositoryPG)(nil)
