package assets

import (
	"context"
	"strings"
	"time"

	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/metadata"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

type AssetsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AssetsRepository {
	return &AssetsRepository{
		repository: r,
	}
}

func (r *AssetsRepository) GetAsset(ctx context.Context, organizationID, assetID string) (*models.Asset, error) {
	return fetchAsset(ctx, r.repository.GoquDBWrapper, goqu.Ex{"a.id": assetID, "a.organization_id": organizationID}, assetID, organizationID)
}

func (r *AssetsRepository) FindAssetByCode(ctx context.Context, organizationID, code string) (*models.Asset, error) {
	return fetchAsset(ctx, r.repository.GoquDBWrapper, goqu.Ex{"a.code": code, "a.organization_id": organizationID}, code, organizationID)
}

// ListAssets returns the assets matching predicate, usually built by
// query.BuildWhereClause against the "a" alias.
func (r *AssetsRepository) ListAssets(ctx context.Context, predicate exp.Expression) ([]models.Asset, error) {
	query := AssetQuery(r.repository.GoquDBWrapper).
		Where(predicate).
		Order(goqu.I("a.code_seq").Asc())

	var flatAssets []models.FlatAssetRecord
	if err := query.Executor().ScanStructsContext(ctx, &flatAssets); err != nil {
		return nil, custom_error.Storage("select assets", err)
	}

	assets := make([]models.Asset, 0, len(flatAssets))
	for _, flatAsset := range flatAssets {
		assets = append(assets, flatAsset.TransformToAsset())
	}

	return assets, nil
}

// PersistAsset inserts an AVAILABLE asset and assigns the next code of the
// organization, prefixed with its category code prefix.
func (r *AssetsRepository) PersistAsset(ctx context.Context, organizationID string, req models.CreateAssetRequest) (*models.Asset, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, custom_error.Invalid("title", req.Title, "must not be empty")
	}

	assetID := uuid.NewString()
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if req.LocationID != nil {
			if err := requireRow(ctx, tx, "locations", "location", *req.LocationID, organizationID); err != nil {
				return err
			}
		}

		prefix := ""
		if req.CategoryID != nil {
			var category models.Category
			found, err := tx.From("categories").
				Select("id", "organization_id", "name", "code_prefix").
				Where(goqu.Ex{"id": *req.CategoryID, "organization_id": organizationID}).
				Executor().
				ScanStructContext(ctx, &category)
			if err != nil {
				return custom_error.Storage("select category", err)
			}
			if !found {
				return custom_error.NotFound("category", *req.CategoryID, organizationID)
			}
			prefix = category.CodePrefix
		}

		seq, err := NextCodeSequence(ctx, tx, "assets", organizationID)
		if err != nil {
			return err
		}
		code := metadata.NewCode(prefix, seq)

		now := time.Now().UTC()
		_, err = tx.Insert("assets").
			Rows(goqu.Record{
				"id":              assetID,
				"organization_id": organizationID,
				"title":           title,
				"description":     req.Description,
				"status":          string(metadata.StatusAvailable),
				"location_id":     req.LocationID,
				"category_id":     req.CategoryID,
				"code":            code.String(),
				"code_seq":        seq,
				"created_at":      now,
				"updated_at":      now,
			}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("Asset code already used", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetAsset(ctx, organizationID, assetID)
}

// MoveAsset places an asset in another location; nil clears the location.
func (r *AssetsRepository) MoveAsset(ctx context.Context, organizationID, assetID string, locationID *string) (*models.Asset, error) {
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if locationID != nil {
			if err := requireRow(ctx, tx, "locations", "location", *locationID, organizationID); err != nil {
				return err
			}
		}

		result, err := tx.Update("assets").
			Set(goqu.Record{"location_id": locationID, "updated_at": time.Now().UTC()}).
			Where(goqu.Ex{"id": assetID, "organization_id": organizationID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("move asset", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return custom_error.Storage("move asset rows affected", err)
		}
		if rowsAffected == 0 {
			return custom_error.NotFound("asset", assetID, organizationID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetAsset(ctx, organizationID, assetID)
}

// RemoveAsset deletes an asset that is not in custody and returns it as it was.
func (r *AssetsRepository) RemoveAsset(ctx context.Context, organizationID, assetID string) (*models.Asset, error) {
	var removed *models.Asset

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		asset, err := fetchAsset(ctx, tx, goqu.Ex{"a.id": assetID, "a.organization_id": organizationID}, assetID, organizationID)
		if err != nil {
			return err
		}

		result, err := tx.Delete("assets").
			Where(
				goqu.Ex{"id": assetID, "organization_id": organizationID},
				goqu.C("status").Neq(string(metadata.StatusInCustody)),
			).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("delete asset", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return custom_error.Storage("delete asset rows affected", err)
		}
		if rowsAffected == 0 {
			return custom_error.Conflict("asset", assetID, organizationID, "asset is in custody")
		}

		removed = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// AssetQuery selects assets joined with their location, category and custody
// in the FlatAssetRecord shape.
func AssetQuery(q repository.Querier) *goqu.SelectDataset {
	return q.From(goqu.T("assets").As("a")).
		Select(
			goqu.I("a.id").As("asset_id"),
			goqu.I("a.organization_id").As("organization_id"),
			goqu.I("a.title").As("title"),
			goqu.I("a.description").As("description"),
			goqu.I("a.status").As("status"),
			goqu.I("a.code").As("code"),
			goqu.I("a.kit_id").As("kit_id"),
			goqu.I("a.created_at").As("created_at"),
			goqu.I("a.updated_at").As("updated_at"),
			goqu.I("l.id").As("location_id"),
			goqu.I("l.name").As("location_name"),
			goqu.I("c.id").As("category_id"),
			goqu.I("c.name").As("category_name"),
			goqu.I("c.code_prefix").As("category_prefix"),
			goqu.I("cu.id").As("custody_id"),
			goqu.I("tm.id").As("custodian_id"),
			goqu.I("tm.name").As("custodian_name"),
			goqu.I("cu.created_at").As("custody_created_at"),
		).
		LeftJoin(
			goqu.T("locations").As("l"),
			goqu.On(goqu.Ex{"a.location_id": goqu.I("l.id")}),
		).
		LeftJoin(
			goqu.T("categories").As("c"),
			goqu.On(goqu.Ex{"a.category_id": goqu.I("c.id")}),
		).
		LeftJoin(
			goqu.T("custodies").As("cu"),
			goqu.On(goqu.Ex{"cu.asset_id": goqu.I("a.id")}),
		).
		LeftJoin(
			goqu.T("team_members").As("tm"),
			goqu.On(goqu.Ex{"cu.team_member_id": goqu.I("tm.id")}),
		)
}

// FetchAsset loads one asset through q, which may be a transaction.
func FetchAsset(ctx context.Context, q repository.Querier, organizationID, assetID string) (*models.Asset, error) {
	return fetchAsset(ctx, q, goqu.Ex{"a.id": assetID, "a.organization_id": organizationID}, assetID, organizationID)
}

func fetchAsset(ctx context.Context, q repository.Querier, condition goqu.Ex, ref, organizationID string) (*models.Asset, error) {
	var flatAsset models.FlatAssetRecord
	found, err := AssetQuery(q).
		Where(condition).
		Executor().
		ScanStructContext(ctx, &flatAsset)
	if err != nil {
		return nil, custom_error.Storage("select asset", err)
	}
	if !found {
		return nil, custom_error.NotFound("asset", ref, organizationID)
	}

	asset := flatAsset.TransformToAsset()
	return &asset, nil
}

// NextCodeSequence returns the next free code sequence of table in the organization.
func NextCodeSequence(ctx context.Context, q repository.Querier, table, organizationID string) (int, error) {
	var seq int
	_, err := q.Select(goqu.COALESCE(goqu.MAX("code_seq"), 0)).
		From(table).
		Where(goqu.Ex{"organization_id": organizationID}).
		Executor().
		ScanValContext(ctx, &seq)
	if err != nil {
		return 0, custom_error.Storage("select code sequence", err)
	}

	return seq + 1, nil
}

func requireRow(ctx context.Context, q repository.Querier, table, resource, id, organizationID string) error {
	var count int
	_, err := q.From(table).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"id": id, "organization_id": organizationID}).
		Executor().
		ScanValContext(ctx, &count)
	if err != nil {
		return custom_error.Storage("select "+resource, err)
	}
	if count == 0 {
		return custom_error.NotFound(resource, id, organizationID)
	}

	return nil
}
