package kits

import (
	"context"
	"strings"
	"time"

	"shelf/internal/inventory/assets"
	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/metadata"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

type KitsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *KitsRepository {
	return &KitsRepository{repository: r}
}

func (r *KitsRepository) GetKit(ctx context.Context, organizationID, kitID string) (*models.Kit, error) {
	return FetchKit(ctx, r.repository.GoquDBWrapper, organizationID, kitID)
}

func (r *KitsRepository) FindKitByCode(ctx context.Context, organizationID, code string) (*models.Kit, error) {
	return fetchKit(ctx, r.repository.GoquDBWrapper, goqu.Ex{"k.code": code, "k.organization_id": organizationID}, code, organizationID)
}

// ListKits returns the kits matching predicate, built against the "k" alias.
func (r *KitsRepository) ListKits(ctx context.Context, predicate exp.Expression) ([]models.Kit, error) {
	var flatKits []models.FlatKitRecord
	err := KitQuery(r.repository.GoquDBWrapper).
		Where(predicate).
		Order(goqu.I("k.code_seq").Asc()).
		Executor().
		ScanStructsContext(ctx, &flatKits)
	if err != nil {
		return nil, custom_error.Storage("select kits", err)
	}

	kits := make([]models.Kit, 0, len(flatKits))
	for _, flatKit := range flatKits {
		kits = append(kits, flatKit.TransformToKit())
	}

	return kits, nil
}

func (r *KitsRepository) GetKitAssets(ctx context.Context, organizationID, kitID string) ([]models.Asset, error) {
	if _, err := r.GetKit(ctx, organizationID, kitID); err != nil {
		return nil, err
	}

	var flatAssets []models.FlatAssetRecord
	err := assets.AssetQuery(r.repository.GoquDBWrapper).
		Where(goqu.Ex{"a.kit_id": kitID, "a.organization_id": organizationID}).
		Order(goqu.I("a.code_seq").Asc()).
		Executor().
		ScanStructsContext(ctx, &flatAssets)
	if err != nil {
		return nil, custom_error.Storage("select kit assets", err)
	}

	result := make([]models.Asset, 0, len(flatAssets))
	for _, flatAsset := range flatAssets {
		result = append(result, flatAsset.TransformToAsset())
	}

	return result, nil
}

func (r *KitsRepository) PersistKit(ctx context.Context, organizationID string, req models.CreateKitRequest) (*models.Kit, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, custom_error.Invalid("name", req.Name, "must not be empty")
	}

	kitID := uuid.NewString()
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if req.LocationID != nil {
			var count int
			_, err := tx.From("locations").
				Select(goqu.COUNT("*")).
				Where(goqu.Ex{"id": *req.LocationID, "organization_id": organizationID}).
				Executor().
				ScanValContext(ctx, &count)
			if err != nil {
				return custom_error.Storage("select location", err)
			}
			if count == 0 {
				return custom_error.NotFound("location", *req.LocationID, organizationID)
			}
		}

		seq, err := assets.NextCodeSequence(ctx, tx, "kits", organizationID)
		if err != nil {
			return err
		}
		code := metadata.NewKitCode(seq)

		now := time.Now().UTC()
		_, err = tx.Insert("kits").
			Rows(goqu.Record{
				"id":              kitID,
				"organization_id": organizationID,
				"name":            name,
				"description":     req.Description,
				"status":          string(metadata.StatusAvailable),
				"location_id":     req.LocationID,
				"code":            code.String(),
				"code_seq":        seq,
				"created_at":      now,
				"updated_at":      now,
			}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("Kit code already used", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetKit(ctx, organizationID, kitID)
}

// AddAssets puts assets into a kit. Every asset must belong to the
// organization; otherwise nothing changes.
func (r *KitsRepository) AddAssets(ctx context.Context, organizationID, kitID string, assetIDs []string) (*models.Kit, error) {
	ids := uniqueIDs(assetIDs)

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if _, err := FetchKit(ctx, tx, organizationID, kitID); err != nil {
			return err
		}

		result, err := tx.Update("assets").
			Set(goqu.Record{"kit_id": kitID, "updated_at": time.Now().UTC()}).
			Where(goqu.Ex{"id": ids, "organization_id": organizationID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("add kit assets", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return custom_error.Storage("add kit assets rows affected", err)
		}
		if int(rowsAffected) != len(ids) {
			return custom_error.NotFound("asset", strings.Join(ids, ","), organizationID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetKit(ctx, organizationID, kitID)
}

// RemoveAssets takes assets out of a kit. Ids that are not in the kit are ignored.
func (r *KitsRepository) RemoveAssets(ctx context.Context, organizationID, kitID string, assetIDs []string) (*models.Kit, error) {
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if _, err := FetchKit(ctx, tx, organizationID, kitID); err != nil {
			return err
		}

		_, err := tx.Update("assets").
			Set(goqu.Record{"kit_id": nil, "updated_at": time.Now().UTC()}).
			Where(goqu.Ex{"id": uniqueIDs(assetIDs), "organization_id": organizationID, "kit_id": kitID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("remove kit assets", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetKit(ctx, organizationID, kitID)
}

// KitQuery selects kits joined with location, custody and member count in the
// FlatKitRecord shape.
func KitQuery(q repository.Querier) *goqu.SelectDataset {
	return q.From(goqu.T("kits").As("k")).
		Select(
			goqu.I("k.id").As("kit_id"),
			goqu.I("k.organization_id").As("organization_id"),
			goqu.I("k.name").As("name"),
			goqu.I("k.description").As("description"),
			goqu.I("k.status").As("status"),
			goqu.I("k.code").As("code"),
			goqu.L("(SELECT COUNT(*) FROM assets ka WHERE ka.kit_id = k.id)").As("asset_count"),
			goqu.I("k.created_at").As("created_at"),
			goqu.I("k.updated_at").As("updated_at"),
			goqu.I("l.id").As("location_id"),
			goqu.I("l.name").As("location_name"),
			goqu.I("kc.id").As("custody_id"),
			goqu.I("tm.id").As("custodian_id"),
			goqu.I("tm.name").As("custodian_name"),
			goqu.I("kc.created_at").As("custody_created_at"),
		).
		LeftJoin(
			goqu.T("locations").As("l"),
			goqu.On(goqu.Ex{"k.location_id": goqu.I("l.id")}),
		).
		LeftJoin(
			goqu.T("kit_custodies").As("kc"),
			goqu.On(goqu.Ex{"kc.kit_id": goqu.I("k.id")}),
		).
		LeftJoin(
			goqu.T("team_members").As("tm"),
			goqu.On(goqu.Ex{"kc.team_member_id": goqu.I("tm.id")}),
		)
}

// FetchKit loads one kit through q, which may be a transaction.
func FetchKit(ctx context.Context, q repository.Querier, organizationID, kitID string) (*models.Kit, error) {
	return fetchKit(ctx, q, goqu.Ex{"k.id": kitID, "k.organization_id": organizationID}, kitID, organizationID)
}

func fetchKit(ctx context.Context, q repository.Querier, condition goqu.Ex, ref, organizationID string) (*models.Kit, error) {
	var flatKit models.FlatKitRecord
	found, err := KitQuery(q).
		Where(condition).
		Executor().
		ScanStructContext(ctx, &flatKit)
	if err != nil {
		return nil, custom_error.Storage("select kit", err)
	}
	if !found {
		return nil, custom_error.NotFound("kit", ref, organizationID)
	}

	kit := flatKit.TransformToKit()
	return &kit, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
