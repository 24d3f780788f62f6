package custody

import (
	"context"
	"time"

	"shelf/internal/inventory/assets"
	"shelf/internal/inventory/kits"
	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/metadata"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// Target is the entity kind custody is attached to.
type Target struct {
	Resource     string
	Table        string
	CustodyTable string
	CustodyFK    string
}

var (
	AssetTarget = Target{Resource: "asset", Table: "assets", CustodyTable: "custodies", CustodyFK: "asset_id"}
	KitTarget   = Target{Resource: "kit", Table: "kits", CustodyTable: "kit_custodies", CustodyFK: "kit_id"}
)

type CustodyRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *CustodyRepository {
	return &CustodyRepository{repository: r}
}

func (r *CustodyRepository) WithTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error {
	return repository.WithTransaction(ctx, r.repository.GoquDBWrapper, fn)
}

func (r *CustodyRepository) GetTeamMember(ctx context.Context, q repository.Querier, organizationID, teamMemberID string) (*models.TeamMember, error) {
	var member models.TeamMember
	found, err := q.From("team_members").
		Select("id", "organization_id", "name", "user_id", "created_at").
		Where(goqu.Ex{"id": teamMemberID, "organization_id": organizationID}).
		Executor().
		ScanStructContext(ctx, &member)
	if err != nil {
		return nil, custom_error.Storage("select team member", err)
	}
	if !found {
		return nil, custom_error.NotFound("team member", teamMemberID, organizationID)
	}

	return &member, nil
}

// MarkInCustody flips an AVAILABLE entity without a custody record to
// IN_CUSTODY. Check and write are one statement, so of two concurrent callers
// only one sees a row updated.
func (r *CustodyRepository) MarkInCustody(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (bool, error) {
	result, err := q.Update(t.Table).
		Set(goqu.Record{"status": string(metadata.StatusInCustody), "updated_at": time.Now().UTC()}).
		Where(
			goqu.Ex{
				"id":              id,
				"organization_id": organizationID,
				"status":          string(metadata.StatusAvailable),
			},
			goqu.L("NOT EXISTS (SELECT 1 FROM "+t.CustodyTable+" WHERE "+t.CustodyFK+" = ?)", id),
		).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, custom_error.Storage("mark "+t.Resource+" in custody", err)
	}

	return affected(result.RowsAffected())
}

// MarkAvailable flips an IN_CUSTODY entity back to AVAILABLE.
func (r *CustodyRepository) MarkAvailable(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (bool, error) {
	result, err := q.Update(t.Table).
		Set(goqu.Record{"status": string(metadata.StatusAvailable), "updated_at": time.Now().UTC()}).
		Where(goqu.Ex{
			"id":              id,
			"organization_id": organizationID,
			"status":          string(metadata.StatusInCustody),
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, custom_error.Storage("mark "+t.Resource+" available", err)
	}

	return affected(result.RowsAffected())
}

func (r *CustodyRepository) InsertCustody(ctx context.Context, q repository.Querier, t Target, id, teamMemberID string) error {
	_, err := q.Insert(t.CustodyTable).
		Rows(goqu.Record{
			"id":             uuid.NewString(),
			t.CustodyFK:      id,
			"team_member_id": teamMemberID,
			"created_at":     time.Now().UTC(),
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.TranslateDBError("insert "+t.Resource+" custody", err)
	}

	return nil
}

// DeleteCustody removes the custody record of an entity and returns the
// custodian it was held by.
func (r *CustodyRepository) DeleteCustody(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (string, error) {
	var teamMemberID string
	found, err := q.From(t.CustodyTable).
		Select("team_member_id").
		Where(goqu.Ex{t.CustodyFK: id}).
		Executor().
		ScanValContext(ctx, &teamMemberID)
	if err != nil {
		return "", custom_error.Storage("select "+t.Resource+" custody", err)
	}
	if !found {
		return "", custom_error.NotFound("custody", id, organizationID)
	}

	_, err = q.Delete(t.CustodyTable).
		Where(goqu.Ex{t.CustodyFK: id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return "", custom_error.TranslateDBError("delete "+t.Resource+" custody", err)
	}

	return teamMemberID, nil
}

func (r *CustodyRepository) Exists(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (bool, error) {
	var count int
	_, err := q.From(t.Table).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"id": id, "organization_id": organizationID}).
		Executor().
		ScanValContext(ctx, &count)
	if err != nil {
		return false, custom_error.Storage("select "+t.Resource, err)
	}

	return count > 0, nil
}

func (r *CustodyRepository) GetAsset(ctx context.Context, q repository.Querier, organizationID, assetID string) (*models.Asset, error) {
	return assets.FetchAsset(ctx, q, organizationID, assetID)
}

func (r *CustodyRepository) GetKit(ctx context.Context, q repository.Querier, organizationID, kitID string) (*models.Kit, error) {
	return kits.FetchKit(ctx, q, organizationID, kitID)
}

func affected(rows int64, err error) (bool, error) {
	if err != nil {
		return false, custom_error.Storage("rows affected", err)
	}
	return rows > 0, nil
}
