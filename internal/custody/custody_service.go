package custody

import (
	"context"

	inventorylog "shelf/internal/inventory/inventory_log"
	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type custodyStore interface {
	WithTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error
	GetTeamMember(ctx context.Context, q repository.Querier, organizationID, teamMemberID string) (*models.TeamMember, error)
	MarkInCustody(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (bool, error)
	MarkAvailable(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (bool, error)
	InsertCustody(ctx context.Context, q repository.Querier, t Target, id, teamMemberID string) error
	DeleteCustody(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (string, error)
	Exists(ctx context.Context, q repository.Querier, t Target, organizationID, id string) (bool, error)
	GetAsset(ctx context.Context, q repository.Querier, organizationID, assetID string) (*models.Asset, error)
	GetKit(ctx context.Context, q repository.Querier, organizationID, kitID string) (*models.Kit, error)
}

// CustodyService moves assets and kits between AVAILABLE and IN_CUSTODY. The
// status flag and the custody record always change in one transaction.
type CustodyService struct {
	store        custodyStore
	inventoryLog *inventorylog.InventoryLog
	metrics      *Metrics
}

func NewCustodyService(store custodyStore, il *inventorylog.InventoryLog, m *Metrics) *CustodyService {
	return &CustodyService{store: store, inventoryLog: il, metrics: m}
}

// GetTeamMember looks up a custodian of the organization.
func (s *CustodyService) GetTeamMember(ctx context.Context, organizationID, teamMemberID string) (*models.TeamMember, error) {
	var member *models.TeamMember
	err := s.store.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		member, err = s.store.GetTeamMember(ctx, tx, organizationID, teamMemberID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

func (s *CustodyService) AssignAssetCustody(ctx context.Context, organizationID, assetID, custodianID string) (*models.Asset, error) {
	var asset *models.Asset
	err := s.store.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		if err := s.assign(ctx, tx, AssetTarget, organizationID, assetID, custodianID); err != nil {
			return err
		}

		var err error
		asset, err = s.store.GetAsset(ctx, tx, organizationID, assetID)
		return err
	})
	if err != nil {
		s.metrics.failed(AssetTarget, actionAssign)
		return nil, err
	}

	s.metrics.succeeded(AssetTarget, actionAssign)
	s.inventoryLog.CreateCustodyAuditLogEntry(ctx, actionAssign, asset, custodianID)

	return asset, nil
}

func (s *CustodyService) ReleaseAssetCustody(ctx context.Context, organizationID, assetID string) (*models.Asset, error) {
	var asset *models.Asset
	var custodianID string
	err := s.store.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		custodianID, err = s.release(ctx, tx, AssetTarget, organizationID, assetID)
		if err != nil {
			return err
		}

		asset, err = s.store.GetAsset(ctx, tx, organizationID, assetID)
		return err
	})
	if err != nil {
		s.metrics.failed(AssetTarget, actionRelease)
		return nil, err
	}

	s.metrics.succeeded(AssetTarget, actionRelease)
	s.inventoryLog.CreateCustodyAuditLogEntry(ctx, actionRelease, asset, custodianID)

	return asset, nil
}

// AssignKitCustody puts a kit in custody. Member assets keep their own status.
func (s *CustodyService) AssignKitCustody(ctx context.Context, organizationID, kitID, custodianID string) (*models.Kit, error) {
	var kit *models.Kit
	err := s.store.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		if err := s.assign(ctx, tx, KitTarget, organizationID, kitID, custodianID); err != nil {
			return err
		}

		var err error
		kit, err = s.store.GetKit(ctx, tx, organizationID, kitID)
		return err
	})
	if err != nil {
		s.metrics.failed(KitTarget, actionAssign)
		return nil, err
	}

	s.metrics.succeeded(KitTarget, actionAssign)
	s.inventoryLog.CreateCustodyAuditLogEntry(ctx, actionAssign, kit, custodianID)

	return kit, nil
}

func (s *CustodyService) ReleaseKitCustody(ctx context.Context, organizationID, kitID string) (*models.Kit, error) {
	var kit *models.Kit
	var custodianID string
	err := s.store.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		custodianID, err = s.release(ctx, tx, KitTarget, organizationID, kitID)
		if err != nil {
			return err
		}

		kit, err = s.store.GetKit(ctx, tx, organizationID, kitID)
		return err
	})
	if err != nil {
		s.metrics.failed(KitTarget, actionRelease)
		return nil, err
	}

	s.metrics.succeeded(KitTarget, actionRelease)
	s.inventoryLog.CreateCustodyAuditLogEntry(ctx, actionRelease, kit, custodianID)

	return kit, nil
}

func (s *CustodyService) assign(ctx context.Context, tx *goqu.TxDatabase, t Target, organizationID, id, custodianID string) error {
	if _, err := s.store.GetTeamMember(ctx, tx, organizationID, custodianID); err != nil {
		return err
	}

	updated, err := s.store.MarkInCustody(ctx, tx, t, organizationID, id)
	if err != nil {
		return err
	}
	if !updated {
		exists, err := s.store.Exists(ctx, tx, t, organizationID, id)
		if err != nil {
			return err
		}
		if !exists {
			return custom_error.NotFound(t.Resource, id, organizationID)
		}
		return custom_error.Conflict(t.Resource, id, organizationID, t.Resource+" is not available for custody")
	}

	return s.store.InsertCustody(ctx, tx, t, id, custodianID)
}

func (s *CustodyService) release(ctx context.Context, tx *goqu.TxDatabase, t Target, organizationID, id string) (string, error) {
	updated, err := s.store.MarkAvailable(ctx, tx, t, organizationID, id)
	if err != nil {
		return "", err
	}
	if !updated {
		exists, err := s.store.Exists(ctx, tx, t, organizationID, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", custom_error.NotFound(t.Resource, id, organizationID)
		}
		return "", custom_error.NotFound("custody", id, organizationID)
	}

	return s.store.DeleteCustody(ctx, tx, t, organizationID, id)
}
