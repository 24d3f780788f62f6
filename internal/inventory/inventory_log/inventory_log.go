package inventorylog

import (
	"context"

	"shelf/pkg/auditlog"
	"shelf/pkg/models"
)

// InventoryLog writes the audit entries of asset, kit and custody changes.
type InventoryLog struct {
	a *auditlog.Auditlog
}

func NewInventoryLog(a *auditlog.Auditlog) *InventoryLog {
	return &InventoryLog{a: a}
}

func (s *InventoryLog) CreateAssetAuditLogEntry(ctx context.Context, action string, asset *models.Asset, msg string) {
	if s == nil {
		return
	}

	data := map[string]interface{}{
		"code": asset.Code,
		"msg":  msg,
	}
	if asset.Location != nil {
		data["location_id"] = asset.Location.ID
	}

	s.a.Log(ctx, action, data, asset)
}

func (s *InventoryLog) CreateKitAuditLogEntry(ctx context.Context, action string, kit *models.Kit, msg string, assetIDs []string) {
	if s == nil {
		return
	}

	data := map[string]interface{}{
		"code": kit.Code,
		"msg":  msg,
	}
	if len(assetIDs) > 0 {
		data["asset_ids"] = assetIDs
	}

	s.a.Log(ctx, action, data, kit)
}

// CreateCustodyAuditLogEntry records a custody transition on item, which is an
// asset or a kit.
func (s *InventoryLog) CreateCustodyAuditLogEntry(ctx context.Context, action string, item auditlog.Auditable, custodianID string) {
	if s == nil {
		return
	}

	messages := map[string]string{
		"assign_custody":  "Custody assigned",
		"release_custody": "Custody released",
	}

	s.a.Log(
		ctx,
		action,
		map[string]interface{}{
			"team_member_id": custodianID,
			"msg":            messages[action],
		},
		item,
	)
}
