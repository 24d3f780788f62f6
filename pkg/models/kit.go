package models

import (
	"time"

	"shelf/pkg/metadata"
)

type Kit struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Status         metadata.Status `json:"status"`
	Code           string          `json:"code"`
	Location       *Location       `json:"location,omitempty"`
	Custody        *Custody        `json:"custody,omitempty"`
	AssetCount     int             `json:"assetCount"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type FlatKitRecord struct {
	ID               string     `db:"kit_id"`
	OrganizationID   string     `db:"organization_id"`
	Name             string     `db:"name"`
	Description      *string    `db:"description"`
	Status           string     `db:"status"`
	Code             string     `db:"code"`
	AssetCount       int        `db:"asset_count"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	LocationID       *string    `db:"location_id"`
	LocationName     *string    `db:"location_name"`
	CustodyID        *string    `db:"custody_id"`
	CustodianID      *string    `db:"custodian_id"`
	CustodianName    *string    `db:"custodian_name"`
	CustodyCreatedAt *time.Time `db:"custody_created_at"`
}

func (fk *FlatKitRecord) TransformToKit() Kit {
	kit := Kit{
		ID:             fk.ID,
		OrganizationID: fk.OrganizationID,
		Name:           fk.Name,
		Description:    fk.Description,
		Status:         metadata.Status(fk.Status),
		Code:           fk.Code,
		AssetCount:     fk.AssetCount,
		CreatedAt:      fk.CreatedAt,
		UpdatedAt:      fk.UpdatedAt,
	}

	if fk.LocationID != nil {
		kit.Location = &Location{
			ID:             *fk.LocationID,
			OrganizationID: fk.OrganizationID,
			Name:           deref(fk.LocationName),
		}
	}
	if fk.CustodyID != nil {
		kit.Custody = &Custody{
			ID:          *fk.CustodyID,
			KitID:       &fk.ID,
			CustodianID: deref(fk.CustodianID),
			Custodian: &TeamMember{
				ID:             deref(fk.CustodianID),
				OrganizationID: fk.OrganizationID,
				Name:           deref(fk.CustodianName),
			},
		}
		if fk.CustodyCreatedAt != nil {
			kit.Custody.CreatedAt = *fk.CustodyCreatedAt
		}
	}

	return kit
}

type CreateKitRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	LocationID  *string `json:"locationId"`
}

type KitAssetsRequest struct {
	AssetIDs []string `json:"assetIds" binding:"required,min=1"`
}

func (k *Kit) CreateLogView() AuditLog {
	return AuditLog{
		OrganizationID: k.OrganizationID,
		ResourceID:     k.ID,
		ResourceType:   "kit",
	}
}
