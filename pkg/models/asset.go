package models

import (
	"time"

	"shelf/pkg/metadata"
)

type Asset struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	Title          string          `json:"title"`
	Description    *string         `json:"description"`
	Status         metadata.Status `json:"status"`
	Code           string          `json:"code"`
	Location       *Location       `json:"location,omitempty"`
	Category       *Category       `json:"category,omitempty"`
	KitID          *string         `json:"kitId,omitempty"`
	Custody        *Custody        `json:"custody,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// FlatAssetRecord is the joined row shape of an asset with its location,
// category and custody.
type FlatAssetRecord struct {
	ID               string     `db:"asset_id"`
	OrganizationID   string     `db:"organization_id"`
	Title            string     `db:"title"`
	Description      *string    `db:"description"`
	Status           string     `db:"status"`
	Code             string     `db:"code"`
	KitID            *string    `db:"kit_id"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	LocationID       *string    `db:"location_id"`
	LocationName     *string    `db:"location_name"`
	CategoryID       *string    `db:"category_id"`
	CategoryName     *string    `db:"category_name"`
	CategoryPrefix   *string    `db:"category_prefix"`
	CustodyID        *string    `db:"custody_id"`
	CustodianID      *string    `db:"custodian_id"`
	CustodianName    *string    `db:"custodian_name"`
	CustodyCreatedAt *time.Time `db:"custody_created_at"`
}

func (fa *FlatAssetRecord) TransformToAsset() Asset {
	asset := Asset{
		ID:             fa.ID,
		OrganizationID: fa.OrganizationID,
		Title:          fa.Title,
		Description:    fa.Description,
		Status:         metadata.Status(fa.Status),
		Code:           fa.Code,
		KitID:          fa.KitID,
		CreatedAt:      fa.CreatedAt,
		UpdatedAt:      fa.UpdatedAt,
	}

	if fa.LocationID != nil {
		asset.Location = &Location{
			ID:             *fa.LocationID,
			OrganizationID: fa.OrganizationID,
			Name:           deref(fa.LocationName),
		}
	}
	if fa.CategoryID != nil {
		asset.Category = &Category{
			ID:             *fa.CategoryID,
			OrganizationID: fa.OrganizationID,
			Name:           deref(fa.CategoryName),
			CodePrefix:     deref(fa.CategoryPrefix),
		}
	}
	if fa.CustodyID != nil {
		asset.Custody = &Custody{
			ID:          *fa.CustodyID,
			AssetID:     &fa.ID,
			CustodianID: deref(fa.CustodianID),
			Custodian: &TeamMember{
				ID:             deref(fa.CustodianID),
				OrganizationID: fa.OrganizationID,
				Name:           deref(fa.CustodianName),
			},
		}
		if fa.CustodyCreatedAt != nil {
			asset.Custody.CreatedAt = *fa.CustodyCreatedAt
		}
	}

	return asset
}

type CreateAssetRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	LocationID  *string `json:"locationId"`
	CategoryID  *string `json:"categoryId"`
}

type MoveAssetRequest struct {
	LocationID *string `json:"locationId"`
}

func (a *Asset) CreateLogView() AuditLog {
	return AuditLog{
		OrganizationID: a.OrganizationID,
		ResourceID:     a.ID,
		ResourceType:   "asset",
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
