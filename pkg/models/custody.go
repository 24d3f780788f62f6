package models

import "time"

// Custody is owned by exactly one asset or kit; it is removed when custody is released.
type Custody struct {
	ID          string      `json:"id" db:"id"`
	AssetID     *string     `json:"assetId,omitempty"`
	KitID       *string     `json:"kitId,omitempty"`
	CustodianID string      `json:"custodianId" db:"team_member_id"`
	Custodian   *TeamMember `json:"custodian,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

type AssignCustodyRequest struct {
	CustodianID string `json:"custodianId" binding:"required"`
}
