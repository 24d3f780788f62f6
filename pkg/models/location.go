package models

import "time"

type Location struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	ParentID       *string   `json:"parentId" db:"parent_id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description" db:"description"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateLocationRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ParentID    *string `json:"parentId"`
}

type UpdateLocationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type MoveLocationRequest struct {
	// nil moves the location to the root of the tree
	ParentID *string `json:"parentId"`
}

func (l *Location) CreateLogView() AuditLog {
	return AuditLog{
		OrganizationID: l.OrganizationID,
		ResourceID:     l.ID,
		ResourceType:   "location",
	}
}
