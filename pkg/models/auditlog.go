package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID             string                 `json:"id" db:"id"`
	OrganizationID string                 `json:"organizationId" db:"organization_id"`
	ResourceID     string                 `json:"resourceId" db:"resource_id"`
	ResourceType   string                 `json:"resourceType" db:"resource_type"`
	Action         string                 `json:"action" db:"action"` // e.g. create, move, assign_custody, release_custody
	DataRaw        string                 `json:"-" db:"data"`
	Data           map[string]interface{} `json:"data" db:"-"`
	UserID         *string                `json:"userId,omitempty" db:"user_id"`
	CreatedAt      time.Time              `json:"createdAt" db:"created_at"`
}

func (a *AuditLog) LoadFromDB() {
	if a.DataRaw != "" {
		_ = json.Unmarshal([]byte(a.DataRaw), &a.Data)
	}
}
