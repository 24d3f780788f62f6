package models

import "time"

type TeamMember struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	UserID         *string   `json:"userId,omitempty" db:"user_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type CreateTeamMemberRequest struct {
	Name   string  `json:"name" binding:"required"`
	UserID *string `json:"userId"`
}
