package models

import "shelf/pkg/roles"

type User struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID string     `json:"organizationId" db:"organization_id"`
	Username       string     `json:"username" db:"username"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	Role           roles.Role `json:"role" db:"role"`
}

type CreateUserRequest struct {
	Username string     `json:"username" binding:"required"`
	Password string     `json:"password" binding:"required,min=6"`
	Role     roles.Role `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Password *string     `json:"password"`
	Role     *roles.Role `json:"role"`
}

type UserChanges struct {
	PasswordHash *string
	Role         *roles.Role
}

func (c *UserChanges) HasChanges() bool {
	return c.PasswordHash != nil || c.Role != nil
}
