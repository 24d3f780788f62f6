package models

type Category struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organizationId" db:"organization_id"`
	Name           string `json:"name" db:"name"`
	CodePrefix     string `json:"codePrefix" db:"code_prefix"`
}

type CreateCategoryRequest struct {
	Name       string `json:"name" binding:"required"`
	CodePrefix string `json:"codePrefix" binding:"omitempty,alpha,min=1,max=3"`
}
