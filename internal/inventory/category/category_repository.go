package category

import (
	"context"
	"strings"

	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/metadata"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

type CategoryRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *CategoryRepository {
	return &CategoryRepository{repository: r}
}

func (r *CategoryRepository) GetCategories(ctx context.Context, organizationID string) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.repository.GoquDBWrapper.
		From("categories").
		Select("id", "organization_id", "name", "code_prefix").
		Where(goqu.Ex{"organization_id": organizationID}).
		Order(goqu.I("name").Asc()).
		Executor().
		ScanStructsContext(ctx, &categories)
	if err != nil {
		return nil, custom_error.Storage("select categories", err)
	}

	return categories, nil
}

func (r *CategoryRepository) PersistCategory(ctx context.Context, organizationID string, req models.CreateCategoryRequest) (*models.Category, error) {
	category := models.Category{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Name:           strings.TrimSpace(req.Name),
		CodePrefix:     strings.ToUpper(strings.TrimSpace(req.CodePrefix)),
	}
	if category.Name == "" {
		return nil, custom_error.Invalid("name", req.Name, "must not be empty")
	}
	if !metadata.IsValidPrefix(category.CodePrefix) {
		return nil, custom_error.Invalid("codePrefix", req.CodePrefix, "must be up to three letters other than "+metadata.KitPrefix)
	}

	_, err := r.repository.GoquDBWrapper.
		Insert("categories").
		Rows(goqu.Record{
			"id":              category.ID,
			"organization_id": category.OrganizationID,
			"name":            category.Name,
			"code_prefix":     category.CodePrefix,
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, custom_error.TranslateDBError("Category name already used", err)
	}

	return &category, nil
}

// DeleteCategory removes a category no asset uses anymore.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, organizationID, categoryID string) error {
	var count int
	_, err := r.repository.GoquDBWrapper.
		From("assets").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"organization_id": organizationID, "category_id": categoryID}).
		Executor().
		ScanValContext(ctx, &count)
	if err != nil {
		return custom_error.Storage("count category assets", err)
	}
	if count > 0 {
		return custom_error.Conflict("category", categoryID, organizationID, "category is used by assets")
	}

	result, err := r.repository.GoquDBWrapper.
		Delete("categories").
		Where(goqu.Ex{"id": categoryID, "organization_id": organizationID}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.TranslateDBError("delete category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return custom_error.Storage("delete category rows affected", err)
	}
	if rowsAffected == 0 {
		return custom_error.NotFound("category", categoryID, organizationID)
	}

	return nil
}
