package category

import (
	"context"
	"testing"

	"shelf/internal/database/dbtest"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	r := dbtest.NewRepository(t)
	org := dbtest.Organization(t, r, "org1")
	repo := NewRepository(r)
	ctx := context.Background()

	drills, err := repo.PersistCategory(ctx, org, models.CreateCategoryRequest{Name: "Drills", CodePrefix: "dr"})
	require.NoError(t, err)
	assert.Equal(t, "DR", drills.CodePrefix)

	_, err = repo.PersistCategory(ctx, org, models.CreateCategoryRequest{Name: "Drills"})
	var unique *custom_error.UniqueViolationError
	assert.ErrorAs(t, err, &unique)

	_, err = repo.PersistCategory(ctx, org, models.CreateCategoryRequest{Name: "Boxes", CodePrefix: "kit"})
	var invalid *custom_error.ValidationError
	assert.ErrorAs(t, err, &invalid)

	assetID := dbtest.Asset(t, r, org, "", "Drill")
	_, err = r.GoquDBWrapper.Update("assets").Set(goqu.Record{"category_id": drills.ID}).Where(goqu.Ex{"id": assetID}).Executor().Exec()
	require.NoError(t, err)

	err = repo.DeleteCategory(ctx, org, drills.ID)
	var conflict *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = r.GoquDBWrapper.Delete("assets").Where(goqu.Ex{"id": assetID}).Executor().Exec()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteCategory(ctx, org, drills.ID))

	err = repo.DeleteCategory(ctx, org, drills.ID)
	var notFound *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	categories, err := repo.GetCategories(ctx, org)
	require.NoError(t, err)
	assert.Empty(t, categories)
}
