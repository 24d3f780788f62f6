package locations

import (
	"context"
	"testing"

	"shelf/internal/database/dbtest"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistLocation(t *testing.T) {
	r := dbtest.NewRepository(t)
	org := dbtest.Organization(t, r, "org1")
	repo := NewLocationRepository(r)
	ctx := context.Background()

	warehouse, err := repo.PersistLocation(ctx, org, models.CreateLocationRequest{Name: " Warehouse "})
	require.NoError(t, err)
	assert.Equal(t, "Warehouse", warehouse.Name)
	assert.Nil(t, warehouse.ParentID)

	shelf, err := repo.PersistLocation(ctx, org, models.CreateLocationRequest{Name: "Shelf 1", ParentID: &warehouse.ID})
	require.NoError(t, err)

	fetched, err := repo.GetLocation(ctx, org, shelf.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ParentID)
	assert.Equal(t, warehouse.ID, *fetched.ParentID)

	list, err := repo.GetLocations(ctx, org)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = repo.PersistLocation(ctx, org, models.CreateLocationRequest{Name: "  "})
	var invalid *custom_error.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestPersistLocationRejectsForeignParent(t *testing.T) {
	r := dbtest.NewRepository(t)
	org := dbtest.Organization(t, r, "org1")
	other := dbtest.Organization(t, r, "org2")
	foreign := dbtest.Location(t, r, other, "", "Elsewhere")
	repo := NewLocationRepository(r)

	_, err := repo.PersistLocation(context.Background(), org, models.CreateLocationRequest{Name: "Shelf", ParentID: &foreign})
	var notFound *custom_error.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, foreign, notFound.ID)
}

func TestUpdateLocation(t *testing.T) {
	r := dbtest.NewRepository(t)
	org := dbtest.Organization(t, r, "org1")
	id := dbtest.Location(t, r, org, "", "Old")
	repo := NewLocationRepository(r)
	ctx := context.Background()

	name := "New"
	description := "Back room"
	updated, err := repo.UpdateLocation(ctx, org, id, models.UpdateLocationRequest{Name: &name, Description: &description})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Back room", *updated.Description)

	_, err = repo.UpdateLocation(ctx, org, "missing", models.UpdateLocationRequest{Name: &name})
	var notFound *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = repo.UpdateLocation(ctx, org, id, models.UpdateLocationRequest{})
	var invalid *custom_error.ValidationError
	assert.ErrorAs(t, err, &invalid)
}
