package locations

import (
	"context"
	"testing"

	"shelf/internal/database/dbtest"
	custom_error "shelf/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type treeFixture struct {
	repo       *LocationRepository
	org        string
	a, b, c, d string
}

// org1: A (root) -> B -> C, sibling root D
func newTreeFixture(t *testing.T) treeFixture {
	r := dbtest.NewRepository(t)
	org := dbtest.Organization(t, r, "org1")
	a := dbtest.Location(t, r, org, "", "A")
	b := dbtest.Location(t, r, org, a, "B")
	c := dbtest.Location(t, r, org, b, "C")
	d := dbtest.Location(t, r, org, "", "D")

	return treeFixture{repo: NewLocationRepository(r), org: org, a: a, b: b, c: c, d: d}
}

func TestGetLocationDescendantIDs(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()

	ids, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.a, true)
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	assert.Equal(t, f.a, ids[0], "root comes first")
	assert.ElementsMatch(t, []string{f.a, f.b, f.c}, ids)

	ids, err = f.repo.GetLocationDescendantIDs(ctx, f.org, f.d, true)
	require.NoError(t, err)
	assert.Equal(t, []string{f.d}, ids)
}

func TestGetLocationDescendantIDsExcludingSelf(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()

	withSelf, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.a, true)
	require.NoError(t, err)
	withoutSelf, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.a, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, withSelf[1:], withoutSelf)
	assert.NotContains(t, withoutSelf, f.a)

	leaf, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.c, false)
	require.NoError(t, err)
	assert.Empty(t, leaf)
}

func TestGetLocationDescendantIDsUnknownLocation(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()

	ids, err := f.repo.GetLocationDescendantIDs(ctx, f.org, "missing", true)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	other := dbtest.Organization(t, f.repo.repository, "org2")
	ids, err = f.repo.GetLocationDescendantIDs(ctx, other, f.a, true)
	require.NoError(t, err)
	assert.Empty(t, ids, "locations of another organization are invisible")
}

func TestGetLocationDescendantIDsSurvivesCycles(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()

	// corrupt the tree behind the repository's back: A -> B -> C -> A
	_, err := f.repo.repository.GoquDBWrapper.
		Update("locations").
		Set(goqu.Record{"parent_id": f.c}).
		Where(goqu.Ex{"id": f.a}).
		Executor().
		Exec()
	require.NoError(t, err)

	ids, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.b, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.b, f.c, f.a}, ids)

	ancestors, err := f.repo.GetLocationAncestorIDs(ctx, f.org, f.b)
	require.NoError(t, err)
	assert.Equal(t, []string{f.a, f.c}, ancestors)
}

func TestGetLocationDescendantIDsWideTree(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()

	expected := []string{f.d}
	for i := 0; i < frontierBatchSize+20; i++ {
		expected = append(expected, dbtest.Location(t, f.repo.repository, f.org, f.d, "shelf"))
	}

	ids, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.d, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, expected, ids)
}

func TestGetLocationAncestorIDs(t *testing.T) {
	f := newTreeFixture(t)

	ancestors, err := f.repo.GetLocationAncestorIDs(context.Background(), f.org, f.c)
	require.NoError(t, err)
	assert.Equal(t, []string{f.b, f.a}, ancestors)

	ancestors, err = f.repo.GetLocationAncestorIDs(context.Background(), f.org, f.a)
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestMoveLocationRejectsCycles(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()

	_, err := f.repo.MoveLocation(ctx, f.org, f.a, &f.c)
	var conflict *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = f.repo.MoveLocation(ctx, f.org, f.a, &f.a)
	assert.ErrorAs(t, err, &conflict)

	moved, err := f.repo.MoveLocation(ctx, f.org, f.c, &f.d)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, f.d, *moved.ParentID)

	ids, err := f.repo.GetLocationDescendantIDs(ctx, f.org, f.d, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.d, f.c}, ids)

	root, err := f.repo.MoveLocation(ctx, f.org, f.b, nil)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	missing := "missing"
	_, err = f.repo.MoveLocation(ctx, f.org, f.b, &missing)
	var notFound *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRemoveLocation(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()
	var conflict *custom_error.ConflictError

	_, err := f.repo.RemoveLocation(ctx, f.org, f.b)
	assert.ErrorAs(t, err, &conflict, "location with children")

	dbtest.Asset(t, f.repo.repository, f.org, f.d, "Drill")
	_, err = f.repo.RemoveLocation(ctx, f.org, f.d)
	assert.ErrorAs(t, err, &conflict, "location with assets")

	removed, err := f.repo.RemoveLocation(ctx, f.org, f.c)
	require.NoError(t, err)
	assert.Equal(t, "C", removed.Name)

	_, err = f.repo.GetLocation(ctx, f.org, f.c)
	var notFound *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
