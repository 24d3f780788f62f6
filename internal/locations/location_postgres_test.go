package locations

import (
	"context"
	"sync"
	"testing"

	"shelf/internal/database/dbtest"
	custom_error "shelf/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOppositeMovesNeverFormCycle(t *testing.T) {
	r := dbtest.NewRepository(t)
	org := dbtest.Organization(t, r, "org1")
	repo := NewLocationRepository(r)
	ctx := context.Background()

	a := dbtest.Location(t, r, org, "", "A")
	b := dbtest.Location(t, r, org, "", "B")

	_, err := repo.MoveLocation(ctx, org, a, &b)
	require.NoError(t, err)

	_, err = repo.MoveLocation(ctx, org, b, &a)
	var conflict *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestConcurrentOppositeMovesPostgres(t *testing.T) {
	r := dbtest.NewPostgresRepository(t)
	org := dbtest.Organization(t, r, "opposite-moves")
	repo := NewLocationRepository(r)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		a := dbtest.Location(t, r, org, "", "A")
		b := dbtest.Location(t, r, org, "", "B")

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  [2]error
		)
		moves := [2][2]string{{a, b}, {b, a}}
		for i, move := range moves {
			wg.Add(1)
			go func(i int, id, parent string) {
				defer wg.Done()
				<-start
				_, errs[i] = repo.MoveLocation(ctx, org, id, &parent)
			}(i, move[0], move[1])
		}
		close(start)
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
				continue
			}
			var conflict *custom_error.ConflictError
			require.ErrorAs(t, err, &conflict)
		}
		require.Equal(t, 1, successes, "round %d", round)

		locA, err := repo.GetLocation(ctx, org, a)
		require.NoError(t, err)
		locB, err := repo.GetLocation(ctx, org, b)
		require.NoError(t, err)
		bothMoved := locA.ParentID != nil && locB.ParentID != nil
		assert.False(t, bothMoved, "round %d: A and B are parents of each other", round)
	}
}
