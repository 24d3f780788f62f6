package custody

import (
	"context"
	"sync"
	"testing"
	"time"

	"shelf/internal/database/dbtest"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/metadata"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markResult struct {
	updated bool
	err     error
}

// Two transactions both see the asset AVAILABLE before either writes. The
// second conditional update has to wait for the first and then match nothing.
func TestOverlappingAssignTransactionsPostgres(t *testing.T) {
	ctx := context.Background()
	r := dbtest.NewPostgresRepository(t)
	store := NewRepository(r)
	org := dbtest.Organization(t, r, "overlap")
	member := dbtest.TeamMember(t, r, org, "Alice")
	assetID := dbtest.Asset(t, r, org, "", "Drone")

	first, err := r.GoquDBWrapper.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = first.Rollback() }()

	second, err := r.GoquDBWrapper.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = second.Rollback() }()

	for _, tx := range []*goqu.TxDatabase{first, second} {
		asset, err := store.GetAsset(ctx, tx, org, assetID)
		require.NoError(t, err)
		require.Equal(t, metadata.StatusAvailable, asset.Status)
	}

	updated, err := store.MarkInCustody(ctx, first, AssetTarget, org, assetID)
	require.NoError(t, err)
	require.True(t, updated)
	require.NoError(t, store.InsertCustody(ctx, first, AssetTarget, assetID, member))

	results := make(chan markResult, 1)
	go func() {
		updated, err := store.MarkInCustody(ctx, second, AssetTarget, org, assetID)
		results <- markResult{updated: updated, err: err}
	}()

	select {
	case res := <-results:
		t.Fatalf("second update returned before the first transaction finished: %+v", res)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, first.Commit())

	select {
	case res := <-results:
		require.NoError(t, res.err)
		assert.False(t, res.updated)
	case <-time.After(5 * time.Second):
		t.Fatal("second update never finished")
	}
	require.NoError(t, second.Commit())

	assertCustodyInvariant(t, r, AssetTarget, assetID, true)
}

func TestConcurrentAssignPostgres(t *testing.T) {
	f := newFixtureOn(t, dbtest.NewPostgresRepository(t))
	assetID := dbtest.Asset(t, f.r, f.org, "", "Drone")

	const callers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.service.AssignAssetCustody(context.Background(), f.org, assetID, f.member)
		}(i)
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
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, successes)
	assertCustodyInvariant(t, f.r, AssetTarget, assetID, true)
}
