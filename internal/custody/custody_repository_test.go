package custody

import (
	"context"
	"testing"
	"time"

	"shelf/internal/database/dbtest"
	"shelf/internal/repository"
	"shelf/pkg/metadata"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setStatus(t *testing.T, r *repository.Repository, table, id string, status metadata.Status) {
	t.Helper()
	_, err := r.GoquDBWrapper.Update(table).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	require.NoError(t, err)
}

func insertCustodyRow(t *testing.T, r *repository.Repository, target Target, id, memberID string) {
	t.Helper()
	_, err := r.GoquDBWrapper.Insert(target.CustodyTable).
		Rows(goqu.Record{
			"id":             uuid.NewString(),
			target.CustodyFK: id,
			"team_member_id": memberID,
			"created_at":     time.Now().UTC(),
		}).
		Executor().
		Exec()
	require.NoError(t, err)
}

func TestMarkInCustodyGuards(t *testing.T) {
	ctx := context.Background()
	r := dbtest.NewRepository(t)
	store := NewRepository(r)
	org := dbtest.Organization(t, r, "org1")
	other := dbtest.Organization(t, r, "org2")
	member := dbtest.TeamMember(t, r, org, "Alice")

	tests := []struct {
		name    string
		prepare func(id string)
		org     string
		want    bool
	}{
		{
			name:    "available without custody record",
			prepare: func(string) {},
			org:     org,
			want:    true,
		},
		{
			name:    "already in custody",
			prepare: func(id string) { setStatus(t, r, "assets", id, metadata.StatusInCustody) },
			org:     org,
			want:    false,
		},
		{
			name:    "checked out",
			prepare: func(id string) { setStatus(t, r, "assets", id, metadata.StatusCheckedOut) },
			org:     org,
			want:    false,
		},
		{
			name:    "available but a custody record exists",
			prepare: func(id string) { insertCustodyRow(t, r, AssetTarget, id, member) },
			org:     org,
			want:    false,
		},
		{
			name:    "other organization",
			prepare: func(string) {},
			org:     other,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assetID := dbtest.Asset(t, r, org, "", tt.name)
			tt.prepare(assetID)

			updated, err := store.MarkInCustody(ctx, r.GoquDBWrapper, AssetTarget, tt.org, assetID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated)
		})
	}
}

func TestMarkInCustodyGuardsKits(t *testing.T) {
	ctx := context.Background()
	r := dbtest.NewRepository(t)
	store := NewRepository(r)
	org := dbtest.Organization(t, r, "org1")
	member := dbtest.TeamMember(t, r, org, "Alice")

	kitID := dbtest.Kit(t, r, org, "Camera kit")
	insertCustodyRow(t, r, KitTarget, kitID, member)

	updated, err := store.MarkInCustody(ctx, r.GoquDBWrapper, KitTarget, org, kitID)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestMarkAvailableGuard(t *testing.T) {
	ctx := context.Background()
	r := dbtest.NewRepository(t)
	store := NewRepository(r)
	org := dbtest.Organization(t, r, "org1")
	assetID := dbtest.Asset(t, r, org, "", "Drill")

	updated, err := store.MarkAvailable(ctx, r.GoquDBWrapper, AssetTarget, org, assetID)
	require.NoError(t, err)
	assert.False(t, updated, "an available asset has nothing to release")

	setStatus(t, r, "assets", assetID, metadata.StatusInCustody)
	updated, err = store.MarkAvailable(ctx, r.GoquDBWrapper, AssetTarget, org, assetID)
	require.NoError(t, err)
	assert.True(t, updated)
}
