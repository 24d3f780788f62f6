package users

import (
	"context"
	"testing"

	"shelf/internal/database/dbtest"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapCreatesOwner(t *testing.T) {
	r := dbtest.NewRepository(t)
	ctx := context.Background()

	org, owner, err := Bootstrap(ctx, r, "Acme", "root", []byte("hash"))
	require.NoError(t, err)
	assert.Equal(t, roles.Owner, owner.Role)

	repo := NewRepository(r)
	members, err := repo.GetTeamMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.NotNil(t, members[0].UserID)
	assert.Equal(t, owner.ID, *members[0].UserID)

	_, _, err = Bootstrap(ctx, r, "Other", "root", []byte("hash"))
	var unique *custom_error.UniqueViolationError
	assert.ErrorAs(t, err, &unique)
}

func TestUsersAreScopedToOrganization(t *testing.T) {
	r := dbtest.NewRepository(t)
	ctx := context.Background()
	repo := NewRepository(r)
	org := dbtest.Organization(t, r, "org1")
	other := dbtest.Organization(t, r, "org2")

	user, err := repo.PersistUser(ctx, org, models.CreateUserRequest{Username: "alice", Role: roles.Base}, []byte("hash"))
	require.NoError(t, err)

	_, err = repo.GetUser(ctx, other, user.ID)
	var notFound *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = repo.PersistTeamMember(ctx, other, models.CreateTeamMemberRequest{Name: "Alice", UserID: &user.ID})
	assert.ErrorAs(t, err, &notFound)

	role := roles.Admin
	require.NoError(t, repo.UpdateUser(ctx, org, user.ID, &models.UserChanges{Role: &role}))
	updated, err := repo.GetUser(ctx, org, user.ID)
	require.NoError(t, err)
	assert.Equal(t, roles.Admin, updated.Role)

	_, err = repo.PersistUser(ctx, org, models.CreateUserRequest{Username: "mallory", Role: "ROOT"}, []byte("hash"))
	var invalid *custom_error.ValidationError
	assert.ErrorAs(t, err, &invalid)
}
