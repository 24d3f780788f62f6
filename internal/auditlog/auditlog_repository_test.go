package auditlog

import (
	"context"
	"testing"

	"shelf/internal/database/dbtest"
	"shelf/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistAndReadResourceLog(t *testing.T) {
	r := dbtest.NewRepository(t)
	repo := NewRepository(r)
	ctx := context.Background()
	userID := "user-1"

	entry := models.AuditLog{OrganizationID: "org-1", ResourceID: "asset-1", ResourceType: "asset", Action: "assign_custody", UserID: &userID}
	require.NoError(t, repo.PersistLog(ctx, entry, map[string]interface{}{"custodian_id": "tm-1"}))
	require.NoError(t, repo.PersistLog(ctx, models.AuditLog{OrganizationID: "org-2", ResourceID: "asset-1", ResourceType: "asset", Action: "create"}, nil))

	logs, err := repo.GetResourceLog(ctx, "org-1", "asset", "asset-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "assign_custody", logs[0].Action)
	assert.Equal(t, "tm-1", logs[0].Data["custodian_id"])
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, "user-1", *logs[0].UserID)
}
