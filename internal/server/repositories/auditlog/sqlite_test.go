package auditlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/sqlitetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_InsertAndList(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, &models.AuditEntry{
			ID:        fmt.Sprintf("id-%d", i),
			Username:  "alice123",
			Action:    models.ActionLogin,
			Status:    models.StatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	// unknown users are recorded too
	require.NoError(t, repo.Insert(ctx, &models.AuditEntry{
		ID: "ghost", Username: "nobody99", Action: models.ActionLogin, Status: models.StatusFailed,
		Details: "unknown user", CreatedAt: base,
	}))

	got, err := repo.ListByUser(ctx, "alice123", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"id-4", "id-3", "id-2"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, base.Add(4*time.Second).Equal(got[0].CreatedAt))

	got, err = repo.ListByUser(ctx, "nobody99", 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "unknown user", got[0].Details)
	assert.Equal(t, models.StatusFailed, got[0].Status)
}

func TestSQLite_TieBreakOnID(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()
	ts := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"a", "c", "b"} {
		require.NoError(t, repo.Insert(ctx, &models.AuditEntry{
			ID: id, Username: "alice123", Action: models.ActionRegister, Status: models.StatusSuccess, CreatedAt: ts,
		}))
	}

	got, err := repo.ListByUser(ctx, "alice123", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[2].ID)
}

func TestSQLite_Empty(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.Open(t))

	got, err := repo.ListByUser(context.Background(), "alice123", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
