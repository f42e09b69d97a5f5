package history

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footagelens/internal/models"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewStore(mr.Addr(), "", time.Minute)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestStore_SeedAndReadAnalysis(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedAnalysis(ctx, "v1", "Person detected at door"))

	analysis, found, err := store.Analysis(ctx, "v1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Person detected at door", analysis)

	_, found, err = store.Analysis(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_TurnsOrderAndLimit(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	turns := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
		{Role: models.RoleUser, Content: "third"},
		{Role: models.RoleAssistant, Content: "fourth"},
	}
	for _, turn := range turns {
		require.NoError(t, store.AppendTurn(ctx, "v1", turn))
	}

	all, err := store.Turns(ctx, "v1", 0)
	require.NoError(t, err)
	assert.Equal(t, turns, all)

	last, err := store.Turns(ctx, "v1", 2)
	require.NoError(t, err)
	assert.Equal(t, turns[2:], last)
}

func TestStore_SeedResetsThread(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedAnalysis(ctx, "v1", "old analysis"))
	require.NoError(t, store.AppendTurn(ctx, "v1", models.ConversationTurn{Role: models.RoleUser, Content: "hi"}))

	require.NoError(t, store.SeedAnalysis(ctx, "v1", "new analysis"))

	turns, err := store.Turns(ctx, "v1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestStore_Expiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedAnalysis(ctx, "v1", "analysis"))
	require.NoError(t, store.AppendTurn(ctx, "v1", models.ConversationTurn{Role: models.RoleUser, Content: "hi"}))

	mr.FastForward(2 * time.Minute)

	_, found, err := store.Analysis(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, found)

	turns, err := store.Turns(ctx, "v1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
