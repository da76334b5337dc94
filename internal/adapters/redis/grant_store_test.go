package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/internal/testutil"
)

func TestGrantStore_GrantAndCheck(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewGrantStore(client)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, "gate-1", "1234"))

	ok, err := store.HasGrant(ctx, "gate-1", "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.HasGrant(ctx, "gate-1", "9999")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.HasGrant(ctx, "gate-other", "1234")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantStore_GrantRevokesOtherCodes(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewGrantStore(client)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, "gate-1", "1234"))
	require.NoError(t, store.Grant(ctx, "gate-1", "5678"))

	ok, err := store.HasGrant(ctx, "gate-1", "1234")
	require.NoError(t, err)
	assert.False(t, ok, "grant for the old code should be revoked")

	ok, err = store.HasGrant(ctx, "gate-1", "5678")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrantStore_Revoke(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewGrantStore(client)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, "gate-1", "1234"))
	require.NoError(t, store.Revoke(ctx, "gate-1"))

	ok, err := store.HasGrant(ctx, "gate-1", "1234")
	require.NoError(t, err)
	assert.False(t, ok)

	// Revoking a gate with no grants is a no-op.
	require.NoError(t, store.Revoke(ctx, "gate-unknown"))
}

func TestGrantStore_EmptyArgs(t *testing.T) {
	client := testutil.SetupTestRedis(t)

	store := NewGrantStore(client)
	ctx := context.Background()

	assert.Error(t, store.Grant(ctx, "", "1234"))
	assert.Error(t, store.Grant(ctx, "gate-1", ""))

	ok, err := store.HasGrant(ctx, "", "1234")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Revoke(ctx, ""))
}
