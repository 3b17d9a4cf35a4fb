package memory

import (
	"context"
	"testing"

	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
	pkgerrors "simkernel/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionID(t *testing.T) valueobjects.SessionID {
	t.Helper()
	id, err := valueobjects.NewSessionID("sess-ledger")
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func TestLedgerStoreAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("first marker accepted with nil prev", func(t *testing.T) {
		store := NewLedgerStore()
		id := testSessionID(t)

		err := store.Append(ctx, id, entities.ReplayMarker{ID: "1", StateHash: "aaa", TMs: 1})
		require.NoError(t, err)

		head, err := store.Head(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, head)
		assert.Equal(t, "aaa", head.StateHash)
	})

	t.Run("matching prev advances the head", func(t *testing.T) {
		store := NewLedgerStore()
		id := testSessionID(t)

		require.NoError(t, store.Append(ctx, id, entities.ReplayMarker{ID: "1", StateHash: "aaa", TMs: 1}))
		require.NoError(t, store.Append(ctx, id, entities.ReplayMarker{ID: "2", StateHash: "bbb", PrevHash: strPtr("aaa"), TMs: 2}))

		head, err := store.Head(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "bbb", head.StateHash)

		chain, err := store.List(ctx, id)
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, -1, entities.VerifyChain(chain))
	})

	t.Run("stale prev is rejected with chain mismatch", func(t *testing.T) {
		store := NewLedgerStore()
		id := testSessionID(t)

		require.NoError(t, store.Append(ctx, id, entities.ReplayMarker{ID: "1", StateHash: "aaa", TMs: 1}))
		require.NoError(t, store.Append(ctx, id, entities.ReplayMarker{ID: "2", StateHash: "bbb", PrevHash: strPtr("aaa"), TMs: 2}))

		err := store.Append(ctx, id, entities.ReplayMarker{ID: "3", StateHash: "ccc", PrevHash: strPtr("aaa"), TMs: 3})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeHashChainMismatch))

		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "bbb", appErr.Details["head_hash"])

		chain, err := store.List(ctx, id)
		require.NoError(t, err)
		assert.Len(t, chain, 2)
	})

	t.Run("nil prev on non-empty chain is rejected", func(t *testing.T) {
		store := NewLedgerStore()
		id := testSessionID(t)

		require.NoError(t, store.Append(ctx, id, entities.ReplayMarker{ID: "1", StateHash: "aaa", TMs: 1}))

		err := store.Append(ctx, id, entities.ReplayMarker{ID: "2", StateHash: "bbb", TMs: 2})
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeHashChainMismatch))
	})

	t.Run("chains are isolated per session", func(t *testing.T) {
		store := NewLedgerStore()
		idA, err := valueobjects.NewSessionID("sess-a")
		require.NoError(t, err)
		idB, err := valueobjects.NewSessionID("sess-b")
		require.NoError(t, err)

		require.NoError(t, store.Append(ctx, idA, entities.ReplayMarker{ID: "1", StateHash: "aaa", TMs: 1}))

		head, err := store.Head(ctx, idB)
		require.NoError(t, err)
		assert.Nil(t, head)
	})
}

func TestLedgerStoreListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	id := testSessionID(t)

	require.NoError(t, store.Append(ctx, id, entities.ReplayMarker{ID: "1", StateHash: "aaa", TMs: 1}))

	chain, err := store.List(ctx, id)
	require.NoError(t, err)
	chain[0].StateHash = "mutated"

	fresh, err := store.List(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "aaa", fresh[0].StateHash)
}
