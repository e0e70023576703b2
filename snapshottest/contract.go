// Package snapshottest provides the contract suite every SnapshotStore
// implementation must satisfy, regardless of physical encoding.
package snapshottest

import (
	"testing"

	"github.com/leohentschker/vslint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract exercises the shared SnapshotStore contract against a
// fresh store per subtest.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) vslint.SnapshotStore) {
	t.Helper()

	t.Run("read of a missing record returns nil, not an error", func(t *testing.T) {
		store := newStore(t)

		record, err := store.Read("never-written")

		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("write then read round-trips the record exactly", func(t *testing.T) {
		store := newStore(t)
		in := &vslint.SnapshotRecord{
			ContentHash: "abc123",
			FailedRules: []string{"text-too-wide", "text-too-small"},
			Pass:        false,
			Explanation: "The headline wraps awkwardly.\n\nBody copy is below 12px.",
		}

		require.NoError(t, store.Write("button-test.go-test-button", in))
		out, err := store.Read("button-test.go-test-button")

		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("round-trips a passing record with empty failed rules", func(t *testing.T) {
		store := newStore(t)
		in := &vslint.SnapshotRecord{
			ContentHash: "abc123",
			FailedRules: []string{},
			Pass:        true,
		}

		require.NoError(t, store.Write("passing", in))
		out, err := store.Read("passing")

		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("write fully replaces the prior record", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Write("replaced", &vslint.SnapshotRecord{
			ContentHash: "old",
			FailedRules: []string{"rule-a"},
			Pass:        false,
			Explanation: "old explanation",
		}))

		require.NoError(t, store.Write("replaced", &vslint.SnapshotRecord{
			ContentHash: "new",
			FailedRules: []string{},
			Pass:        true,
		}))
		out, err := store.Read("replaced")

		require.NoError(t, err)
		assert.Equal(t, "new", out.ContentHash)
		assert.True(t, out.Pass)
		assert.Empty(t, out.FailedRules)
		assert.Empty(t, out.Explanation)
	})

	t.Run("writing an identical record is a no-op", func(t *testing.T) {
		store := newStore(t)
		record := &vslint.SnapshotRecord{ContentHash: "abc", FailedRules: []string{}, Pass: true}

		require.NoError(t, store.Write("idempotent", record))
		require.NoError(t, store.Write("idempotent", record))
		out, err := store.Read("idempotent")

		require.NoError(t, err)
		assert.Equal(t, record, out)
	})

	t.Run("identifiers partition records", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Write("first", &vslint.SnapshotRecord{ContentHash: "a", FailedRules: []string{}, Pass: true}))
		require.NoError(t, store.Write("second", &vslint.SnapshotRecord{ContentHash: "b", FailedRules: []string{}, Pass: false}))

		first, err := store.Read("first")
		require.NoError(t, err)
		second, err := store.Read("second")
		require.NoError(t, err)

		assert.Equal(t, "a", first.ContentHash)
		assert.Equal(t, "b", second.ContentHash)
	})
}
