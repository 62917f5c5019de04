package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridnfs/gridnfs/pkg/grid"
	gridtesting "github.com/gridnfs/gridnfs/pkg/grid/testing"
)

// TestMemoryGridStore runs the complete grid.Client test suite against
// the in-memory implementation.
func TestMemoryGridStore(t *testing.T) {
	suite := &gridtesting.ClientTestSuite{
		NewClient: func() (grid.Client, string) {
			store, err := NewStore("/tempZone/home/rods")
			if err != nil {
				t.Fatalf("Failed to create memory store: %v", err)
			}
			return store, "/tempZone/home/rods"
		},
	}

	suite.Run(t)
}

func TestNewStoreCreatesAncestors(t *testing.T) {
	store, err := NewStore("/tempZone/home/rods")
	require.NoError(t, err)

	sess, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	for _, p := range []string{"/", "/tempZone", "/tempZone/home", "/tempZone/home/rods"} {
		info, err := sess.Stat(context.Background(), p)
		require.NoError(t, err, "ancestor %s must exist", p)
		assert.Equal(t, grid.KindDirectory, info.Kind)
	}
}

func TestNewStoreRejectsRelativeRoot(t *testing.T) {
	_, err := NewStore("tempZone/home")
	require.Error(t, err)
}

func TestOwnerOption(t *testing.T) {
	store, err := NewStore("/data", WithOwner("alice", "demoZone"))
	require.NoError(t, err)

	sess, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	info, err := sess.Stat(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, "alice", info.OwnerName)
	assert.Equal(t, "demoZone", info.OwnerZone)
}

func TestCapacityOption(t *testing.T) {
	store, err := NewStore("/data", WithCapacity(5000))
	require.NoError(t, err)
	require.NoError(t, store.PutFile("/data/file", 1500))

	sess, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	stats, err := sess.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), stats.TotalBytes)
	assert.Equal(t, uint64(3500), stats.FreeBytes)
}

func TestSeedingHelpers(t *testing.T) {
	store, err := NewStore("/data")
	require.NoError(t, err)

	require.NoError(t, store.PutFile("/data/sub/file.bin", 42))
	require.NoError(t, store.Mkdir("/data/empty"))

	sess, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	// PutFile creates missing ancestor collections.
	info, err := sess.Stat(context.Background(), "/data/sub")
	require.NoError(t, err)
	assert.Equal(t, grid.KindDirectory, info.Kind)

	info, err = sess.Stat(context.Background(), "/data/sub/file.bin")
	require.NoError(t, err)
	assert.Equal(t, grid.KindFile, info.Kind)
	assert.Equal(t, uint64(42), info.Size)

	// Duplicate seeds are rejected.
	err = store.PutFile("/data/sub/file.bin", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrAlreadyExists))

	// Mkdir on an existing collection is idempotent.
	require.NoError(t, store.Mkdir("/data/empty"))
}

func TestSetPermissionsMissingPath(t *testing.T) {
	store, err := NewStore("/data")
	require.NoError(t, err)

	err = store.SetPermissions("/data/ghost", grid.Permissions{Read: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrNotFound))
}

func TestSessionAccounting(t *testing.T) {
	store, err := NewStore("/data")
	require.NoError(t, err)
	assert.Equal(t, 0, store.OpenSessions())

	first, err := store.Acquire(context.Background())
	require.NoError(t, err)
	second, err := store.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.OpenSessions())

	require.NoError(t, first.Close())
	assert.Equal(t, 1, store.OpenSessions())

	require.NoError(t, second.Close())
	assert.Equal(t, 0, store.OpenSessions())

	// Double close is an error, not a silent underflow.
	require.Error(t, second.Close())
}

func TestFaultInjectionIsOneShot(t *testing.T) {
	store, err := NewStore("/data")
	require.NoError(t, err)

	sess, err := store.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	store.InjectFault("stat", grid.ErrPermissionDenied)

	_, err = sess.Stat(context.Background(), "/data")
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrPermissionDenied))

	// The fault fires exactly once.
	_, err = sess.Stat(context.Background(), "/data")
	require.NoError(t, err)
}

func TestAcquireCancelledContext(t *testing.T) {
	store, err := NewStore("/data")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, store.OpenSessions())
}
