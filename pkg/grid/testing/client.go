package testing

import (
	"context"
	"errors"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridnfs/gridnfs/pkg/grid"
)

// acquire opens a session and registers its release with the test
// cleanup.
func acquire(t *testing.T, client grid.Client) grid.Session {
	t.Helper()
	sess, err := client.Acquire(testContext())
	require.NoError(t, err, "Acquire should succeed")
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

// mustCreate creates an object and fails the test if it errors.
func mustCreate(t *testing.T, sess grid.Session, p string, kind grid.ObjectKind) {
	t.Helper()
	err := sess.Create(testContext(), p, kind)
	require.NoError(t, err, "Create should succeed for %s", p)
}

// ============================================================================
// Stat Tests
// ============================================================================

// RunStatTests executes the object metadata tests.
func (suite *ClientTestSuite) RunStatTests(t *testing.T) {
	t.Run("Stat_Root", suite.testStatRoot)
	t.Run("Stat_Missing", suite.testStatMissing)
	t.Run("Stat_File", suite.testStatFile)
	t.Run("Stat_CancelledContext", suite.testStatCancelledContext)
}

func (suite *ClientTestSuite) testStatRoot(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	info, err := sess.Stat(testContext(), root)
	require.NoError(t, err)

	assert.Equal(t, root, info.Path)
	assert.Equal(t, grid.KindDirectory, info.Kind)
	assert.NotEmpty(t, info.OwnerName, "every object must report an owner")
}

func (suite *ClientTestSuite) testStatMissing(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	_, err := sess.Stat(testContext(), path.Join(root, "does-not-exist"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func (suite *ClientTestSuite) testStatFile(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	p := path.Join(root, "stat-file")
	mustCreate(t, sess, p, grid.KindFile)

	info, err := sess.Stat(testContext(), p)
	require.NoError(t, err)

	assert.Equal(t, grid.KindFile, info.Kind)
	assert.Equal(t, uint64(0), info.Size, "a freshly created object is empty")
	assert.False(t, info.ModifiedAt.IsZero(), "modification time must be set")
	assert.False(t, info.CreatedAt.IsZero(), "creation time must be set")
}

func (suite *ClientTestSuite) testStatCancelledContext(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sess.Stat(ctx, root)
	require.Error(t, err)
}

// ============================================================================
// Create Tests
// ============================================================================

// RunCreateTests executes the object creation tests.
func (suite *ClientTestSuite) RunCreateTests(t *testing.T) {
	t.Run("Create_File", suite.testCreateFile)
	t.Run("Create_Directory", suite.testCreateDirectory)
	t.Run("Create_Existing", suite.testCreateExisting)
	t.Run("Create_MissingParent", suite.testCreateMissingParent)
}

func (suite *ClientTestSuite) testCreateFile(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	p := path.Join(root, "created-file")
	mustCreate(t, sess, p, grid.KindFile)

	info, err := sess.Stat(testContext(), p)
	require.NoError(t, err)
	assert.Equal(t, grid.KindFile, info.Kind)
}

func (suite *ClientTestSuite) testCreateDirectory(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	p := path.Join(root, "created-dir")
	mustCreate(t, sess, p, grid.KindDirectory)

	info, err := sess.Stat(testContext(), p)
	require.NoError(t, err)
	assert.Equal(t, grid.KindDirectory, info.Kind)

	// The new collection accepts children.
	mustCreate(t, sess, path.Join(p, "nested"), grid.KindFile)
}

func (suite *ClientTestSuite) testCreateExisting(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	p := path.Join(root, "dup")
	mustCreate(t, sess, p, grid.KindFile)

	err := sess.Create(testContext(), p, grid.KindFile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrAlreadyExists), "expected ErrAlreadyExists, got %v", err)
}

func (suite *ClientTestSuite) testCreateMissingParent(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	err := sess.Create(testContext(), path.Join(root, "no-such-dir", "file"), grid.KindFile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrNotFound), "expected ErrNotFound, got %v", err)
}

// ============================================================================
// List Tests
// ============================================================================

// RunListTests executes the collection enumeration tests.
func (suite *ClientTestSuite) RunListTests(t *testing.T) {
	t.Run("List_Empty", suite.testListEmpty)
	t.Run("List_Children", suite.testListChildren)
	t.Run("List_Missing", suite.testListMissing)
}

func (suite *ClientTestSuite) testListEmpty(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	p := path.Join(root, "empty-dir")
	mustCreate(t, sess, p, grid.KindDirectory)

	children, err := sess.List(testContext(), p)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func (suite *ClientTestSuite) testListChildren(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	dir := path.Join(root, "listing")
	mustCreate(t, sess, dir, grid.KindDirectory)
	mustCreate(t, sess, path.Join(dir, "a"), grid.KindFile)
	mustCreate(t, sess, path.Join(dir, "b"), grid.KindFile)
	mustCreate(t, sess, path.Join(dir, "sub"), grid.KindDirectory)

	children, err := sess.List(testContext(), dir)
	require.NoError(t, err)
	require.Len(t, children, 3)

	// Children come back as full paths, and every one resolves.
	for _, child := range children {
		assert.Equal(t, dir, path.Dir(child), "child %s is not under %s", child, dir)

		_, err := sess.Stat(testContext(), child)
		assert.NoError(t, err, "listed child %s must stat", child)
	}
}

func (suite *ClientTestSuite) testListMissing(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	_, err := sess.List(testContext(), path.Join(root, "no-such-dir"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrNotFound), "expected ErrNotFound, got %v", err)
}

// ============================================================================
// Permission Tests
// ============================================================================

// RunPermissionTests executes the permission probe tests.
func (suite *ClientTestSuite) RunPermissionTests(t *testing.T) {
	t.Run("Permissions_Root", suite.testPermissionsRoot)
	t.Run("Permissions_Missing", suite.testPermissionsMissing)
}

func (suite *ClientTestSuite) testPermissionsRoot(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	perms, err := sess.Permissions(testContext(), root)
	require.NoError(t, err)
	assert.True(t, perms.Read, "the root collection must be readable")
}

func (suite *ClientTestSuite) testPermissionsMissing(t *testing.T) {
	client, root := suite.NewClient()
	sess := acquire(t, client)

	_, err := sess.Permissions(testContext(), path.Join(root, "does-not-exist"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrNotFound), "expected ErrNotFound, got %v", err)
}

// ============================================================================
// Stats Tests
// ============================================================================

// RunStatsTests executes the storage statistics tests.
func (suite *ClientTestSuite) RunStatsTests(t *testing.T) {
	t.Run("Stats_Reported", suite.testStatsReported)
}

func (suite *ClientTestSuite) testStatsReported(t *testing.T) {
	client, _ := suite.NewClient()
	sess := acquire(t, client)

	stats, err := sess.Stats(testContext())
	require.NoError(t, err)

	assert.Greater(t, stats.TotalBytes, uint64(0))
	assert.LessOrEqual(t, stats.FreeBytes, stats.TotalBytes)
}

// ============================================================================
// Session Tests
// ============================================================================

// RunSessionTests executes the session lifecycle tests.
func (suite *ClientTestSuite) RunSessionTests(t *testing.T) {
	t.Run("Session_UseAfterClose", suite.testSessionUseAfterClose)
	t.Run("Session_Independent", suite.testSessionIndependent)
}

func (suite *ClientTestSuite) testSessionUseAfterClose(t *testing.T) {
	client, root := suite.NewClient()

	sess, err := client.Acquire(testContext())
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	_, err = sess.Stat(testContext(), root)
	require.Error(t, err, "a closed session must refuse operations")
}

func (suite *ClientTestSuite) testSessionIndependent(t *testing.T) {
	client, root := suite.NewClient()

	first := acquire(t, client)
	second := acquire(t, client)

	p := path.Join(root, "cross-session")
	mustCreate(t, first, p, grid.KindFile)

	// Objects created through one session are visible through another.
	_, err := second.Stat(testContext(), p)
	require.NoError(t, err)
}
