package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLookup(t *testing.T) {
	dir := NewStatic(map[string]string{
		"alice#tempZone": "1001",
		"bob#tempZone":   "1002",
	})

	ctx := context.Background()

	id, err := dir.Lookup(ctx, "alice", "tempZone")
	require.NoError(t, err)
	assert.Equal(t, "1001", id)

	id, err = dir.Lookup(ctx, "bob", "tempZone")
	require.NoError(t, err)
	assert.Equal(t, "1002", id)
}

func TestStaticLookupUnknownPrincipal(t *testing.T) {
	dir := NewStatic(map[string]string{"alice#tempZone": "1001"})

	_, err := dir.Lookup(context.Background(), "mallory", "tempZone")
	assert.ErrorIs(t, err, ErrUnknownPrincipal)

	// Same owner, different zone is a different principal.
	_, err = dir.Lookup(context.Background(), "alice", "otherZone")
	assert.ErrorIs(t, err, ErrUnknownPrincipal)
}

func TestStaticCopiesInput(t *testing.T) {
	src := map[string]string{"alice#tempZone": "1001"}
	dir := NewStatic(src)

	// Mutating the source map must not affect the directory.
	src["alice#tempZone"] = "9999"

	id, err := dir.Lookup(context.Background(), "alice", "tempZone")
	require.NoError(t, err)
	assert.Equal(t, "1001", id)
}

func TestStaticLookupCancelledContext(t *testing.T) {
	dir := NewStatic(map[string]string{"alice#tempZone": "1001"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dir.Lookup(ctx, "alice", "tempZone")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrincipal(t *testing.T) {
	assert.Equal(t, "alice#tempZone", Principal("alice", "tempZone"))
	assert.Equal(t, "#", Principal("", ""))
}
