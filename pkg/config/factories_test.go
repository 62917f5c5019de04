package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateGridClient_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &GridConfig{
		Type:   "memory",
		Root:   "/tempZone/home/rods",
		Memory: map[string]any{},
	}

	client, err := CreateGridClient(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create memory grid client: %v", err)
	}

	if client == nil {
		t.Fatal("Expected non-nil client")
	}

	// The configured root must be resolvable through a session.
	sess, err := client.Acquire(ctx)
	if err != nil {
		t.Fatalf("Failed to acquire session: %v", err)
	}
	defer func() { _ = sess.Close() }()

	info, err := sess.Stat(ctx, "/tempZone/home/rods")
	if err != nil {
		t.Fatalf("Failed to stat root: %v", err)
	}
	if info.Kind.String() != "directory" {
		t.Errorf("Expected root to be a directory, got %v", info.Kind)
	}
}

func TestCreateGridClient_MemoryWithOwner(t *testing.T) {
	ctx := context.Background()
	cfg := &GridConfig{
		Type: "memory",
		Root: "/",
		Memory: map[string]any{
			"owner_name": "alice",
			"owner_zone": "demoZone",
		},
	}

	client, err := CreateGridClient(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create memory grid client: %v", err)
	}

	sess, err := client.Acquire(ctx)
	if err != nil {
		t.Fatalf("Failed to acquire session: %v", err)
	}
	defer func() { _ = sess.Close() }()

	info, err := sess.Stat(ctx, "/")
	if err != nil {
		t.Fatalf("Failed to stat root: %v", err)
	}
	if info.OwnerName != "alice" || info.OwnerZone != "demoZone" {
		t.Errorf("Expected owner alice#demoZone, got %s#%s", info.OwnerName, info.OwnerZone)
	}
}

func TestCreateGridClient_S3MissingBucket(t *testing.T) {
	ctx := context.Background()
	cfg := &GridConfig{
		Type: "s3",
		Root: "/",
		S3: map[string]any{
			"region": "us-east-1",
		},
	}

	_, err := CreateGridClient(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for missing bucket")
	}
	if !strings.Contains(err.Error(), "bucket is required") {
		t.Errorf("Expected 'bucket is required' error, got: %v", err)
	}
}

func TestCreateGridClient_UnknownType(t *testing.T) {
	ctx := context.Background()
	cfg := &GridConfig{
		Type: "ftp",
	}

	_, err := CreateGridClient(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error for unknown store type")
	}
	if !strings.Contains(err.Error(), "unknown grid store type") {
		t.Errorf("Expected 'unknown grid store type' error, got: %v", err)
	}
}

func TestCreateIdentityDirectory_Static(t *testing.T) {
	cfg := &IdentityConfig{
		Type:   "static",
		Static: map[string]string{"rods#tempZone": "10011"},
	}

	dir, closer, err := CreateIdentityDirectory(cfg)
	if err != nil {
		t.Fatalf("Failed to create static identity directory: %v", err)
	}
	defer func() { _ = closer() }()

	id, err := dir.Lookup(context.Background(), "rods", "tempZone")
	if err != nil {
		t.Fatalf("Failed to look up principal: %v", err)
	}
	if id != "10011" {
		t.Errorf("Expected id '10011', got %q", id)
	}
}

func TestCreateIdentityDirectory_Badger(t *testing.T) {
	cfg := &IdentityConfig{
		Type: "badger",
		Badger: map[string]any{
			"path": filepath.Join(t.TempDir(), "identity"),
		},
	}

	dir, closer, err := CreateIdentityDirectory(cfg)
	if err != nil {
		t.Fatalf("Failed to create badger identity registry: %v", err)
	}
	defer func() { _ = closer() }()

	id, err := dir.Lookup(context.Background(), "rods", "tempZone")
	if err != nil {
		t.Fatalf("Failed to look up principal: %v", err)
	}
	if id == "" {
		t.Error("Expected a non-empty assigned id")
	}
}

func TestCreateIdentityDirectory_BadgerMissingPath(t *testing.T) {
	cfg := &IdentityConfig{
		Type:   "badger",
		Badger: map[string]any{},
	}

	_, _, err := CreateIdentityDirectory(cfg)
	if err == nil {
		t.Fatal("Expected error for missing path")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Expected 'path is required' error, got: %v", err)
	}
}

func TestCreateIdentityDirectory_UnknownType(t *testing.T) {
	cfg := &IdentityConfig{
		Type: "ldap",
	}

	_, _, err := CreateIdentityDirectory(cfg)
	if err == nil {
		t.Fatal("Expected error for unknown directory type")
	}
	if !strings.Contains(err.Error(), "unknown identity directory type") {
		t.Errorf("Expected 'unknown identity directory type' error, got: %v", err)
	}
}
