// Package vfs is the handle/path translation layer between a
// filesystem-protocol engine and a path-addressed data grid.
//
// The protocol engine addresses every object by an opaque numeric handle;
// the grid only understands paths. The VFS facade keeps the two mutually
// derivable through a process-lifetime inode table, and projects grid
// object metadata into the protocol's attribute model.
//
// What the facade does NOT do: wire encoding, request dispatch, retries,
// timeouts. Those belong to the protocol engine and the grid client. There
// is also no cross-operation transaction: a grid mutation and the table
// registration it motivates are two separate steps. If the process dies
// between them the object exists in the grid with no known handle until it
// is rediscovered through a directory listing — a documented inconsistency
// window, not a bug.
package vfs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gridnfs/gridnfs/internal/logger"
	"github.com/gridnfs/gridnfs/pkg/grid"
	"github.com/gridnfs/gridnfs/pkg/identity"
	"github.com/gridnfs/gridnfs/pkg/metrics"
)

// DirEntry is one element of a directory listing.
type DirEntry struct {
	// Name is the final path component of the child
	Name string

	// Handle is the child's inode handle
	Handle Handle

	// Attr is the child's attribute projection
	Attr *Attributes
}

// FsStat reports filesystem-level statistics.
type FsStat struct {
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64

	// ObjectCount is the number of live inode-table entries
	ObjectCount uint64
}

// VFS composes the inode table, the attribute translator and the grid
// client into the protocol-facing facade.
//
// All methods are safe for concurrent invocation from the protocol
// engine's worker goroutines. Grid calls block the calling goroutine; the
// facade inherits the caller's concurrency model and adds no dispatch of
// its own.
type VFS struct {
	grid       grid.Client
	table      *InodeTable
	translator *Translator
	recorder   metrics.Recorder
	rootPath   string
}

// Option configures optional VFS behavior.
type Option func(*VFS)

// WithRecorder attaches a metrics recorder to the facade.
func WithRecorder(r metrics.Recorder) Option {
	return func(v *VFS) { v.recorder = r }
}

// New builds a VFS over the given grid client and identity directory,
// rooted at rootPath.
//
// The root is validated against the grid (it must exist, be a collection
// and be readable) before the inode table is seeded with
// (RootHandle, rootPath). Construction is the only moment the root
// mapping is written.
func New(ctx context.Context, client grid.Client, identities identity.Directory, rootPath string, opts ...Option) (*VFS, error) {
	if client == nil {
		return nil, newError(ErrInvalidArgument, "nil grid client", "")
	}
	if identities == nil {
		return nil, newError(ErrInvalidArgument, "nil identity directory", "")
	}

	table, err := NewInodeTable(rootPath)
	if err != nil {
		return nil, err
	}

	root, err := table.PathOf(RootHandle)
	if err != nil {
		return nil, err
	}

	v := &VFS{
		grid:       client,
		table:      table,
		translator: NewTranslator(identities),
		recorder:   metrics.Nop(),
		rootPath:   root,
	}
	for _, opt := range opts {
		opt(v)
	}

	if err := v.establishRoot(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// establishRoot verifies the configured root against the grid.
func (v *VFS) establishRoot(ctx context.Context) error {
	sess, err := v.acquire(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess)

	info, err := sess.Stat(ctx, v.rootPath)
	if err != nil {
		return translateGridError(err, v.rootPath)
	}
	if info.Kind != grid.KindDirectory {
		return newError(ErrInvalidArgument, "root is not a collection", v.rootPath)
	}

	perms, err := sess.Permissions(ctx, v.rootPath)
	if err != nil {
		return translateGridError(err, v.rootPath)
	}
	if !perms.Read {
		return newError(ErrPermissionDenied, "cannot establish root: not readable", v.rootPath)
	}

	logger.Info("root established at %s as %s", v.rootPath, RootHandle)
	return nil
}

// Root returns the reserved root handle. It is the same value for the
// lifetime of the process.
func (v *VFS) Root() Handle {
	return RootHandle
}

// GetAttributes resolves the handle and projects the object's current grid
// metadata into an attribute record. The record is computed fresh on every
// call.
func (v *VFS) GetAttributes(ctx context.Context, h Handle) (attr *Attributes, err error) {
	defer v.observe("getattr", time.Now(), &err)

	p, err := v.table.PathOf(h)
	if err != nil {
		return nil, err
	}
	logger.Debug("getattr %s -> %s", h, p)

	sess, err := v.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(sess)

	info, err := sess.Stat(ctx, p)
	if err != nil {
		return nil, translateGridError(err, p)
	}

	return v.translator.Translate(ctx, info, h)
}

// Access checks the requested permission mask (user read/write/execute
// bits, see access.go) against the grid and returns the granted subset.
// Granted write implies granted read.
func (v *VFS) Access(ctx context.Context, h Handle, requested uint32) (granted uint32, err error) {
	defer v.observe("access", time.Now(), &err)

	p, err := v.table.PathOf(h)
	if err != nil {
		return 0, err
	}
	logger.Debug("access %s mask=%#o", p, requested)

	sess, err := v.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer closeSession(sess)

	perms, err := sess.Permissions(ctx, p)
	if err != nil {
		return 0, translateGridError(err, p)
	}

	return grantedMask(requested, perms), nil
}

// Create creates a new object of the given kind under the parent
// directory, allocates a handle for it, registers the pair and returns the
// handle.
//
// The owner and mode arguments are accepted but not applied: the grid's
// native permission model is not wired up, and callers must not assume the
// requested mode took effect.
func (v *VFS) Create(ctx context.Context, parent Handle, name string, kind grid.ObjectKind, owner string, mode uint32) (h Handle, err error) {
	defer v.observe("create", time.Now(), &err)

	if err := validateName(name); err != nil {
		return 0, err
	}

	parentPath, err := v.table.PathOf(parent)
	if err != nil {
		return 0, err
	}
	childPath := path.Join(parentPath, name)
	logger.Debug("create %s %s", kind, childPath)

	sess, err := v.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer closeSession(sess)

	if err := sess.Create(ctx, childPath, kind); err != nil {
		return 0, translateGridError(err, childPath)
	}

	h = v.table.Allocate()
	if regErr := v.table.Register(h, childPath); regErr != nil {
		// Handles are never reused and the grid just confirmed the path
		// did not exist, so any collision here means the table or the
		// allocator is broken. Abort loudly.
		return 0, newError(ErrServerFault,
			fmt.Sprintf("cannot register %s after create: %v", h, regErr), childPath)
	}

	v.setOwnershipAndMode(childPath, owner, mode)
	return h, nil
}

// setOwnershipAndMode would apply the requested owner and mode to a newly
// created object. The grid's permission model is not wired up, so it is a
// no-op placeholder.
func (v *VFS) setOwnershipAndMode(childPath, owner string, mode uint32) {
	logger.Debug("skipping ownership/mode application for %s (owner=%q mode=%#o)",
		childPath, owner, mode)
}

// List enumerates the immediate children of the directory behind h.
//
// Children already known to the inode table keep their handle; a child
// seen for the first time gets one allocated and registered on the spot.
// The result is fully materialized before returning, in the grid's
// enumeration order.
func (v *VFS) List(ctx context.Context, h Handle) (entries []DirEntry, err error) {
	defer v.observe("list", time.Now(), &err)

	dirPath, err := v.table.PathOf(h)
	if err != nil {
		return nil, err
	}
	logger.Debug("list %s", dirPath)

	sess, err := v.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(sess)

	children, err := sess.List(ctx, dirPath)
	if err != nil {
		return nil, translateGridError(err, dirPath)
	}

	entries = make([]DirEntry, 0, len(children))
	for _, childPath := range children {
		childHandle, err := v.table.LookupOrRegister(childPath)
		if err != nil {
			return nil, err
		}

		info, err := sess.Stat(ctx, childPath)
		if err != nil {
			return nil, translateGridError(err, childPath)
		}

		attr, err := v.translator.Translate(ctx, info, childHandle)
		if err != nil {
			return nil, err
		}

		entries = append(entries, DirEntry{
			Name:   path.Base(childPath),
			Handle: childHandle,
			Attr:   attr,
		})
	}
	return entries, nil
}

// Statfs reports storage capacity from the grid plus the live inode-table
// entry count.
func (v *VFS) Statfs(ctx context.Context) (stat *FsStat, err error) {
	defer v.observe("statfs", time.Now(), &err)

	sess, err := v.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(sess)

	stats, err := sess.Stats(ctx)
	if err != nil {
		return nil, translateGridError(err, v.rootPath)
	}

	used := uint64(0)
	if stats.TotalBytes > stats.FreeBytes {
		used = stats.TotalBytes - stats.FreeBytes
	}

	return &FsStat{
		TotalBytes:  stats.TotalBytes,
		FreeBytes:   stats.FreeBytes,
		UsedBytes:   used,
		ObjectCount: uint64(v.table.Len()),
	}, nil
}

// acquire obtains a grid session, wrapping acquisition failures as I/O
// errors.
func (v *VFS) acquire(ctx context.Context) (grid.Session, error) {
	sess, err := v.grid.Acquire(ctx)
	if err != nil {
		return nil, newError(ErrIO, fmt.Sprintf("cannot acquire grid session: %v", err), "")
	}
	return sess, nil
}

// closeSession releases a session and eats the error: by the time a close
// fails the operation outcome is already decided, and a close failure must
// not mask it.
func closeSession(sess grid.Session) {
	if err := sess.Close(); err != nil {
		logger.Warn("closing grid session: %v", err)
	}
}

// observe records one completed operation.
func (v *VFS) observe(op string, start time.Time, err *error) {
	code := ""
	if *err != nil {
		code = CodeOf(*err).String()
	}
	v.recorder.Observe(op, time.Since(start), code)
}

// validateName rejects names that cannot be a single path component.
func validateName(name string) error {
	switch {
	case name == "":
		return newError(ErrInvalidArgument, "empty name", "")
	case name == "." || name == "..":
		return newError(ErrInvalidArgument, "reserved name", name)
	case strings.Contains(name, "/"):
		return newError(ErrInvalidArgument, "name contains a path separator", name)
	default:
		return nil
	}
}

// translateGridError maps grid sentinel errors 1:1 onto translation-layer
// error kinds; anything unrecognized is an I/O failure. The facade never
// retries: retry policy belongs to the grid client or the protocol engine.
func translateGridError(err error, p string) error {
	switch {
	case errors.Is(err, grid.ErrNotFound):
		return newError(ErrNotFound, "no such object", p)
	case errors.Is(err, grid.ErrAlreadyExists):
		return newError(ErrAlreadyExists, "object already exists", p)
	case errors.Is(err, grid.ErrPermissionDenied):
		return newError(ErrPermissionDenied, "permission denied", p)
	case errors.Is(err, grid.ErrNotSupported):
		return newError(ErrNotSupported, "operation not supported by grid", p)
	default:
		return newError(ErrIO, fmt.Sprintf("grid failure: %v", err), p)
	}
}
