package vfs

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
)

// InodeTable is the bidirectional, concurrency-safe mapping between
// numeric handles and grid paths.
//
// Invariants:
//   - the mapping is a bijection: PathOf(HandleOf(p)) == p for every
//     registered path and HandleOf(PathOf(h)) == h for every registered
//     handle;
//   - no path is registered under two handles and no handle under two
//     paths;
//   - entries are never removed; the table is process-memory-only and
//     rebuilt (re-seeded with the root at handle 1) on every restart.
//
// Storage Model:
// Two lock-free maps, one per direction, with per-key atomic insert
// semantics (LoadOrStore). Register writes both directions as one logical
// unit: a conflict on the second insert rolls back the first before the
// error is returned, so a partial mapping is never observable. Operations
// on unrelated handles and paths do not contend.
//
// Thread Safety:
// All methods are safe for arbitrary concurrent invocation; callers need
// no external locking.
type InodeTable struct {
	// inodeToPath maps Handle -> normalized path (string)
	inodeToPath sync.Map

	// pathToInode maps normalized path (string) -> Handle
	pathToInode sync.Map

	// lastID is the last handle value issued by Allocate. Seeded to 1 so
	// the first allocation returns 2; 1 is reserved for the root.
	lastID atomic.Uint64

	// size counts registered entries (for statistics reporting)
	size atomic.Int64
}

// NewInodeTable creates a table seeded with the root mapping
// (RootHandle, rootPath).
//
// rootPath must be an absolute grid path; it is normalized before
// registration.
func NewInodeTable(rootPath string) (*InodeTable, error) {
	root, err := NormalizePath(rootPath)
	if err != nil {
		return nil, err
	}

	t := &InodeTable{}
	t.lastID.Store(uint64(RootHandle))
	t.inodeToPath.Store(RootHandle, root)
	t.pathToInode.Store(root, RootHandle)
	t.size.Store(1)
	return t, nil
}

// Allocate issues a handle strictly greater than any previously issued
// value, starting at 2. Safe under unbounded concurrent calls; no two
// calls ever return the same value. Exhaustion of the 64-bit space is not
// handled.
func (t *InodeTable) Allocate() Handle {
	return Handle(t.lastID.Add(1))
}

// Register inserts the (handle, path) pair into both directions as one
// logical atomic unit.
//
// Returns ErrAlreadyMapped if either the handle or the normalized path is
// already present; on that failure no partial state is left behind.
// A rollback that itself fails is ErrServerFault: the table is corrupted
// and the operation must abort loudly.
func (t *InodeTable) Register(h Handle, p string) error {
	if h == 0 {
		return newError(ErrInvalidArgument, "zero handle", p)
	}

	normalized, err := NormalizePath(p)
	if err != nil {
		return err
	}

	if _, loaded := t.inodeToPath.LoadOrStore(h, normalized); loaded {
		return newError(ErrAlreadyMapped, fmt.Sprintf("%s is already mapped", h), normalized)
	}

	if _, loaded := t.pathToInode.LoadOrStore(normalized, h); loaded {
		// The path lost to an earlier registration: undo the first insert
		// before reporting the conflict.
		if !t.inodeToPath.CompareAndDelete(h, normalized) {
			return newError(ErrServerFault,
				fmt.Sprintf("cannot map %s: rollback failed", h), normalized)
		}
		return newError(ErrAlreadyMapped, "path is already mapped", normalized)
	}

	t.size.Add(1)
	return nil
}

// PathOf resolves a handle to its registered grid path.
//
// Returns ErrNotFound if the handle is unknown.
func (t *InodeTable) PathOf(h Handle) (string, error) {
	v, ok := t.inodeToPath.Load(h)
	if !ok {
		return "", newError(ErrNotFound, fmt.Sprintf("%s is not mapped", h), "")
	}
	return v.(string), nil
}

// HandleOf returns the handle registered for the (normalized) path.
// Absence is not an error: callers use the second return value to decide
// whether a fresh handle must be allocated.
func (t *InodeTable) HandleOf(p string) (Handle, bool) {
	normalized, err := NormalizePath(p)
	if err != nil {
		return 0, false
	}

	v, ok := t.pathToInode.Load(normalized)
	if !ok {
		return 0, false
	}
	return v.(Handle), true
}

// LookupOrRegister returns the handle for path, allocating and registering
// a fresh one if the path has never been seen. Concurrent calls for the
// same path converge on a single handle; a handle allocated by the losing
// side is discarded, never reused.
func (t *InodeTable) LookupOrRegister(p string) (Handle, error) {
	normalized, err := NormalizePath(p)
	if err != nil {
		return 0, err
	}

	for {
		if h, ok := t.HandleOf(normalized); ok {
			return h, nil
		}

		h := t.Allocate()
		err := t.Register(h, normalized)
		if err == nil {
			return h, nil
		}
		if CodeOf(err) != ErrAlreadyMapped {
			return 0, err
		}

		// A conflict on a freshly allocated handle can only mean the path
		// direction raced; entries are never removed, so the winner must
		// now be visible. Anything else is an allocator bug.
		if _, ok := t.HandleOf(normalized); !ok {
			return 0, newError(ErrServerFault,
				fmt.Sprintf("freshly allocated %s collided", h), normalized)
		}
	}
}

// Len reports the number of registered entries.
func (t *InodeTable) Len() int {
	return int(t.size.Load())
}

// NormalizePath cleans a grid path into the canonical form the table
// operates on: absolute, no ".." or "." segments, no trailing slash
// except for the root itself. Two spellings that normalize identically
// map to the same handle.
//
// Returns ErrInvalidArgument for empty or relative paths.
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", newError(ErrInvalidArgument, "empty path", "")
	}
	if !strings.HasPrefix(p, "/") {
		return "", newError(ErrInvalidArgument, "path is not absolute", p)
	}
	return path.Clean(p), nil
}
