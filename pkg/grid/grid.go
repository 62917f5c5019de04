// Package grid abstracts a remote, path-addressed data-grid storage backend.
//
// The grid only understands absolute paths. It knows nothing about file
// handles, inode numbers or any protocol-facing concept; that translation
// lives entirely in pkg/vfs. Implementations are expected to be remote
// (every call may block on the network), so all operations take a
// context.Context and report failures with the sentinel errors in errors.go.
package grid

import "context"

// Client is a factory for grid sessions.
//
// Grid connections are a limited, leak-prone resource. Callers acquire a
// session per logical operation and must release it on every exit path:
//
//	sess, err := client.Acquire(ctx)
//	if err != nil { ... }
//	defer sess.Close()
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Client interface {
	// Acquire obtains a session bound to the connected grid account.
	Acquire(ctx context.Context) (Session, error)
}

// Session is a scoped connection to the grid.
//
// A session is NOT safe for concurrent use; each goroutine acquires its
// own. Close releases the underlying connection resource and must be
// called exactly once, including on error paths.
type Session interface {
	// Stat returns metadata for the object at path.
	//
	// Returns ErrNotFound if no object exists at path.
	Stat(ctx context.Context, path string) (*ObjectInfo, error)

	// Permissions probes the read, write and execute rights the connected
	// account holds on path.
	//
	// Returns ErrNotFound if no object exists at path.
	Permissions(ctx context.Context, path string) (Permissions, error)

	// Create creates a new object of the given kind at path.
	//
	// Returns ErrAlreadyExists if an object is already present,
	// ErrPermissionDenied if the grid refuses the mutation, or a generic
	// error for any other failure. The parent collection must exist.
	Create(ctx context.Context, path string, kind ObjectKind) error

	// List enumerates the immediate children of the collection at path
	// and returns their absolute paths, in backend enumeration order.
	//
	// Returns ErrNotFound if path does not exist.
	List(ctx context.Context, path string) ([]string, error)

	// Stats reports capacity information for the store behind the grid.
	Stats(ctx context.Context) (StorageStats, error)

	// Close releases the session's connection resource.
	Close() error
}
