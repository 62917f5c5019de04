package grid

import "errors"

// Sentinel errors reported by grid stores.
//
// Store implementations wrap these with %w so that callers can classify
// failures with errors.Is without depending on store-specific error types.
// Any error that does not match one of these sentinels is treated as a
// generic I/O failure by the translation layer.
var (
	// ErrNotFound indicates the path does not exist in the grid
	ErrNotFound = errors.New("grid: object not found")

	// ErrAlreadyExists indicates an object already exists at the path
	ErrAlreadyExists = errors.New("grid: object already exists")

	// ErrPermissionDenied indicates the grid denied the operation
	ErrPermissionDenied = errors.New("grid: permission denied")

	// ErrNotSupported indicates the store cannot perform the operation
	ErrNotSupported = errors.New("grid: operation not supported")
)
