package vfs

import "errors"

// Error represents a domain error from the translation layer.
//
// These are business logic errors (unknown handle, path collision,
// permission denied) as opposed to infrastructure errors. The protocol
// engine translates Code to its wire-level status codes.
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the grid path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a translation-layer error.
type ErrorCode int

const (
	// ErrNotFound indicates the handle is unknown to the inode table or
	// the grid reports no object at the resolved path
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates an object already exists at the target path
	ErrAlreadyExists

	// ErrAlreadyMapped indicates the handle or the normalized path is
	// already present in the inode table
	ErrAlreadyMapped

	// ErrPermissionDenied indicates the grid refused the operation
	ErrPermissionDenied

	// ErrInvalidArgument indicates malformed input to a public operation,
	// detected before any grid call
	ErrInvalidArgument

	// ErrIO indicates a grid communication or translation failure
	ErrIO

	// ErrNotSupported indicates the grid store cannot perform the operation
	ErrNotSupported

	// ErrServerFault indicates an internal consistency violation, such as
	// a collision on a freshly allocated handle or a failed rollback.
	// Operations that hit it must abort loudly; there is no recovery.
	ErrServerFault
)

// String returns the name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyExists:
		return "already_exists"
	case ErrAlreadyMapped:
		return "already_mapped"
	case ErrPermissionDenied:
		return "permission_denied"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrIO:
		return "io_error"
	case ErrNotSupported:
		return "not_supported"
	case ErrServerFault:
		return "server_fault"
	default:
		return "unknown"
	}
}

// CodeOf extracts the ErrorCode from err, or ErrIO if err is not a
// translation-layer error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrIO
}

func newError(code ErrorCode, message, path string) *Error {
	return &Error{Code: code, Message: message, Path: path}
}
