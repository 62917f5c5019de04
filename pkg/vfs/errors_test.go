package vfs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	withPath := newError(ErrNotFound, "no such object", "/tempZone/home/rods/x")
	assert.Equal(t, "no such object: /tempZone/home/rods/x", withPath.Error())

	withoutPath := newError(ErrInvalidArgument, "empty name", "")
	assert.Equal(t, "empty name", withoutPath.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrNotFound, CodeOf(newError(ErrNotFound, "x", "")))
	assert.Equal(t, ErrAlreadyMapped, CodeOf(newError(ErrAlreadyMapped, "x", "")))

	// Wrapped translation errors still classify.
	wrapped := fmt.Errorf("operation failed: %w", newError(ErrPermissionDenied, "denied", "/p"))
	assert.Equal(t, ErrPermissionDenied, CodeOf(wrapped))

	// Foreign errors collapse to I/O.
	assert.Equal(t, ErrIO, CodeOf(errors.New("something else")))
}

func TestErrorCodeNames(t *testing.T) {
	names := map[ErrorCode]string{
		ErrNotFound:         "not_found",
		ErrAlreadyExists:    "already_exists",
		ErrAlreadyMapped:    "already_mapped",
		ErrPermissionDenied: "permission_denied",
		ErrInvalidArgument:  "invalid_argument",
		ErrIO:               "io_error",
		ErrNotSupported:     "not_supported",
		ErrServerFault:      "server_fault",
	}

	for code, want := range names {
		assert.Equal(t, want, code.String())
	}
	assert.Equal(t, "unknown", ErrorCode(999).String())
}
