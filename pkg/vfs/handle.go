package vfs

import (
	"encoding/binary"
	"fmt"
)

// Handle is the opaque numeric identifier the protocol engine uses in
// place of a grid path. Handles are unique for the lifetime of the server
// process and are never reused; they are NOT stable across restarts.
type Handle uint64

// RootHandle is reserved for the grid root and assigned exactly once
// during initialization.
const RootHandle Handle = 1

// handleSize is the length of the wire form of a handle in bytes.
const handleSize = 8

// Bytes returns the opaque 8-byte big-endian form handed to the protocol
// engine as a file handle.
func (h Handle) Bytes() []byte {
	buf := make([]byte, handleSize)
	binary.BigEndian.PutUint64(buf, uint64(h))
	return buf
}

// String formats the handle for logs.
func (h Handle) String() string {
	return fmt.Sprintf("inode#%d", uint64(h))
}

// HandleFromBytes decodes the opaque wire form produced by Handle.Bytes.
//
// Returns ErrInvalidArgument if the buffer is not exactly 8 bytes.
func HandleFromBytes(buf []byte) (Handle, error) {
	if len(buf) != handleSize {
		return 0, newError(ErrInvalidArgument,
			fmt.Sprintf("file handle must be %d bytes, got %d", handleSize, len(buf)), "")
	}
	return Handle(binary.BigEndian.Uint64(buf)), nil
}
