package vfs

import "github.com/gridnfs/gridnfs/pkg/grid"

// Permission mask bits for the "user" class. Group and other classes are
// ignored: each connection maps to a single grid account, so there is no
// second identity to check against.
const (
	MaskUserExecute uint32 = 0o100
	MaskUserWrite   uint32 = 0o200
	MaskUserRead    uint32 = 0o400
)

// grantedMask computes the subset of the requested mask the grid actually
// grants, given the probed permissions.
//
// Write implies read: when write is requested and granted, a requested
// read bit is granted too even if the grid's own read check would deny
// it. The asymmetry is intentional and load-bearing; clients that can
// modify an object must be able to read it back.
func grantedMask(requested uint32, perms grid.Permissions) uint32 {
	var granted uint32

	if requested&MaskUserExecute != 0 && perms.Execute {
		granted |= MaskUserExecute
	}

	canWrite := requested&MaskUserWrite != 0 && perms.Write
	if canWrite {
		granted |= MaskUserWrite
	}

	if requested&MaskUserRead != 0 {
		if canWrite || perms.Read {
			granted |= MaskUserRead
		}
	}

	return granted
}
