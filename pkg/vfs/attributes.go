package vfs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gridnfs/gridnfs/pkg/grid"
	"github.com/gridnfs/gridnfs/pkg/identity"
)

// Attributes is the protocol-facing projection of a grid object's
// metadata. It is derived fresh on every query and never cached or stored
// in the inode table.
type Attributes struct {
	// Handle is the inode handle the attributes were queried through
	Handle Handle

	// FileID equals the handle's numeric value
	FileID uint64

	// Kind distinguishes files from directories
	Kind grid.ObjectKind

	// Mode carries the user permission bits (see access.go). The grid's
	// native ACLs are not projected: a fixed readable/writable pattern is
	// returned for every object. A grid-ACL-aware translator can be
	// substituted without changing callers.
	Mode uint32

	// NLink is reported as zero: hard-link counting is not implemented
	NLink uint32

	// UID is the numeric identity resolved from the grid owner principal
	UID uint32

	// GID is fixed to 0: the grid has no group concept
	GID uint32

	// Size is the object size in bytes
	Size uint64

	// ATime mirrors MTime: the grid does not track access time
	ATime time.Time

	// MTime is the grid modification time
	MTime time.Time

	// CTime is the grid creation time
	CTime time.Time

	// Dev and Rdev carry the adapter's fixed device number
	Dev  uint32
	Rdev uint32

	// Generation is the modification time in Unix milliseconds, so any
	// backend-side change bumps it
	Generation uint64
}

// deviceNumber is the fixed device id reported for every object; the
// adapter fronts exactly one grid.
const deviceNumber = 17

// defaultMode is the fixed permission pattern projected for every object.
const defaultMode = MaskUserRead | MaskUserWrite

// sentinel group id: the grid has no groups
const noGroup = 0

// Translator shapes grid object metadata into the protocol's attribute
// model, resolving the owner principal to a numeric identity through the
// identity directory.
type Translator struct {
	identities identity.Directory
}

// NewTranslator creates a translator backed by the given directory.
func NewTranslator(identities identity.Directory) *Translator {
	return &Translator{identities: identities}
}

// Translate produces the attribute record for info, queried through h.
//
// Failures to resolve the owner principal, and malformed numeric
// identities in the directory, surface as ErrIO: they are grid-catalog
// problems, not caller mistakes.
func (tr *Translator) Translate(ctx context.Context, info *grid.ObjectInfo, h Handle) (*Attributes, error) {
	if info == nil {
		return nil, newError(ErrInvalidArgument, "nil object info", "")
	}

	uid, err := tr.resolveOwner(ctx, info)
	if err != nil {
		return nil, err
	}

	return &Attributes{
		Handle:     h,
		FileID:     uint64(h),
		Kind:       info.Kind,
		Mode:       defaultMode,
		NLink:      0,
		UID:        uid,
		GID:        noGroup,
		Size:       info.Size,
		ATime:      info.ModifiedAt,
		MTime:      info.ModifiedAt,
		CTime:      info.CreatedAt,
		Dev:        deviceNumber,
		Rdev:       deviceNumber,
		Generation: uint64(info.ModifiedAt.UnixMilli()),
	}, nil
}

// resolveOwner maps the owner principal to a numeric uid.
func (tr *Translator) resolveOwner(ctx context.Context, info *grid.ObjectInfo) (uint32, error) {
	id, err := tr.identities.Lookup(ctx, info.OwnerName, info.OwnerZone)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownPrincipal) {
			return 0, newError(ErrIO,
				fmt.Sprintf("cannot resolve owner %q", identity.Principal(info.OwnerName, info.OwnerZone)),
				info.Path)
		}
		return 0, newError(ErrIO, fmt.Sprintf("identity lookup failed: %v", err), info.Path)
	}

	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, newError(ErrIO,
			fmt.Sprintf("malformed numeric identity %q for owner %q", id,
				identity.Principal(info.OwnerName, info.OwnerZone)),
			info.Path)
	}
	return uint32(uid), nil
}
