package grid

import "time"

// ObjectKind identifies the kind of object stored in the grid.
type ObjectKind int

const (
	// KindFile is a regular data object
	KindFile ObjectKind = iota

	// KindDirectory is a collection of other objects
	KindDirectory
)

// String returns a human-readable name for the object kind.
func (k ObjectKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// ObjectInfo describes a single object as reported by the grid.
//
// The grid tracks creation and modification times but has no notion of
// access time; callers that need one project the modification time.
// Ownership is expressed as a principal (name + zone), not a numeric
// identity — translating it to a uid is the caller's concern.
type ObjectInfo struct {
	// Path is the absolute, normalized grid path of the object
	Path string

	// Kind distinguishes data objects from collections
	Kind ObjectKind

	// Size is the object size in bytes (0 for collections)
	Size uint64

	// OwnerName is the grid-native owner user name
	OwnerName string

	// OwnerZone is the zone the owner belongs to
	OwnerZone string

	// CreatedAt is when the object was created in the grid
	CreatedAt time.Time

	// ModifiedAt is when the object was last modified
	ModifiedAt time.Time
}

// Permissions reports the three individual access rights the grid grants
// the connected account on a given path.
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
}

// StorageStats reports capacity information for the storage backing the grid.
type StorageStats struct {
	// TotalBytes is the total capacity of the store
	TotalBytes uint64

	// FreeBytes is the remaining usable capacity
	FreeBytes uint64
}
