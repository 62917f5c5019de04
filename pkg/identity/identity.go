// Package identity resolves grid-native owner principals to numeric
// identities.
//
// The grid names owners as "user" within a "zone"; the protocol side wants
// a numeric uid. A Directory performs that translation. Identities are
// returned as decimal strings because that is how the grid's user catalog
// stores them — parsing is left to the caller so that a malformed catalog
// entry surfaces as a translation error, not a crash.
package identity

import (
	"context"
	"errors"
)

// ErrUnknownPrincipal indicates the directory has no identity for the
// requested owner/zone pair.
var ErrUnknownPrincipal = errors.New("identity: unknown principal")

// Directory maps owner principals to numeric identities.
//
// Implementations must be safe for concurrent use.
type Directory interface {
	// Lookup returns the numeric identity for the principal as a decimal
	// string, or ErrUnknownPrincipal if the directory does not know it.
	Lookup(ctx context.Context, owner, zone string) (string, error)
}

// Principal renders the canonical "owner#zone" form used as a directory key.
func Principal(owner, zone string) string {
	return owner + "#" + zone
}
