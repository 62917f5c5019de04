package identity

import "context"

// Static is a fixed, configuration-driven identity directory.
//
// It is suitable for deployments with a small, known set of grid users,
// and for tests. The map is copied at construction and never mutated, so
// lookups need no locking.
type Static struct {
	ids map[string]string
}

// NewStatic builds a directory from a principal → decimal-id map.
// Keys use the canonical "owner#zone" form (see Principal).
func NewStatic(ids map[string]string) *Static {
	copied := make(map[string]string, len(ids))
	for k, v := range ids {
		copied[k] = v
	}
	return &Static{ids: copied}
}

// Lookup implements Directory.
func (s *Static) Lookup(ctx context.Context, owner, zone string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, ok := s.ids[Principal(owner, zone)]
	if !ok {
		return "", ErrUnknownPrincipal
	}
	return id, nil
}
