// Package memory provides an in-memory grid store.
//
// It is suitable for tests and development. Besides implementing
// grid.Client, it exposes seeding helpers (Mkdir, PutFile, SetPermissions)
// plus session accounting (OpenSessions) and one-shot fault injection so
// tests can verify the caller's session-release discipline and error
// translation.
package memory

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridnfs/gridnfs/pkg/grid"
)

// object is the stored representation of one grid object.
type object struct {
	kind       grid.ObjectKind
	size       uint64
	ownerName  string
	ownerZone  string
	createdAt  time.Time
	modifiedAt time.Time
	perms      grid.Permissions
}

// Store is an in-memory grid.
//
// Thread Safety:
// All operations are protected by a single read-write mutex. Coarse but
// correct, and contention is irrelevant at test scale.
type Store struct {
	mu sync.RWMutex

	// objects maps normalized absolute paths to objects
	objects map[string]*object

	// children maps a collection path to its child paths in creation order
	children map[string][]string

	// faults maps operation names ("stat", "permissions", "create",
	// "list", "stats") to a one-shot injected error
	faults map[string]error

	// open counts sessions acquired and not yet closed
	open atomic.Int64

	ownerName  string
	ownerZone  string
	totalBytes uint64
}

// Option configures a Store.
type Option func(*Store)

// WithOwner sets the principal reported as owner of every object.
func WithOwner(name, zone string) Option {
	return func(s *Store) {
		s.ownerName = name
		s.ownerZone = zone
	}
}

// WithCapacity sets the total capacity reported by Stats.
func WithCapacity(bytes uint64) Option {
	return func(s *Store) { s.totalBytes = bytes }
}

// NewStore creates a store containing rootPath (and its ancestors) as
// collections.
func NewStore(rootPath string, opts ...Option) (*Store, error) {
	s := &Store{
		objects:    make(map[string]*object),
		children:   make(map[string][]string),
		faults:     make(map[string]error),
		ownerName:  "rods",
		ownerZone:  "tempZone",
		totalBytes: 1 << 40,
	}
	for _, opt := range opts {
		opt(s)
	}

	normalized, err := normalize(rootPath)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mkdirAllLocked(normalized)
	return s, nil
}

// Acquire implements grid.Client.
func (s *Store) Acquire(ctx context.Context) (grid.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.open.Add(1)
	return &session{store: s}, nil
}

// OpenSessions reports how many acquired sessions have not been closed.
// Tests use it to assert the scoped-acquisition discipline.
func (s *Store) OpenSessions() int {
	return int(s.open.Load())
}

// InjectFault makes the next call of the named session operation return
// err instead of executing. Operation names: stat, permissions, create,
// list, stats.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// Mkdir seeds a collection (creating missing ancestors).
func (s *Store) Mkdir(p string) error {
	normalized, err := normalize(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[normalized]; ok {
		if obj.kind != grid.KindDirectory {
			return fmt.Errorf("%w: %s", grid.ErrAlreadyExists, normalized)
		}
		return nil
	}
	s.mkdirAllLocked(normalized)
	return nil
}

// PutFile seeds a data object of the given size (creating missing
// ancestor collections).
func (s *Store) PutFile(p string, size uint64) error {
	normalized, err := normalize(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[normalized]; ok {
		return fmt.Errorf("%w: %s", grid.ErrAlreadyExists, normalized)
	}

	s.mkdirAllLocked(path.Dir(normalized))
	s.insertLocked(normalized, grid.KindFile, size)
	return nil
}

// SetPermissions overrides the permission probe result for a path.
func (s *Store) SetPermissions(p string, perms grid.Permissions) error {
	normalized, err := normalize(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[normalized]
	if !ok {
		return fmt.Errorf("%w: %s", grid.ErrNotFound, normalized)
	}
	obj.perms = perms
	return nil
}

// SetOwner overrides the owner principal reported for a path.
func (s *Store) SetOwner(p, owner, zone string) error {
	normalized, err := normalize(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[normalized]
	if !ok {
		return fmt.Errorf("%w: %s", grid.ErrNotFound, normalized)
	}
	obj.ownerName = owner
	obj.ownerZone = zone
	return nil
}

// mkdirAllLocked creates the collection at p and any missing ancestors.
// Caller holds mu.
func (s *Store) mkdirAllLocked(p string) {
	if _, ok := s.objects[p]; ok {
		return
	}
	if p != "/" {
		s.mkdirAllLocked(path.Dir(p))
	}
	s.insertLocked(p, grid.KindDirectory, 0)
}

// insertLocked records a new object and links it under its parent.
// Caller holds mu.
func (s *Store) insertLocked(p string, kind grid.ObjectKind, size uint64) {
	now := time.Now()
	s.objects[p] = &object{
		kind:       kind,
		size:       size,
		ownerName:  s.ownerName,
		ownerZone:  s.ownerZone,
		createdAt:  now,
		modifiedAt: now,
		perms: grid.Permissions{
			Read:    true,
			Write:   true,
			Execute: kind == grid.KindDirectory,
		},
	}
	if p != "/" {
		parent := path.Dir(p)
		s.children[parent] = append(s.children[parent], p)
	}
}

// takeFault pops an injected fault for op, if any.
func (s *Store) takeFault(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

// usedBytesLocked sums object sizes. Caller holds mu.
func (s *Store) usedBytesLocked() uint64 {
	var used uint64
	for _, obj := range s.objects {
		used += obj.size
	}
	return used
}

// session is a scoped view of the store. Close is idempotent-hostile on
// purpose: closing twice underflows the counter and tests catch it.
type session struct {
	store  *Store
	closed bool
}

// Stat implements grid.Session.
func (sess *session) Stat(ctx context.Context, p string) (*grid.ObjectInfo, error) {
	if err := sess.check(ctx, "stat"); err != nil {
		return nil, err
	}

	normalized, err := normalize(p)
	if err != nil {
		return nil, err
	}

	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()

	obj, ok := sess.store.objects[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", grid.ErrNotFound, normalized)
	}
	return &grid.ObjectInfo{
		Path:       normalized,
		Kind:       obj.kind,
		Size:       obj.size,
		OwnerName:  obj.ownerName,
		OwnerZone:  obj.ownerZone,
		CreatedAt:  obj.createdAt,
		ModifiedAt: obj.modifiedAt,
	}, nil
}

// Permissions implements grid.Session.
func (sess *session) Permissions(ctx context.Context, p string) (grid.Permissions, error) {
	if err := sess.check(ctx, "permissions"); err != nil {
		return grid.Permissions{}, err
	}

	normalized, err := normalize(p)
	if err != nil {
		return grid.Permissions{}, err
	}

	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()

	obj, ok := sess.store.objects[normalized]
	if !ok {
		return grid.Permissions{}, fmt.Errorf("%w: %s", grid.ErrNotFound, normalized)
	}
	return obj.perms, nil
}

// Create implements grid.Session.
func (sess *session) Create(ctx context.Context, p string, kind grid.ObjectKind) error {
	if err := sess.check(ctx, "create"); err != nil {
		return err
	}

	normalized, err := normalize(p)
	if err != nil {
		return err
	}

	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()

	if _, ok := sess.store.objects[normalized]; ok {
		return fmt.Errorf("%w: %s", grid.ErrAlreadyExists, normalized)
	}

	parent := path.Dir(normalized)
	parentObj, ok := sess.store.objects[parent]
	if !ok {
		return fmt.Errorf("%w: parent %s", grid.ErrNotFound, parent)
	}
	if parentObj.kind != grid.KindDirectory {
		return fmt.Errorf("%w: parent %s is not a collection", grid.ErrPermissionDenied, parent)
	}
	if !parentObj.perms.Write {
		return fmt.Errorf("%w: parent %s", grid.ErrPermissionDenied, parent)
	}

	sess.store.insertLocked(normalized, kind, 0)
	return nil
}

// List implements grid.Session.
func (sess *session) List(ctx context.Context, p string) ([]string, error) {
	if err := sess.check(ctx, "list"); err != nil {
		return nil, err
	}

	normalized, err := normalize(p)
	if err != nil {
		return nil, err
	}

	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()

	obj, ok := sess.store.objects[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", grid.ErrNotFound, normalized)
	}
	if obj.kind != grid.KindDirectory {
		return nil, fmt.Errorf("%w: %s is not a collection", grid.ErrNotFound, normalized)
	}

	children := sess.store.children[normalized]
	out := make([]string, len(children))
	copy(out, children)
	return out, nil
}

// Stats implements grid.Session.
func (sess *session) Stats(ctx context.Context) (grid.StorageStats, error) {
	if err := sess.check(ctx, "stats"); err != nil {
		return grid.StorageStats{}, err
	}

	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()

	used := sess.store.usedBytesLocked()
	free := uint64(0)
	if sess.store.totalBytes > used {
		free = sess.store.totalBytes - used
	}
	return grid.StorageStats{
		TotalBytes: sess.store.totalBytes,
		FreeBytes:  free,
	}, nil
}

// Close implements grid.Session.
func (sess *session) Close() error {
	if sess.closed {
		return fmt.Errorf("memory grid: session closed twice")
	}
	sess.closed = true
	sess.store.open.Add(-1)
	return nil
}

// check validates the session state, the context, and fault injection.
func (sess *session) check(ctx context.Context, op string) error {
	if sess.closed {
		return fmt.Errorf("memory grid: use of closed session")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return sess.store.takeFault(op)
}

// normalize mirrors the path discipline of real grid stores: absolute,
// cleaned paths only.
func normalize(p string) (string, error) {
	if p == "" || !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("memory grid: path %q is not absolute", p)
	}
	return path.Clean(p), nil
}
