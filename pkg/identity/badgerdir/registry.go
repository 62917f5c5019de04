// Package badgerdir provides a persistent identity directory backed by
// BadgerDB.
//
// Inode handles are deliberately ephemeral (the inode table is rebuilt on
// every restart), but numeric owner identities must NOT be: if the same
// grid principal resolved to a different uid after a restart, ownership
// would appear to change under the protocol client. The registry therefore
// persists every assignment and hands out stable, monotonically increasing
// ids, assigning a fresh one the first time a principal is seen.
package badgerdir

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/gridnfs/gridnfs/pkg/identity"
)

// Key namespace:
//
//	Data Type        Prefix  Key Format        Value
//	------------------------------------------------------------------
//	Principal ids    "p:"    p:<owner#zone>    decimal id (string)
//	Id sequence      "seq"   seq               uint64 (big-endian)
const (
	principalPrefix = "p:"
	sequenceKey     = "seq"
)

// firstAutoID is the first id handed out to an unseen principal. Ids below
// this are reserved for statically configured system accounts.
const firstAutoID uint64 = 1000

// maxCommitRetries bounds retries of transactions that lost a commit
// conflict to a concurrent assignment of the same or another principal.
const maxCommitRetries = 10

// Registry is a persistent identity.Directory.
//
// Safe for concurrent use; BadgerDB transactions provide the required
// isolation, and commit conflicts between concurrent first-sighting
// assignments are retried.
type Registry struct {
	db *badger.DB
}

// Open opens (or creates) a registry at the given directory path.
func Open(path string) (*Registry, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerdir: open %q: %w", path, err)
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Lookup implements identity.Directory.
//
// A principal never seen before is assigned the next free id and the
// assignment is persisted before it is returned, so the same principal
// resolves to the same id for the lifetime of the registry's database.
func (r *Registry) Lookup(ctx context.Context, owner, zone string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := []byte(principalPrefix + identity.Principal(owner, zone))

	// Fast path: principal already registered.
	id, err := r.get(key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("badgerdir: lookup: %w", err)
	}

	// First sighting: assign the next id. The read-modify-write of the
	// sequence runs in one transaction; a concurrent assignment makes the
	// commit fail with ErrConflict and we retry from the read.
	for range maxCommitRetries {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, err = r.assign(key)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return "", err
		}

		// Another goroutine may have registered this very principal.
		id, err = r.get(key)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return "", fmt.Errorf("badgerdir: lookup after conflict: %w", err)
		}
	}

	return "", fmt.Errorf("badgerdir: assign %q: too many commit conflicts", string(key))
}

// get reads the id stored for key, propagating badger.ErrKeyNotFound.
func (r *Registry) get(key []byte) (string, error) {
	var id string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id = string(val)
		return nil
	})
	return id, err
}

// assign allocates the next sequence value and stores it for key.
func (r *Registry) assign(key []byte) (string, error) {
	var id string
	err := r.db.Update(func(txn *badger.Txn) error {
		next := firstAutoID

		item, err := txn.Get([]byte(sequenceKey))
		switch {
		case err == nil:
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(val) != 8 {
				return fmt.Errorf("badgerdir: corrupt sequence value (%d bytes)", len(val))
			}
			next = binary.BigEndian.Uint64(val) + 1
		case errors.Is(err, badger.ErrKeyNotFound):
			// First assignment ever.
		default:
			return err
		}

		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], next)
		if err := txn.Set([]byte(sequenceKey), buf[:]); err != nil {
			return err
		}

		id = strconv.FormatUint(next, 10)
		return txn.Set(key, []byte(id))
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
