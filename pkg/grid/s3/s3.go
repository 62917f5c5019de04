// Package s3 provides a grid store backed by Amazon S3 or S3-compatible
// object storage.
//
// Path-Based Key Design:
//   - A grid path maps directly onto the object key: leading "/" stripped,
//     optional configured key prefix prepended.
//   - Collections are zero-byte marker objects whose key ends with "/"
//     (the convention S3 consoles use); during enumeration they are also
//     inferred from common prefixes, so hierarchies created by other tools
//     stay visible.
//   - The bucket therefore mirrors the grid hierarchy and stays
//     human-inspectable.
//
// Semantics the backend cannot provide:
//   - S3 has no per-object rwx probes; the permission probe reports
//     store-level rights (read always, write unless configured read-only,
//     execute for collections).
//   - S3 has no distinct creation time; LastModified serves as both.
//   - Objects report the configured owner principal; bucket ACL owners do
//     not map onto grid principals.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gridnfs/gridnfs/pkg/grid"
)

// Store implements grid.Client over an S3 bucket.
//
// Thread Safety:
// The AWS SDK client is safe for concurrent use; sessions are lightweight
// views over it, so Acquire never blocks on a pool.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	ownerName string
	ownerZone string
	readOnly  bool
}

// Config contains configuration for the S3 grid store.
type Config struct {
	// Client is the configured S3 client
	Client *s3.Client

	// Bucket is the bucket name (must already exist)
	Bucket string

	// KeyPrefix is an optional prefix for all object keys
	KeyPrefix string

	// OwnerName and OwnerZone are the principal reported as owner of
	// every object
	OwnerName string
	OwnerZone string

	// ReadOnly makes the permission probe deny writes
	ReadOnly bool
}

// NewStore creates an S3-backed grid store and verifies bucket access.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 grid: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 grid: bucket name is required")
	}
	if cfg.OwnerName == "" {
		return nil, fmt.Errorf("s3 grid: owner_name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 grid: cannot access bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: strings.TrimPrefix(cfg.KeyPrefix, "/"),
		ownerName: cfg.OwnerName,
		ownerZone: cfg.OwnerZone,
		readOnly:  cfg.ReadOnly,
	}, nil
}

// Acquire implements grid.Client.
func (s *Store) Acquire(ctx context.Context) (grid.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{store: s}, nil
}

// key converts a grid path to an object key (no trailing slash).
func (s *Store) key(p string) string {
	k := strings.TrimPrefix(path.Clean(p), "/")
	if s.keyPrefix != "" {
		if k == "" {
			return strings.TrimSuffix(s.keyPrefix, "/")
		}
		return strings.TrimSuffix(s.keyPrefix, "/") + "/" + k
	}
	return k
}

// gridPath converts an object key back to a grid path.
func (s *Store) gridPath(key string) string {
	k := key
	if s.keyPrefix != "" {
		k = strings.TrimPrefix(k, strings.TrimSuffix(s.keyPrefix, "/"))
	}
	return "/" + strings.Trim(k, "/")
}

type session struct {
	store  *Store
	closed bool
}

// check rejects use of a released session.
func (sess *session) check() error {
	if sess.closed {
		return fmt.Errorf("s3 grid: use of closed session")
	}
	return nil
}

// Stat implements grid.Session.
//
// Resolution order: exact object key (data object), then marker key or a
// non-empty prefix (collection).
func (sess *session) Stat(ctx context.Context, p string) (*grid.ObjectInfo, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}

	s := sess.store
	key := s.key(p)

	// The root of the hierarchy is never an object.
	if key == s.key("/") {
		return sess.dirInfo(p, time.Time{}), nil
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		info := &grid.ObjectInfo{
			Path:      path.Clean(p),
			Kind:      grid.KindFile,
			OwnerName: s.ownerName,
			OwnerZone: s.ownerZone,
		}
		if head.ContentLength != nil {
			info.Size = uint64(*head.ContentLength)
		}
		if head.LastModified != nil {
			info.CreatedAt = *head.LastModified
			info.ModifiedAt = *head.LastModified
		}
		return info, nil
	case !isNotFound(err):
		return nil, fmt.Errorf("s3 grid: head %q: %w", key, err)
	}

	// Not a data object: a collection if the marker exists or anything
	// lives under the prefix.
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(key + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 grid: probe prefix %q: %w", key, err)
	}
	if len(out.Contents) == 0 {
		return nil, fmt.Errorf("%w: %s", grid.ErrNotFound, p)
	}

	modified := time.Time{}
	if out.Contents[0].LastModified != nil {
		modified = *out.Contents[0].LastModified
	}
	return sess.dirInfo(p, modified), nil
}

func (sess *session) dirInfo(p string, modified time.Time) *grid.ObjectInfo {
	return &grid.ObjectInfo{
		Path:       path.Clean(p),
		Kind:       grid.KindDirectory,
		OwnerName:  sess.store.ownerName,
		OwnerZone:  sess.store.ownerZone,
		CreatedAt:  modified,
		ModifiedAt: modified,
	}
}

// Permissions implements grid.Session.
func (sess *session) Permissions(ctx context.Context, p string) (grid.Permissions, error) {
	info, err := sess.Stat(ctx, p)
	if err != nil {
		return grid.Permissions{}, err
	}
	return grid.Permissions{
		Read:    true,
		Write:   !sess.store.readOnly,
		Execute: info.Kind == grid.KindDirectory,
	}, nil
}

// Create implements grid.Session.
func (sess *session) Create(ctx context.Context, p string, kind grid.ObjectKind) error {
	if err := sess.check(); err != nil {
		return err
	}

	s := sess.store
	if s.readOnly {
		return fmt.Errorf("%w: store is read-only", grid.ErrPermissionDenied)
	}

	// The parent collection must exist; S3 itself would happily create
	// an orphan key.
	parent := path.Dir(path.Clean(p))
	parentInfo, err := sess.Stat(ctx, parent)
	if err != nil {
		if errors.Is(err, grid.ErrNotFound) {
			return fmt.Errorf("%w: parent %s", grid.ErrNotFound, parent)
		}
		return err
	}
	if parentInfo.Kind != grid.KindDirectory {
		return fmt.Errorf("%w: parent %s is not a collection", grid.ErrPermissionDenied, parent)
	}

	if _, err := sess.Stat(ctx, p); err == nil {
		return fmt.Errorf("%w: %s", grid.ErrAlreadyExists, p)
	} else if !errors.Is(err, grid.ErrNotFound) {
		return err
	}

	key := s.key(p)
	if kind == grid.KindDirectory {
		key += "/"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("s3 grid: put %q: %w", key, err)
	}
	return nil
}

// List implements grid.Session.
//
// Children are data objects directly under the prefix plus collections
// inferred from common prefixes. Marker objects for the collection itself
// are skipped.
func (sess *session) List(ctx context.Context, p string) ([]string, error) {
	s := sess.store

	info, err := sess.Stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if info.Kind != grid.KindDirectory {
		return nil, fmt.Errorf("%w: %s is not a collection", grid.ErrNotFound, p)
	}

	prefix := s.key(p)
	if prefix != "" {
		prefix += "/"
	}

	var children []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 grid: list %q: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			if obj.Key == nil || *obj.Key == prefix {
				continue // the collection's own marker
			}
			children = append(children, s.gridPath(*obj.Key))
		}
		for _, cp := range out.CommonPrefixes {
			if cp.Prefix == nil {
				continue
			}
			children = append(children, s.gridPath(*cp.Prefix))
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return children, nil
}

// Stats implements grid.Session.
//
// S3 exposes no capacity; a nominal very large total is reported with
// usage summed from a full (unpaginated-by-delimiter) scan of the key
// prefix.
func (sess *session) Stats(ctx context.Context) (grid.StorageStats, error) {
	if err := sess.check(); err != nil {
		return grid.StorageStats{}, err
	}

	s := sess.store

	var used uint64
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.keyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return grid.StorageStats{}, fmt.Errorf("s3 grid: stats scan: %w", err)
		}
		for _, obj := range out.Contents {
			if obj.Size != nil {
				used += uint64(*obj.Size)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}

	const nominalCapacity = uint64(1) << 50 // 1 PiB
	free := uint64(0)
	if nominalCapacity > used {
		free = nominalCapacity - used
	}
	return grid.StorageStats{TotalBytes: nominalCapacity, FreeBytes: free}, nil
}

// Close implements grid.Session. The SDK client is pooled internally, so
// the only per-session state to retire is the session itself.
func (sess *session) Close() error {
	if sess.closed {
		return fmt.Errorf("s3 grid: session closed twice")
	}
	sess.closed = true
	return nil
}

// isNotFound reports whether an S3 error means the key does not exist.
// HeadObject surfaces *types.NotFound; GetObject-style calls surface
// *types.NoSuchKey.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
