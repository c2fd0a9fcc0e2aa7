// Package objstore defines the object-store collaborator that the
// rest of gitjfs treats as an opaque, already-built dependency: given
// an id, look up a blob, a tree, or a commit; given a prefix, list
// refs; given two commits, diff their trees. gitjfs never parses pack
// files or ref storage itself — it asks a Store.
//
// Two concrete Stores are provided by sibling packages: gitcli (a
// real on-disk repository, accessed by shelling out to git) and
// gitmem (a pure in-memory repository, built by a fluent Builder).
package objstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by ReadBlob, ReadTree, and ReadCommit when
// the requested object does not exist, or exists but was refused by a
// Store configured to serve only reachable objects.
var ErrNotFound = errors.New("object not found")

// ErrWrongType names the failure of an object that exists but is not
// of the type the caller asked for (e.g. ReadTree called on a blob
// id). No Store in this module returns it: gitmem reports ErrNotFound
// for an id of the wrong type, and gitcli returns the failing git
// command's error.
var ErrWrongType = errors.New("object is not of the expected type")

// Store is the read-only object-store contract required by the
// specification. Implementations must be safe for concurrent use by
// multiple goroutines, except where a method's own documentation says
// otherwise (see TreeReader).
type Store interface {
	// ReadBlob returns the full contents of the blob named by oid.
	ReadBlob(ctx context.Context, oid OID) ([]byte, error)

	// ReadTree returns an iterator over the entries of the tree named
	// by oid. The caller must Close the reader.
	ReadTree(ctx context.Context, oid OID) (TreeReader, error)

	// ReadCommit parses the commit named by oid.
	ReadCommit(ctx context.Context, oid OID) (*CommitInfo, error)

	// ListRefs enumerates every direct reference (no symbolic refs)
	// whose name starts with prefix. Passing "refs/" lists every ref
	// the spec's commit-graph builder needs.
	ListRefs(ctx context.Context, prefix string) ([]Reference, error)

	// Diff computes the ordered set of changes between the trees of
	// commits a and b.
	Diff(ctx context.Context, a, b OID) ([]DiffEntry, error)

	// Close releases any resources (subprocess handles, file
	// descriptors) the Store holds.
	Close() error
}
