// Package gitmem is a pure in-memory objstore.Store. It backs the
// "in-memory description" construction path the specification leaves
// as an unspecified collaborator (see registry.Registry.OpenDFS), and it is the
// store every unit test in this module is written against, so that
// path-algebra and resolver tests don't need a git binary.
package gitmem

import (
	"context"
	"path"
	"sort"
	"sync"

	"github.com/gitjfs/gitjfs/objstore"
)

// Store is an in-memory object graph: a set of blobs, trees, commits,
// and refs, addressed the same way a real repository would address
// them (content-hashed OIDs). Build one with a Builder; Store itself
// has no mutators, matching the read-only nature of every other
// gitjfs collaborator.
type Store struct {
	mu      sync.RWMutex
	blobs   map[objstore.OID][]byte
	trees   map[objstore.OID][]objstore.TreeEntry
	commits map[objstore.OID]*objstore.CommitInfo
	refs    map[string]objstore.OID
}

var _ objstore.Store = (*Store)(nil)

func (s *Store) ReadBlob(_ context.Context, oid objstore.OID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[oid]
	if !ok {
		return nil, objstore.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) ReadTree(_ context.Context, oid objstore.OID) (objstore.TreeReader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.trees[oid]
	if !ok {
		return nil, objstore.ErrNotFound
	}
	return &treeReader{entries: entries}, nil
}

func (s *Store) ReadCommit(_ context.Context, oid objstore.OID) (*objstore.CommitInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commits[oid]
	if !ok {
		return nil, objstore.ErrNotFound
	}
	cp := *c
	cp.Parents = append([]objstore.OID(nil), c.Parents...)
	return &cp, nil
}

func (s *Store) ListRefs(_ context.Context, prefix string) ([]objstore.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []objstore.Reference
	for name, oid := range s.refs {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			out = append(out, objstore.Reference{Name: name, OID: oid})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Close() error {
	return nil
}

type treeReader struct {
	entries []objstore.TreeEntry
	pos     int
}

func (r *treeReader) Next() (objstore.TreeEntry, bool, error) {
	if r.pos >= len(r.entries) {
		return objstore.TreeEntry{}, false, nil
	}
	e := r.entries[r.pos]
	r.pos++
	return e, true, nil
}

func (r *treeReader) Close() error { return nil }

// Diff walks the trees of a and b recursively and in lockstep,
// producing add/delete/modify entries in canonical (depth-first, name-sorted)
// order. gitmem never reports rename or copy: without a similarity
// heuristic, an in-memory store has no principled way to distinguish
// "renamed" from "deleted one, added another", so it reports the
// conservative pair of changes instead.
func (s *Store) Diff(ctx context.Context, a, b objstore.OID) ([]objstore.DiffEntry, error) {
	ca, err := s.ReadCommit(ctx, a)
	if err != nil {
		return nil, err
	}
	cb, err := s.ReadCommit(ctx, b)
	if err != nil {
		return nil, err
	}
	var out []objstore.DiffEntry
	if err := s.diffTrees(ctx, "", ca.Tree, cb.Tree, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) diffTrees(ctx context.Context, prefix string, a, b objstore.OID, out *[]objstore.DiffEntry) error {
	if a == b {
		return nil
	}
	ea, err := s.readEntries(ctx, a)
	if err != nil {
		return err
	}
	eb, err := s.readEntries(ctx, b)
	if err != nil {
		return err
	}

	i, j := 0, 0
	for i < len(ea) || j < len(eb) {
		switch {
		case j >= len(eb) || (i < len(ea) && ea[i].Name < eb[j].Name):
			if err := s.emitSubtree(ctx, path.Join(prefix, ea[i].Name), ea[i], objstore.ChangeDelete, out); err != nil {
				return err
			}
			i++
		case i >= len(ea) || eb[j].Name < ea[i].Name:
			if err := s.emitSubtree(ctx, path.Join(prefix, eb[j].Name), eb[j], objstore.ChangeAdd, out); err != nil {
				return err
			}
			j++
		default:
			full := path.Join(prefix, ea[i].Name)
			if ea[i].OID != eb[j].OID {
				if ea[i].Mode == objstore.ModeTree && eb[j].Mode == objstore.ModeTree {
					if err := s.diffTrees(ctx, full, ea[i].OID, eb[j].OID, out); err != nil {
						return err
					}
				} else if ea[i].Mode == objstore.ModeTree {
					if err := s.emitSubtree(ctx, full, ea[i], objstore.ChangeDelete, out); err != nil {
						return err
					}
					if err := s.emitSubtree(ctx, full, eb[j], objstore.ChangeAdd, out); err != nil {
						return err
					}
				} else if eb[j].Mode == objstore.ModeTree {
					if err := s.emitSubtree(ctx, full, ea[i], objstore.ChangeDelete, out); err != nil {
						return err
					}
					if err := s.emitSubtree(ctx, full, eb[j], objstore.ChangeAdd, out); err != nil {
						return err
					}
				} else {
					*out = append(*out, objstore.DiffEntry{
						Type: objstore.ChangeModify, OldPath: full, NewPath: full,
					})
				}
			}
			i++
			j++
		}
	}
	return nil
}

func (s *Store) readEntries(ctx context.Context, oid objstore.OID) ([]objstore.TreeEntry, error) {
	s.mu.RLock()
	entries, ok := s.trees[oid]
	s.mu.RUnlock()
	if !ok {
		return nil, objstore.ErrNotFound
	}
	sorted := append([]objstore.TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted, nil
}

// emitSubtree expands an added or deleted tree entry into one diff
// entry per contained blob, so a whole-directory add/delete reads the
// same way a real `git diff-tree -r` would.
func (s *Store) emitSubtree(ctx context.Context, full string, e objstore.TreeEntry, change objstore.ChangeType, out *[]objstore.DiffEntry) error {
	if e.Mode != objstore.ModeTree {
		entry := objstore.DiffEntry{Type: change}
		if change == objstore.ChangeAdd {
			entry.NewPath = full
		} else {
			entry.OldPath = full
		}
		*out = append(*out, entry)
		return nil
	}
	children, err := s.readEntries(ctx, e.OID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := s.emitSubtree(ctx, path.Join(full, c.Name), c, change, out); err != nil {
			return err
		}
	}
	return nil
}
