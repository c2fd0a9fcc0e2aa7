package gitcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gitjfs/gitjfs/objstore"
)

// ReadBlob streams a blob's full contents via `git cat-file blob`.
func (s *Store) ReadBlob(ctx context.Context, oid objstore.OID) ([]byte, error) {
	if err := s.checkReachable(ctx, oid); err != nil {
		return nil, err
	}
	return s.run(ctx, "cat-file", "blob", oid.String())
}

// ReadCommit parses a commit object's tree, parents, and author and
// committer signatures, via `git cat-file commit` and the
// teacher-derived header parser.
func (s *Store) ReadCommit(ctx context.Context, oid objstore.OID) (*objstore.CommitInfo, error) {
	if err := s.checkReachable(ctx, oid); err != nil {
		return nil, err
	}
	data, err := s.run(ctx, "cat-file", "commit", oid.String())
	if err != nil {
		return nil, err
	}

	it, err := newObjectHeaderIter(oid.String(), data)
	if err != nil {
		return nil, err
	}

	info := &objstore.CommitInfo{OID: oid}
	var treeFound bool
	for it.hasNext() {
		key, value, err := it.next()
		if err != nil {
			return nil, err
		}
		switch key {
		case "tree":
			tree, err := objstore.NewOID(value)
			if err != nil {
				return nil, fmt.Errorf("malformed tree header in commit %s: %w", oid, err)
			}
			info.Tree, treeFound = tree, true
		case "parent":
			parent, err := objstore.NewOID(value)
			if err != nil {
				return nil, fmt.Errorf("malformed parent header in commit %s: %w", oid, err)
			}
			info.Parents = append(info.Parents, parent)
		case "author":
			sig, err := parseSignature(value)
			if err != nil {
				return nil, fmt.Errorf("commit %s: %w", oid, err)
			}
			info.Author = sig
		case "committer":
			sig, err := parseSignature(value)
			if err != nil {
				return nil, fmt.Errorf("commit %s: %w", oid, err)
			}
			info.Committer = sig
		}
	}
	if !treeFound {
		return nil, fmt.Errorf("no tree found in commit %s", oid)
	}
	return info, nil
}

// treeReader iterates over the parsed output of `git ls-tree -z`,
// already fully buffered: a bare repository's tree listing for a
// single directory level is small enough that batching the whole
// command through one subprocess call is simpler, and no slower in
// practice, than a line-streaming iterator.
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

// ReadTree lists the direct children of a tree object via
// `git ls-tree -z`, whose NUL-delimited, non-recursive output gives
// exactly the ordered (name, id, mode) triples the resolver needs.
func (s *Store) ReadTree(ctx context.Context, oid objstore.OID) (objstore.TreeReader, error) {
	if err := s.checkReachable(ctx, oid); err != nil {
		return nil, err
	}
	out, err := s.run(ctx, "ls-tree", "-z", oid.String())
	if err != nil {
		return nil, err
	}

	var entries []objstore.TreeEntry
	for _, rec := range splitNUL(out) {
		if rec == "" {
			continue
		}
		entry, err := parseLsTreeRecord(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return &treeReader{entries: entries}, nil
}

func splitNUL(b []byte) []string {
	return strings.Split(strings.TrimSuffix(string(b), "\x00"), "\x00")
}

// parseLsTreeRecord parses one "<mode> <type> <oid>\t<name>" record
// from `git ls-tree -z` output.
func parseLsTreeRecord(rec string) (objstore.TreeEntry, error) {
	tab := strings.IndexByte(rec, '\t')
	if tab == -1 {
		return objstore.TreeEntry{}, fmt.Errorf("malformed ls-tree record %q", rec)
	}
	meta, name := rec[:tab], rec[tab+1:]
	fields := strings.Fields(meta)
	if len(fields) != 3 {
		return objstore.TreeEntry{}, fmt.Errorf("malformed ls-tree record %q", rec)
	}
	rawMode, err := strconv.ParseUint(fields[0], 8, 32)
	if err != nil {
		return objstore.TreeEntry{}, fmt.Errorf("malformed ls-tree mode %q: %w", fields[0], err)
	}
	mode, err := objstore.FileModeFromGit(uint32(rawMode))
	if err != nil {
		return objstore.TreeEntry{}, err
	}
	oid, err := objstore.NewOID(fields[2])
	if err != nil {
		return objstore.TreeEntry{}, fmt.Errorf("malformed ls-tree oid %q: %w", fields[2], err)
	}
	return objstore.TreeEntry{Name: name, OID: oid, Mode: mode}, nil
}
