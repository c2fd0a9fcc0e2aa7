// Package resolver walks a commit's tree to locate the object named
// by an internal path, the centerpiece of gitjfs. It is the
// one package in this module that combines the path algebra (gpath)
// with live object-store access (objstore), and it is deliberately
// name-at-a-time rather than whole-path: a symlink can appear at any
// depth and redirect the remainder of the walk, so there is no way to
// precompute the full sequence of trees up front.
package resolver

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/gitjfs/gitjfs/errs"
	"github.com/gitjfs/gitjfs/gpath"
	"github.com/gitjfs/gitjfs/objstore"
)

// FollowPolicy selects how symlinks are treated during a walk.
type FollowPolicy int

const (
	// NoFollow never expands a symlink; encountering one mid-path
	// fails, and a trailing one is returned unexpanded.
	NoFollow FollowPolicy = iota
	// FollowAll expands every symlink encountered, including a
	// trailing one.
	FollowAll
	// FollowExceptFinal expands every symlink except a trailing one.
	FollowExceptFinal
)

// Ref is the resolver's result: the object that a path names, plus
// the real path that reaches it once every intermediate symlink (but
// not a trailing one under NoFollow/FollowExceptFinal) has been
// expanded.
type Ref struct {
	RealPath gpath.InternalPath
	OID      objstore.OID
	Mode     objstore.FileMode
}

// Resolve walks root's tree along path's names under policy, and
// returns the object found. Only path's name sequence matters; the
// walk always starts at the tree root, represented by the absolute
// empty path, regardless of whether path itself is absolute.
func Resolve(ctx context.Context, store objstore.Store, root objstore.OID, path gpath.InternalPath, policy FollowPolicy) (Ref, error) {
	names := explodeNames(path)

	w := &walk{
		ctx:      ctx,
		store:    store,
		policy:   policy,
		trees:    []objstore.OID{root},
		deque:    names,
		current:  gpath.Root(),
		visited:  make(map[string]bool),
		finalOID: root,
	}
	return w.run()
}

// explodeNames flattens path's name list, including names later
// pushed by symlink expansion, into a plain slice the walk consumes
// from the front.
func explodeNames(path gpath.InternalPath) []string {
	var names []string
	for i := 0; i < path.NameCount(); i++ {
		n, _ := path.GetName(i)
		names = append(names, n.String())
	}
	return names
}

type walk struct {
	ctx    context.Context
	store  objstore.Store
	policy FollowPolicy

	trees   []objstore.OID // stack; top = trees[len-1]
	deque   []string       // remaining names, head = deque[0]
	current gpath.InternalPath

	visited map[string]bool

	// result of the last name considered
	finalOID  objstore.OID
	finalMode objstore.FileMode
}

func (w *walk) top() objstore.OID {
	return w.trees[len(w.trees)-1]
}

func visitedKey(top objstore.OID, remaining []string) string {
	return top.String() + "|" + strings.Join(remaining, "/")
}

func (w *walk) run() (Ref, error) {
	if len(w.deque) == 0 {
		return Ref{RealPath: w.current, OID: w.top(), Mode: objstore.ModeTree}, nil
	}

	for len(w.deque) > 0 {
		key := visitedKey(w.top(), w.deque)
		if w.visited[key] {
			return Ref{}, errs.New(errs.NoSuchFile, "resolve", w.current.String(), nil)
		}
		w.visited[key] = true

		name := w.deque[0]
		w.deque = w.deque[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			if len(w.trees) <= 1 {
				return Ref{}, errs.New(errs.NoSuchFile, "resolve", w.current.String(), nil)
			}
			w.trees = w.trees[:len(w.trees)-1]
			if parent, ok := w.current.GetParent(); ok {
				w.current = parent
			}
			w.finalOID, w.finalMode = w.top(), objstore.ModeTree
			continue
		default:
			if err := w.step(name); err != nil {
				return Ref{}, err
			}
		}
	}

	return Ref{RealPath: w.current, OID: w.finalOID, Mode: w.finalMode}, nil
}

func (w *walk) step(name string) error {
	w.current = w.current.Join(singleName(name))

	entry, found, err := lookupChild(w.ctx, w.store, w.top(), name)
	if err != nil {
		return errs.New(errs.IO, "resolve", w.current.String(), err)
	}
	if !found {
		return errs.New(errs.NoSuchFile, "resolve", w.current.String(), nil)
	}

	switch entry.Mode {
	case objstore.ModeRegular, objstore.ModeExecutable, objstore.ModeGitlink:
		if len(w.deque) != 0 {
			return errs.New(errs.NotADirectory, "resolve", w.current.String(), nil)
		}
		w.finalOID, w.finalMode = entry.OID, entry.Mode
		return nil

	case objstore.ModeTree:
		w.trees = append(w.trees, entry.OID)
		w.finalOID, w.finalMode = entry.OID, entry.Mode
		return nil

	case objstore.ModeSymlink:
		return w.handleSymlink(entry)

	default:
		return errs.New(errs.IO, "resolve", w.current.String(), nil)
	}
}

func (w *walk) handleSymlink(entry objstore.TreeEntry) error {
	final := len(w.deque) == 0

	switch {
	case w.policy == NoFollow && final:
		w.finalOID, w.finalMode = entry.OID, entry.Mode
		return nil
	case w.policy == NoFollow && !final:
		return errs.New(errs.PathCouldNotBeFound, "resolve", w.current.String(), nil)
	case w.policy == FollowExceptFinal && final:
		w.finalOID, w.finalMode = entry.OID, entry.Mode
		return nil
	}

	target, err := readLinkTarget(w.ctx, w.store, entry.OID)
	if err != nil {
		return err
	}
	if !utf8.ValidString(target) {
		return errs.New(errs.InvalidPath, "resolve", w.current.String(), nil)
	}
	if strings.HasPrefix(target, "/") {
		return errs.New(errs.PathCouldNotBeFound, "resolve", w.current.String(), nil)
	}

	targetPath, perr := gpath.ParseInternal(target)
	if perr != nil {
		return errs.New(errs.InvalidPath, "resolve", target, perr)
	}
	var targetNames []string
	for i := 0; i < targetPath.NameCount(); i++ {
		n, _ := targetPath.GetName(i)
		targetNames = append(targetNames, n.String())
	}

	w.deque = append(targetNames, w.deque...)

	// The symlink's target is relative to the directory containing the
	// symlink, which is exactly w.top(): nothing was pushed onto the
	// tree stack for the symlink entry itself (only ModeTree does
	// that), so the stack is left untouched here.
	if parent, ok := w.current.GetParent(); ok {
		w.current = parent
	} else {
		w.current = gpath.Root()
	}
	return nil
}

func readLinkTarget(ctx context.Context, store objstore.Store, oid objstore.OID) (string, error) {
	data, err := store.ReadBlob(ctx, oid)
	if err != nil {
		return "", errs.New(errs.IO, "read-link", oid.String(), err)
	}
	return string(data), nil
}

func lookupChild(ctx context.Context, store objstore.Store, tree objstore.OID, name string) (objstore.TreeEntry, bool, error) {
	r, err := store.ReadTree(ctx, tree)
	if err != nil {
		return objstore.TreeEntry{}, false, err
	}
	defer r.Close()
	for {
		entry, ok, err := r.Next()
		if err != nil {
			return objstore.TreeEntry{}, false, err
		}
		if !ok {
			return objstore.TreeEntry{}, false, nil
		}
		if entry.Name == name {
			return entry, true, nil
		}
	}
}

func singleName(name string) gpath.InternalPath {
	p, err := gpath.ParseInternal(name)
	if err != nil {
		// name came from a tree entry or an already-parsed path; it
		// cannot contain "/" or be otherwise malformed.
		return gpath.Empty()
	}
	return p
}
