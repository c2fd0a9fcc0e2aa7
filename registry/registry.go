// Package registry maps gitjfs:// URIs to live fs.FileSystem
// instances, under the two disjoint authorities:
// FILE (keyed by an absolute on-disk directory) and DFS (keyed by an
// in-memory repository's descriptive name). It is the single place
// that enforces "each live instance appears in exactly one mapping".
package registry

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/gitjfs/gitjfs/errs"
	"github.com/gitjfs/gitjfs/fs"
	"github.com/gitjfs/gitjfs/gpath"
)

// Registry holds the two authority tables. The zero value is not
// usable; construct with New.
type Registry struct {
	mu   sync.Mutex
	file map[string]*fs.FileSystem
	dfs  map[string]*fs.FileSystem
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		file: make(map[string]*fs.FileSystem),
		dfs:  make(map[string]*fs.FileSystem),
	}
}

// fileURI builds the canonical gitjfs://FILE<dir>/ URI for an
// absolute, slash-terminated directory.
func fileURI(dir string) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return "gitjfs://FILE" + dir
}

// dfsURI builds the canonical gitjfs://DFS/<name> URI, percent
// escaping name per the URI grammar.
func dfsURI(name string) string {
	return "gitjfs://DFS/" + gpath.EscapeDFSName(name)
}

// OpenFile registers a FileSystem backed by the on-disk directory
// dir, constructed by build. build is called only if dir is not
// already registered; if build fails, nothing is registered. Opening
// an already-registered directory fails with AlreadyExists.
func (r *Registry) OpenFile(dir string, build func(uri string) (*fs.FileSystem, error)) (*fs.FileSystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.New(errs.InvalidPath, "open-file", dir, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.file[abs]; ok {
		return nil, errs.New(errs.AlreadyExists, "open-file", abs, nil)
	}

	f, err := build(fileURI(abs))
	if err != nil {
		return nil, err
	}
	r.file[abs] = f
	return f, nil
}

// OpenDFS registers a FileSystem backed by an in-memory repository
// called name, constructed by build. Opening an already-registered
// name fails with AlreadyExists.
func (r *Registry) OpenDFS(name string, build func(uri string) (*fs.FileSystem, error)) (*fs.FileSystem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dfs[name]; ok {
		return nil, errs.New(errs.AlreadyExists, "open-dfs", name, nil)
	}

	f, err := build(dfsURI(name))
	if err != nil {
		return nil, err
	}
	r.dfs[name] = f
	return f, nil
}

// LookupFile returns the instance registered for dir, if any.
func (r *Registry) LookupFile(dir string) (*fs.FileSystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.New(errs.InvalidPath, "lookup-file", dir, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.file[abs]
	if !ok {
		return nil, errs.New(errs.NotFound, "lookup-file", abs, nil)
	}
	return f, nil
}

// LookupDFS returns the instance registered under name, if any.
func (r *Registry) LookupDFS(name string) (*fs.FileSystem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.dfs[name]
	if !ok {
		return nil, errs.New(errs.NotFound, "lookup-dfs", name, nil)
	}
	return f, nil
}

const uriScheme = "gitjfs://"

// LookupURI parses a "gitjfs://" URI's authority and dispatches to
// LookupFile or LookupDFS accordingly, so a caller holding only a URI
// (say, from ToURI or an incoming request) doesn't have to pre-extract
// the directory or name itself. The query suffix, if any, is ignored;
// pass it to gpath.FromURI separately to recover the LogicalPath.
func (r *Registry) LookupURI(uri string) (*fs.FileSystem, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return nil, errs.New(errs.InvalidPath, "lookup-uri", uri, nil)
	}
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		rest = rest[:idx]
	}

	switch {
	case strings.HasPrefix(rest, "FILE"):
		dir := strings.TrimSuffix(rest[len("FILE"):], "/")
		return r.LookupFile(dir)
	case strings.HasPrefix(rest, "DFS/"):
		escaped := rest[len("DFS/"):]
		name, err := gpath.UnescapeDFSName(escaped)
		if err != nil {
			return nil, errs.New(errs.InvalidPath, "lookup-uri", uri, err)
		}
		return r.LookupDFS(name)
	default:
		return nil, errs.New(errs.InvalidPath, "lookup-uri", uri, nil)
	}
}

// Close closes f and removes it from whichever table it is
// registered under. It asserts the instance was present in exactly
// one table; callers should obtain f only from Open*/Lookup* on this
// same Registry.
func (r *Registry) Close(f *fs.FileSystem) error {
	r.mu.Lock()
	removed := false
	for k, v := range r.file {
		if v == f {
			delete(r.file, k)
			removed = true
			break
		}
	}
	if !removed {
		for k, v := range r.dfs {
			if v == f {
				delete(r.dfs, k)
				removed = true
				break
			}
		}
	}
	r.mu.Unlock()

	if !removed {
		return errs.New(errs.NotFound, "close", f.URI(), nil)
	}
	return f.Close()
}
