package fs

import (
	"context"

	"github.com/gitjfs/gitjfs/errs"
	"github.com/gitjfs/gitjfs/gpath"
	"github.com/gitjfs/gitjfs/objstore"
	"github.com/gitjfs/gitjfs/resolver"
)

// DirStream is a lazy, single-pass iterator over a directory's
// entries, registered with its owning FileSystem so Close can cascade
// to every still-open stream. HasNext must read ahead by one
// element so that once it has returned true, Next performs no I/O.
type DirStream struct {
	fs      *FileSystem
	filter  func(gpath.InternalPath) bool
	dir     gpath.LogicalPath
	reader  objstore.TreeReader
	started bool
	closed  bool

	pending    objstore.TreeEntry
	pendingOK  bool
	pendingErr error
}

// NewDirectoryStream opens an iterator over dir's entries. filter may
// be nil to accept every entry; otherwise only entries whose
// single-name relative path satisfies filter are yielded.
func (f *FileSystem) NewDirectoryStream(ctx context.Context, dir gpath.LogicalPath, filter func(gpath.InternalPath) bool) (*DirStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpen("new-directory-stream"); err != nil {
		return nil, err
	}

	dir, ref, err := f.resolve(ctx, dir, resolver.FollowExceptFinal)
	if err != nil {
		return nil, err
	}
	if ref.Mode != objstore.ModeTree {
		return nil, errs.New(errs.NotADirectory, "new-directory-stream", dir.String(), nil)
	}

	reader, err := f.store.ReadTree(ctx, ref.OID)
	if err != nil {
		return nil, errs.New(errs.IO, "new-directory-stream", dir.String(), err)
	}

	ds := &DirStream{fs: f, filter: filter, dir: dir, reader: reader}
	f.streams[ds] = struct{}{}
	return ds, nil
}

// HasNext reports whether Next will yield another entry, reading one
// entry ahead (skipping any filtered out) so the answer requires no
// further I/O from Next.
func (d *DirStream) HasNext() bool {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	if d.closed {
		return false
	}
	if d.pendingOK || d.pendingErr != nil {
		return d.pendingOK
	}
	for {
		entry, ok, err := d.reader.Next()
		if err != nil {
			d.pendingErr = err
			return false
		}
		if !ok {
			return false
		}
		name, perr := gpath.ParseInternal(entry.Name)
		if perr != nil {
			continue
		}
		if d.filter != nil && !d.filter(name) {
			continue
		}
		d.pending, d.pendingOK = entry, true
		return true
	}
}

// Next returns the next entry's name (as a single-element relative
// path) and file mode. Callers must call HasNext first; calling Next
// without a prior true HasNext call, or after exhaustion, returns
// IllegalState.
func (d *DirStream) Next() (gpath.InternalPath, objstore.FileMode, error) {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	if !d.pendingOK {
		if d.pendingErr != nil {
			err := d.pendingErr
			d.pendingErr = nil
			return gpath.InternalPath{}, 0, errs.New(errs.IO, "directory-stream-next", d.dir.String(), err)
		}
		return gpath.InternalPath{}, 0, errs.New(errs.IllegalState, "directory-stream-next", d.dir.String(), nil)
	}
	entry := d.pending
	d.pendingOK = false
	name, _ := gpath.ParseInternal(entry.Name)
	return name, entry.Mode, nil
}

// Close releases the underlying tree reader and unregisters the
// stream from its owning FileSystem. Idempotent.
func (d *DirStream) Close() error {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	return d.closeLocked()
}

// closeLocked performs the actual close; callers must hold d.fs.mu.
func (d *DirStream) closeLocked() error {
	if d.closed {
		return nil
	}
	d.closed = true
	delete(d.fs.streams, d)
	if err := d.reader.Close(); err != nil {
		return errs.New(errs.IO, "close-directory-stream", d.dir.String(), err)
	}
	return nil
}
