package fs

import "github.com/gitjfs/gitjfs/errs"

// This file collects the NIO-style operations the specification
// requires to fail unconditionally: every mutator fails read-only-fs,
// every non-applicable query fails unsupported. None of them touch
// the object store or take the instance lock, since there is nothing
// for them to do.

// CreateDirectory always fails: gitjfs is read-only.
func (f *FileSystem) CreateDirectory() error { return errs.New(errs.ReadOnlyFS, "create-directory", "", nil) }

// CreateLink always fails: gitjfs is read-only.
func (f *FileSystem) CreateLink() error { return errs.New(errs.ReadOnlyFS, "create-link", "", nil) }

// CreateSymbolicLink always fails: gitjfs is read-only.
func (f *FileSystem) CreateSymbolicLink() error {
	return errs.New(errs.ReadOnlyFS, "create-symbolic-link", "", nil)
}

// Delete always fails: gitjfs is read-only.
func (f *FileSystem) Delete() error { return errs.New(errs.ReadOnlyFS, "delete", "", nil) }

// DeleteIfExists always fails: gitjfs is read-only.
func (f *FileSystem) DeleteIfExists() error { return errs.New(errs.ReadOnlyFS, "delete-if-exists", "", nil) }

// Copy always fails: gitjfs is read-only.
func (f *FileSystem) Copy() error { return errs.New(errs.ReadOnlyFS, "copy", "", nil) }

// Move always fails: gitjfs is read-only.
func (f *FileSystem) Move() error { return errs.New(errs.ReadOnlyFS, "move", "", nil) }

// SetAttribute always fails: gitjfs is read-only.
func (f *FileSystem) SetAttribute() error { return errs.New(errs.ReadOnlyFS, "set-attribute", "", nil) }

// GetFileStores is not applicable to gitjfs: a commit tree has no
// notion of a backing file store.
func (f *FileSystem) GetFileStores() error { return errs.New(errs.Unsupported, "get-file-stores", "", nil) }

// NewWatchService is not applicable: a commit tree is immutable, so
// there is nothing to watch.
func (f *FileSystem) NewWatchService() error {
	return errs.New(errs.Unsupported, "new-watch-service", "", nil)
}

// GetUserPrincipalLookupService is not applicable: Git tree entries
// carry no OS user/group ownership.
func (f *FileSystem) GetUserPrincipalLookupService() error {
	return errs.New(errs.Unsupported, "get-user-principal-lookup-service", "", nil)
}

// GetPathMatcher is not applicable: glob/regex path matching is
// explicitly out of scope.
func (f *FileSystem) GetPathMatcher() error { return errs.New(errs.Unsupported, "get-path-matcher", "", nil) }

// IsHidden is not applicable: gitjfs has no hidden-file convention.
func (f *FileSystem) IsHidden() error { return errs.New(errs.Unsupported, "is-hidden", "", nil) }

// IsSameFile is not applicable beyond what logical-path equality
// already gives callers.
func (f *FileSystem) IsSameFile() error { return errs.New(errs.Unsupported, "is-same-file", "", nil) }

// GetFileStore is not applicable, for the same reason as
// GetFileStores.
func (f *FileSystem) GetFileStore() error { return errs.New(errs.Unsupported, "get-file-store", "", nil) }

// GetFileAttributeView only supports "basic"; any other view name is
// unsupported.
func (f *FileSystem) GetFileAttributeView(name string) error {
	if name == "basic" {
		return nil
	}
	return errs.New(errs.Unsupported, "get-file-attribute-view", name, nil)
}
