package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitjfs/gitjfs/errs"
	"github.com/gitjfs/gitjfs/fs"
	"github.com/gitjfs/gitjfs/gitmem"
	"github.com/gitjfs/gitjfs/registry"
)

func build(uri string) (*fs.FileSystem, error) {
	return fs.New(uri, gitmem.NewBuilder().Build(), true), nil
}

func TestOpenFileThenLookupReturnsSameInstance(t *testing.T) {
	r := registry.New()
	f, err := r.OpenFile(t.TempDir(), build)
	require.NoError(t, err)

	got, err := r.LookupFile(f.URI()[len("gitjfs://FILE") : len(f.URI())-1])
	require.NoError(t, err)
	require.Same(t, f, got)
}

func TestOpenFileTwiceOnSameDirFails(t *testing.T) {
	r := registry.New()
	dir := t.TempDir()
	_, err := r.OpenFile(dir, build)
	require.NoError(t, err)

	_, err = r.OpenFile(dir, build)
	require.True(t, errs.Is(err, errs.AlreadyExists))
}

func TestOpenFileBuildFailureLeavesNothingRegistered(t *testing.T) {
	r := registry.New()
	dir := t.TempDir()
	boom := errs.New(errs.IO, "build", dir, nil)

	_, err := r.OpenFile(dir, func(uri string) (*fs.FileSystem, error) {
		return nil, boom
	})
	require.Error(t, err)

	_, err = r.OpenFile(dir, build)
	require.NoError(t, err, "a failed build must not leave the directory registered")
}

func TestLookupFileNotFound(t *testing.T) {
	r := registry.New()
	_, err := r.LookupFile(t.TempDir())
	require.True(t, errs.Is(err, errs.NotFound))
}

func TestLookupURIRoutesOnAuthority(t *testing.T) {
	r := registry.New()
	dir := t.TempDir()
	fileFS, err := r.OpenFile(dir, build)
	require.NoError(t, err)
	dfsFS, err := r.OpenDFS("scratch repo", build)
	require.NoError(t, err)

	got, err := r.LookupURI(fileFS.URI())
	require.NoError(t, err)
	require.Same(t, fileFS, got)

	got, err = r.LookupURI(dfsFS.URI())
	require.NoError(t, err)
	require.Same(t, dfsFS, got)

	got, err = r.LookupURI(fileFS.URI() + "?internal-path=file.txt")
	require.NoError(t, err)
	require.Same(t, fileFS, got)
}

func TestLookupURIRejectsMalformedAuthority(t *testing.T) {
	r := registry.New()
	_, err := r.LookupURI("gitjfs://BOGUS/thing")
	require.True(t, errs.Is(err, errs.InvalidPath))

	_, err = r.LookupURI("not-a-gitjfs-uri")
	require.True(t, errs.Is(err, errs.InvalidPath))
}

func TestOpenDFSThenLookup(t *testing.T) {
	r := registry.New()
	f, err := r.OpenDFS("scratch repo", build)
	require.NoError(t, err)

	got, err := r.LookupDFS("scratch repo")
	require.NoError(t, err)
	require.Same(t, f, got)
}

func TestOpenDFSTwiceOnSameNameFails(t *testing.T) {
	r := registry.New()
	_, err := r.OpenDFS("dup", build)
	require.NoError(t, err)

	_, err = r.OpenDFS("dup", build)
	require.True(t, errs.Is(err, errs.AlreadyExists))
}

func TestLookupDFSNotFound(t *testing.T) {
	r := registry.New()
	_, err := r.LookupDFS("nope")
	require.True(t, errs.Is(err, errs.NotFound))
}

func TestCloseRemovesFromFileTableAndClosesInstance(t *testing.T) {
	r := registry.New()
	dir := t.TempDir()
	f, err := r.OpenFile(dir, build)
	require.NoError(t, err)

	require.NoError(t, r.Close(f))

	_, err = r.LookupFile(dir)
	require.True(t, errs.Is(err, errs.NotFound))

	_, err = f.Refs(context.Background())
	require.True(t, errs.Is(err, errs.ClosedFS))
}

func TestCloseRemovesFromDFSTable(t *testing.T) {
	r := registry.New()
	f, err := r.OpenDFS("mem-repo", build)
	require.NoError(t, err)

	require.NoError(t, r.Close(f))

	_, err = r.LookupDFS("mem-repo")
	require.True(t, errs.Is(err, errs.NotFound))
}

func TestCloseOnUnregisteredInstanceFails(t *testing.T) {
	r := registry.New()
	f := fs.New("gitjfs://FILE/nowhere/", gitmem.NewBuilder().Build(), true)

	err := r.Close(f)
	require.True(t, errs.Is(err, errs.NotFound))
}
