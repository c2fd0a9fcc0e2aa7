package fs_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gitjfs/gitjfs/errs"
	"github.com/gitjfs/gitjfs/fs"
	"github.com/gitjfs/gitjfs/gitmem"
	"github.com/gitjfs/gitjfs/gpath"
	"github.com/gitjfs/gitjfs/objstore"
)

// fixture builds a tiny repository:
//
//	refs/heads/main -> commit with tree { file.txt, dir/nested.txt, link -> file.txt }
func fixture(t *testing.T) (*fs.FileSystem, gpath.RevisionToken) {
	t.Helper()
	b := gitmem.NewBuilder()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sig := gitmem.Sig("Author", "author@example.com", when)

	fileOID := b.Blob([]byte("hello world"))
	nestedOID := b.Blob([]byte("nested"))
	linkOID := b.Blob([]byte("file.txt"))
	execOID := b.Blob([]byte("#!/bin/sh\n"))

	dirTree := b.Tree(gitmem.Entry{Name: "nested.txt", OID: nestedOID, Mode: objstore.ModeRegular})
	root := b.Tree(
		gitmem.Entry{Name: "file.txt", OID: fileOID, Mode: objstore.ModeRegular},
		gitmem.Entry{Name: "dir", OID: dirTree, Mode: objstore.ModeTree},
		gitmem.Entry{Name: "link", OID: linkOID, Mode: objstore.ModeSymlink},
		gitmem.Entry{Name: "run.sh", OID: execOID, Mode: objstore.ModeExecutable},
	)
	commit := b.Commit(gitmem.CommitSpec{Tree: root, Author: sig, Committer: sig, Message: "initial"})
	b.Ref("refs/heads/main", commit)
	store := b.Build()

	instance := fs.New("gitjfs://FILE/repo", store, true)
	return instance, gpath.RefName{Name: "refs/heads/main"}
}

func TestRelativePathIsPromotedAgainstDefaultRef(t *testing.T) {
	instance, _ := fixture(t)
	internal, err := gpath.ParseInternal("file.txt")
	require.NoError(t, err)
	relative := gpath.New(internal)
	require.False(t, relative.IsAbsolute())

	ch, err := instance.NewByteChannel(context.Background(), relative, false)
	require.NoError(t, err)
	defer ch.Close()

	data, err := io.ReadAll(ch)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestNewByteChannelReadsBlobContent(t *testing.T) {
	instance, root := fixture(t)
	internal, _ := gpath.ParseInternal("file.txt")
	path := gpath.NewAbsolute(root, internal)

	ch, err := instance.NewByteChannel(context.Background(), path, false)
	require.NoError(t, err)
	defer ch.Close()

	data, err := io.ReadAll(ch)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestNewByteChannelOnDirectoryFails(t *testing.T) {
	instance, root := fixture(t)
	internal, _ := gpath.ParseInternal("dir")
	path := gpath.NewAbsolute(root, internal)

	_, err := instance.NewByteChannel(context.Background(), path, false)
	require.True(t, errs.Is(err, errs.NotADirectory))
}

func TestNewByteChannelWritableFails(t *testing.T) {
	instance, root := fixture(t)
	internal, _ := gpath.ParseInternal("file.txt")
	path := gpath.NewAbsolute(root, internal)

	_, err := instance.NewByteChannel(context.Background(), path, true)
	require.True(t, errs.Is(err, errs.ReadOnlyFS))
}

func TestReadAttributesDirectoryVsRegular(t *testing.T) {
	instance, root := fixture(t)

	fileInternal, _ := gpath.ParseInternal("file.txt")
	attrs, err := instance.ReadAttributes(context.Background(), gpath.NewAbsolute(root, fileInternal), true)
	require.NoError(t, err)
	require.True(t, attrs.IsRegularFile)
	require.EqualValues(t, len("hello world"), attrs.Size)

	dirInternal, _ := gpath.ParseInternal("dir")
	attrs, err = instance.ReadAttributes(context.Background(), gpath.NewAbsolute(root, dirInternal), true)
	require.NoError(t, err)
	require.True(t, attrs.IsDirectory)
}

func TestReadSymbolicLink(t *testing.T) {
	instance, root := fixture(t)
	linkInternal, _ := gpath.ParseInternal("link")
	target, err := instance.ReadSymbolicLink(context.Background(), gpath.NewAbsolute(root, linkInternal))
	require.NoError(t, err)
	require.Equal(t, "file.txt", target.String())
}

func TestReadSymbolicLinkOnNonLinkFails(t *testing.T) {
	instance, root := fixture(t)
	fileInternal, _ := gpath.ParseInternal("file.txt")
	_, err := instance.ReadSymbolicLink(context.Background(), gpath.NewAbsolute(root, fileInternal))
	require.True(t, errs.Is(err, errs.NotALink))
}

func TestCheckAccessExecute(t *testing.T) {
	instance, root := fixture(t)

	execInternal, _ := gpath.ParseInternal("run.sh")
	require.NoError(t, instance.CheckAccess(context.Background(), gpath.NewAbsolute(root, execInternal), fs.Execute))

	fileInternal, _ := gpath.ParseInternal("file.txt")
	err := instance.CheckAccess(context.Background(), gpath.NewAbsolute(root, fileInternal), fs.Execute)
	require.True(t, errs.Is(err, errs.AccessDenied))
}

func TestCheckAccessWriteAlwaysFails(t *testing.T) {
	instance, root := fixture(t)
	fileInternal, _ := gpath.ParseInternal("file.txt")
	err := instance.CheckAccess(context.Background(), gpath.NewAbsolute(root, fileInternal), fs.Write)
	require.True(t, errs.Is(err, errs.ReadOnlyFS))
}

func TestDirectoryStreamListsAllEntries(t *testing.T) {
	instance, root := fixture(t)

	stream, err := instance.NewDirectoryStream(context.Background(), gpath.NewAbsolute(root, gpath.Root()), nil)
	require.NoError(t, err)
	defer stream.Close()

	names := map[string]bool{}
	for stream.HasNext() {
		name, _, err := stream.Next()
		require.NoError(t, err)
		names[name.String()] = true
	}
	require.Equal(t, map[string]bool{"file.txt": true, "dir": true, "link": true, "run.sh": true}, names)
}

func TestDirectoryStreamNextWithoutHasNextIsIllegalState(t *testing.T) {
	instance, root := fixture(t)
	stream, err := instance.NewDirectoryStream(context.Background(), gpath.NewAbsolute(root, gpath.Root()), nil)
	require.NoError(t, err)
	defer stream.Close()

	stream.HasNext()
	_, _, err = stream.Next()
	require.NoError(t, err)

	_, _, err = stream.Next()
	require.True(t, errs.Is(err, errs.IllegalState))
}

func TestCloseCascadesToOpenStreams(t *testing.T) {
	instance, root := fixture(t)
	stream, err := instance.NewDirectoryStream(context.Background(), gpath.NewAbsolute(root, gpath.Root()), nil)
	require.NoError(t, err)

	require.NoError(t, instance.Close())
	require.False(t, stream.HasNext(), "a stream of a closed instance reports no further entries")
}

func TestOperationsOnClosedInstanceFail(t *testing.T) {
	instance, root := fixture(t)
	require.NoError(t, instance.Close())

	fileInternal, _ := gpath.ParseInternal("file.txt")
	_, err := instance.NewByteChannel(context.Background(), gpath.NewAbsolute(root, fileInternal), false)
	require.True(t, errs.Is(err, errs.ClosedFS))
}

func TestRefsListsAdvertisedRefs(t *testing.T) {
	instance, root := fixture(t)
	_ = root

	refs, err := instance.Refs(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	name, ok := refs[0].Root()
	require.True(t, ok)
	require.Equal(t, "refs/heads/main", name.String())
}

func TestGraphIsMemoized(t *testing.T) {
	instance, _ := fixture(t)

	g1, err := instance.Graph(context.Background(), nil)
	require.NoError(t, err)
	g2, err := instance.Graph(context.Background(), nil)
	require.NoError(t, err)
	require.Same(t, g1, g2)
}
