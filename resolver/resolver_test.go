package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitjfs/gitjfs/gitmem"
	"github.com/gitjfs/gitjfs/gpath"
	"github.com/gitjfs/gitjfs/objstore"
	"github.com/gitjfs/gitjfs/resolver"
)

func mustInternal(t *testing.T, s string) gpath.InternalPath {
	t.Helper()
	p, err := gpath.ParseInternal(s)
	require.NoError(t, err)
	return p
}

// buildFixture constructs:
//
//	/file.txt               (regular)
//	/a/b/deep.txt           (regular)
//	/a/link -> b/deep.txt   (symlink to a regular file one level down)
//	/root-link -> file.txt  (symlink directly under the tree root)
//	/cycle -> cycle         (self-referential symlink)
func buildFixture() (*gitmem.Store, objstore.OID) {
	b := gitmem.NewBuilder()

	fileOID := b.Blob([]byte("hello"))
	deepOID := b.Blob([]byte("deep"))
	linkOID := b.Blob([]byte("b/deep.txt"))
	rootLinkOID := b.Blob([]byte("file.txt"))
	cycleOID := b.Blob([]byte("cycle"))

	bTree := b.Tree(
		gitmem.Entry{Name: "deep.txt", OID: deepOID, Mode: objstore.ModeRegular},
	)
	aTree := b.Tree(
		gitmem.Entry{Name: "b", OID: bTree, Mode: objstore.ModeTree},
		gitmem.Entry{Name: "link", OID: linkOID, Mode: objstore.ModeSymlink},
	)
	root := b.Tree(
		gitmem.Entry{Name: "file.txt", OID: fileOID, Mode: objstore.ModeRegular},
		gitmem.Entry{Name: "a", OID: aTree, Mode: objstore.ModeTree},
		gitmem.Entry{Name: "root-link", OID: rootLinkOID, Mode: objstore.ModeSymlink},
		gitmem.Entry{Name: "cycle", OID: cycleOID, Mode: objstore.ModeSymlink},
	)
	return b.Build(), root
}

func TestResolveRegularFile(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "file.txt"), resolver.NoFollow)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeRegular, ref.Mode)
}

func TestResolveIntoDirectory(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "a/b/deep.txt"), resolver.NoFollow)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeRegular, ref.Mode)
	require.Equal(t, "/a/b/deep.txt", ref.RealPath.String())
}

func TestResolveMissingName(t *testing.T) {
	store, root := buildFixture()
	_, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "nope"), resolver.NoFollow)
	require.Error(t, err)
}

func TestResolveThroughRegularFileFails(t *testing.T) {
	store, root := buildFixture()
	_, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "file.txt/more"), resolver.NoFollow)
	require.Error(t, err)
}

func TestNoFollowReturnsSymlinkItself(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "a/link"), resolver.NoFollow)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeSymlink, ref.Mode)
}

func TestNoFollowFailsOnMidPathSymlink(t *testing.T) {
	store, root := buildFixture()
	_, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "a/link/more"), resolver.NoFollow)
	require.Error(t, err)
}

func TestFollowAllExpandsTrailingSymlink(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "a/link"), resolver.FollowAll)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeRegular, ref.Mode)
	require.Equal(t, "/a/b/deep.txt", ref.RealPath.String())
}

func TestFollowExceptFinalLeavesTrailingSymlinkUnexpanded(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "a/link"), resolver.FollowExceptFinal)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeSymlink, ref.Mode)
}

// A symlink directly under the tree root exercises the case that once
// corrupted the tree stack: the symlink's containing directory is the
// root itself, at the bottom of the stack.
func TestFollowSymlinkDirectlyUnderRoot(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "root-link"), resolver.FollowAll)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeRegular, ref.Mode)
	require.Equal(t, "/file.txt", ref.RealPath.String())
}

func TestSelfReferentialSymlinkFailsInsteadOfLooping(t *testing.T) {
	store, root := buildFixture()
	_, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "cycle"), resolver.FollowAll)
	require.Error(t, err)
}

func TestResolveEmptyPathReturnsRoot(t *testing.T) {
	store, root := buildFixture()
	ref, err := resolver.Resolve(context.Background(), store, root, gpath.Empty(), resolver.NoFollow)
	require.NoError(t, err)
	require.Equal(t, objstore.ModeTree, ref.Mode)
	require.Equal(t, root, ref.OID)
}

func TestDotDotAboveRootFails(t *testing.T) {
	store, root := buildFixture()
	_, err := resolver.Resolve(context.Background(), store, root, mustInternal(t, "../x"), resolver.NoFollow)
	require.Error(t, err)
}
