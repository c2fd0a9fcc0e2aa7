package gitcli_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gitjfs/gitjfs/internal/testutils"
	"github.com/gitjfs/gitjfs/objstore"
)

func TestReadBlobTreeAndCommit(t *testing.T) {
	repo := testutils.NewTestRepo(t, true, "gitcli")
	defer repo.Remove(t)

	blobOID := repo.CreateObject(t, objstore.ObjectBlob, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "hello")
		return err
	})
	treeOID := repo.CreateObject(t, objstore.ObjectTree, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "100644 a.txt\x00%s", blobOID.Bytes())
		return err
	})
	commitOID := repo.CreateObject(t, objstore.ObjectCommit, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"tree %s\n"+
				"author Example <example@example.com> 1112911993 -0700\n"+
				"committer Example <example@example.com> 1112911993 -0700\n"+
				"\n"+
				"initial\n", treeOID)
		return err
	})
	repo.UpdateRef(t, "refs/heads/main", commitOID)

	store := repo.Store(t)
	defer store.Close()
	ctx := context.Background()

	data, err := store.ReadBlob(ctx, blobOID)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	reader, err := store.ReadTree(ctx, treeOID)
	require.NoError(t, err)
	entry, ok, err := reader.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a.txt", entry.Name)
	require.Equal(t, objstore.ModeRegular, entry.Mode)
	_, ok, err = reader.Next()
	require.NoError(t, err)
	require.False(t, ok)

	info, err := store.ReadCommit(ctx, commitOID)
	require.NoError(t, err)
	require.Equal(t, treeOID, info.Tree)
	require.Empty(t, info.Parents)
	require.Equal(t, "Example", info.Author.Name)
}

func TestListRefsFiltersByPrefix(t *testing.T) {
	repo := testutils.NewTestRepo(t, true, "gitcli")
	defer repo.Remove(t)

	main := repo.CreateReferencedOrphan(t, "refs/heads/main")
	repo.CreateReferencedOrphan(t, "refs/tags/v1")

	store := repo.Store(t)
	defer store.Close()

	refs, err := store.ListRefs(context.Background(), "refs/heads/")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, "refs/heads/main", refs[0].Name)
	require.Equal(t, main, refs[0].OID)
}

func TestDiffReportsAddedFile(t *testing.T) {
	repo := testutils.NewTestRepo(t, false, "gitcli")
	defer repo.Remove(t)

	timestamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	repo.AddFile(t, "a.txt", "one")
	cmd := repo.GitCommand(t, "commit", "-m", "first")
	testutils.AddAuthorInfo(cmd, &timestamp)
	require.NoError(t, cmd.Run())
	first := revParse(t, repo, "HEAD")

	repo.AddFile(t, "b.txt", "two")
	cmd = repo.GitCommand(t, "commit", "-m", "second")
	testutils.AddAuthorInfo(cmd, &timestamp)
	require.NoError(t, cmd.Run())
	second := revParse(t, repo, "HEAD")

	store := repo.Store(t)
	defer store.Close()

	entries, err := store.Diff(context.Background(), first, second)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, objstore.ChangeAdd, entries[0].Type)
	require.Equal(t, "b.txt", entries[0].NewPath)
}

func TestReadBlobOnUnreachableObjectFails(t *testing.T) {
	repo := testutils.NewTestRepo(t, true, "gitcli")
	defer repo.Remove(t)

	repo.CreateReferencedOrphan(t, "refs/heads/main")
	orphanBlob := repo.CreateObject(t, objstore.ObjectBlob, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "never referenced")
		return err
	})

	store := repo.Store(t)
	defer store.Close()

	_, err := store.ReadBlob(context.Background(), orphanBlob)
	require.ErrorIs(t, err, objstore.ErrNotFound)
}

func revParse(t *testing.T, repo *testutils.TestRepo, rev string) objstore.OID {
	t.Helper()
	out, err := repo.GitCommand(t, "rev-parse", rev).Output()
	require.NoError(t, err)
	oid, err := objstore.NewOID(string(out[:len(out)-1]))
	require.NoError(t, err)
	return oid
}
