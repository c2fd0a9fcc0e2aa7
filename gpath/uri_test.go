package gpath_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitjfs/gitjfs/gpath"
)

func TestURIRoundTrip(t *testing.T) {
	require := require.New(t)

	root := gpath.RefName{Name: "refs/heads/main"}
	internal, err := gpath.ParseInternal("a/b&c=d")
	require.NoError(err)
	p := gpath.NewAbsolute(root, internal)

	uri := p.ToURI("gitjfs://FILE/repo")
	require.Contains(uri, "root=refs/heads/main")
	require.Contains(uri, "internal-path=")

	_, query, found := strings.Cut(uri, "?")
	require.True(found)
	parsed, err := gpath.FromURI(query)
	require.NoError(err)
	require.True(parsed.Equal(p))
}

func TestFromURIRequiresInternalPath(t *testing.T) {
	_, err := gpath.FromURI("root=refs/heads/main")
	require.Error(t, err)
}

func TestEscapeUnescapeDFSName(t *testing.T) {
	require := require.New(t)

	name := "my repo/sub?dir"
	escaped := gpath.EscapeDFSName(name)
	require.NotContains(escaped, " ")
	require.NotContains(escaped, "?")

	unescaped, err := gpath.UnescapeDFSName(escaped)
	require.NoError(err)
	require.Equal(name, unescaped)
}
