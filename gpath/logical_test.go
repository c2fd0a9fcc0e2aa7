package gpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitjfs/gitjfs/gpath"
)

func TestParseRevisionTokenDistinguishesOIDFromRef(t *testing.T) {
	assert := assert.New(t)

	tok, err := gpath.ParseRevisionToken("refs/heads/main")
	require.NoError(t, err)
	ref, ok := tok.(gpath.RefName)
	assert.True(ok)
	assert.Equal("refs/heads/main", ref.Name)

	oidStr := "0123456789abcdef0123456789abcdef01234567"
	tok, err = gpath.ParseRevisionToken(oidStr)
	require.NoError(t, err)
	commit, ok := tok.(gpath.CommitID)
	assert.True(ok)
	assert.Equal(oidStr, commit.OID.String())
}

func TestParseRevisionTokenRejectsEmpty(t *testing.T) {
	_, err := gpath.ParseRevisionToken("")
	assert.Error(t, err)
}

func TestParseRevisionTokenRejectsMalformedRefShape(t *testing.T) {
	for _, s := range []string{
		"foo",              // missing "refs/" prefix
		"refs//x",          // contains "//"
		"refs/heads/main/", // trailing "/"
		"refs/heads\\main", // backslash
	} {
		_, err := gpath.ParseRevisionToken(s)
		assert.Errorf(t, err, "expected %q to be rejected", s)
	}
}

func TestParseRevisionTokenRejectsUppercaseHexAsOID(t *testing.T) {
	_, err := gpath.ParseRevisionToken("0123456789ABCDEF0123456789ABCDEF01234567")
	assert.Error(t, err, "uppercase hex is not a valid OID shape and does not start with refs/")
}

func TestLogicalPathRoundTrip(t *testing.T) {
	require := require.New(t)

	root, err := gpath.ParseRevisionToken("refs/heads/main")
	require.NoError(err)
	internal, err := gpath.ParseInternal("a/b/c")
	require.NoError(err)

	p := gpath.NewAbsolute(root, internal)
	s := p.String()
	require.Equal("/refs/heads/main//a/b/c", s)

	parsed, err := gpath.Parse(s)
	require.NoError(err)
	require.True(parsed.Equal(p))
}

func TestLogicalPathRelativeHasNoRoot(t *testing.T) {
	require := require.New(t)

	internal, err := gpath.ParseInternal("a/b")
	require.NoError(err)
	p := gpath.New(internal)
	require.False(p.IsAbsolute())
	_, ok := p.Root()
	require.False(ok)
	require.Equal("a/b", p.String())
}

func TestToAbsolutePathIsIdempotent(t *testing.T) {
	require := require.New(t)

	internal, _ := gpath.ParseInternal("a")
	p := gpath.New(internal)
	root := gpath.RefName{Name: "refs/heads/main"}

	abs := p.ToAbsolutePath(root)
	require.True(abs.IsAbsolute())

	again := abs.ToAbsolutePath(gpath.RefName{Name: "refs/heads/other"})
	require.True(again.Equal(abs), "ToAbsolutePath is a no-op once already absolute")
}

func TestGetRoot(t *testing.T) {
	require := require.New(t)

	root := gpath.RefName{Name: "refs/heads/main"}
	internal, _ := gpath.ParseInternal("a/b")
	p := gpath.NewAbsolute(root, internal)

	rootOnly, ok := p.GetRoot()
	require.True(ok)
	require.Equal("/refs/heads/main//", rootOnly.String())
}
