package gpath

import (
	"fmt"
	"strings"

	"github.com/gitjfs/gitjfs/errs"
	"github.com/gitjfs/gitjfs/objstore"
)

// RevisionToken is the part of a logical path that selects a commit:
// either a concrete CommitID or a RefName that is resolved against the
// commit graph at access time. It is the root component of a
// LogicalPath, the "<root>" in "<root>//<internal>".
type RevisionToken interface {
	fmt.Stringer
	isRevisionToken()
}

// CommitID pins a logical path to one immutable commit.
type CommitID struct {
	OID objstore.OID
}

func (CommitID) isRevisionToken() {}

func (c CommitID) String() string {
	return c.OID.String()
}

// RefName pins a logical path to whatever commit a named reference
// currently points at. Two LogicalPaths built from the same RefName
// can therefore resolve to different commits over time, or even
// across two calls on the same open instance if the underlying
// repository is mutated out from under it (the specification leaves
// that case as a caller-visible race, not one gitjfs hides).
type RefName struct {
	Name string
}

func (RefName) isRevisionToken() {}

func (r RefName) String() string {
	return r.Name
}

// DefaultRef is the reference gitjfs resolves when a caller opens a
// file system without naming a specific revision.
const DefaultRef = "refs/heads/main"

// ParseRevisionToken parses the root component of a canonical logical
// path string. A 40-character lowercase-hex string is treated as a
// CommitID; anything shaped like a ref name (begins with "refs/",
// contains no "//" or "\", does not end with "/") is a RefName. Any
// other shape fails with errs.InvalidPath.
func ParseRevisionToken(s string) (RevisionToken, error) {
	if s == "" {
		return nil, errs.New(errs.InvalidPath, "parse-revision-token", s, nil)
	}
	if looksLikeOID(s) {
		oid, err := objstore.NewOID(s)
		if err == nil {
			return CommitID{OID: oid}, nil
		}
	}
	if !isValidRefName(s) {
		return nil, errs.New(errs.InvalidPath, "parse-revision-token", s, nil)
	}
	return RefName{Name: s}, nil
}

// isValidRefName reports whether s has the shape required of a ref
// name root: it begins with "refs/", contains neither "//" nor "\",
// and does not end with "/".
func isValidRefName(s string) bool {
	if !strings.HasPrefix(s, "refs/") {
		return false
	}
	if strings.Contains(s, "//") || strings.Contains(s, "\\") {
		return false
	}
	if strings.HasSuffix(s, "/") {
		return false
	}
	return true
}

func looksLikeOID(s string) bool {
	if len(s) != objstore.HashSize*2 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) == -1
}
