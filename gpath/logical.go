package gpath

import (
	"strings"

	"github.com/gitjfs/gitjfs/errs"
)

// LogicalPath is a RevisionToken (nil for a relative path) composed
// with an InternalPath, the "<root>//<internal>" form the rest of the
// module passes around. The InternalPath operations (GetParent,
// Resolve, Normalize and the rest) are not lifted onto LogicalPath;
// navigation goes through Internal(). LogicalPath adds the two
// operations that need the root: ToAbsolutePath and GetRoot.
type LogicalPath struct {
	root     RevisionToken
	internal InternalPath
}

// New composes a root-less (relative) logical path.
func New(internal InternalPath) LogicalPath {
	return LogicalPath{internal: internal}
}

// NewAbsolute composes an absolute logical path anchored at root.
func NewAbsolute(root RevisionToken, internal InternalPath) LogicalPath {
	return LogicalPath{root: root, internal: internal.withAbsolute(true)}
}

func (p InternalPath) withAbsolute(abs bool) InternalPath {
	p.absolute = abs
	return p
}

// IsAbsolute reports whether p carries a revision token.
func (p LogicalPath) IsAbsolute() bool {
	return p.root != nil
}

// Internal returns the internal-path component.
func (p LogicalPath) Internal() InternalPath {
	return p.internal
}

// Root returns the revision token and whether one is present.
func (p LogicalPath) Root() (RevisionToken, bool) {
	return p.root, p.root != nil
}

// GetRoot returns the root-only form of p (its revision token with an
// empty absolute internal path) if p is absolute; ok=false otherwise.
func (p LogicalPath) GetRoot() (LogicalPath, bool) {
	if p.root == nil {
		return LogicalPath{}, false
	}
	return LogicalPath{root: p.root, internal: Root()}, true
}

// ToAbsolutePath returns p unchanged if it is already absolute;
// otherwise it anchors p's internal path at defaultRoot, prefixing it
// with "/". Idempotent: calling it again on the result is a no-op.
func (p LogicalPath) ToAbsolutePath(defaultRoot RevisionToken) LogicalPath {
	if p.root != nil {
		return p
	}
	return LogicalPath{root: defaultRoot, internal: p.internal.withAbsolute(true)}
}

// String renders the canonical "<root>//<internal>" form for an
// absolute path, or the bare internal-path string for a relative one.
func (p LogicalPath) String() string {
	if p.root == nil {
		return p.internal.String()
	}
	return "/" + p.root.String() + "/" + p.internal.String()
}

// Parse parses the canonical logical-path string grammar, "<root>//
// <internal>": an absolute path's root component may itself contain
// "/" (a ref name like "refs/heads/main" does), so the split point is
// the first "//" marker, not the first single "/"; a relative path is
// a bare internal-path string with no marker.
func Parse(s string) (LogicalPath, error) {
	if !strings.HasPrefix(s, "/") {
		internal, err := ParseInternal(s)
		if err != nil {
			return LogicalPath{}, err
		}
		return LogicalPath{internal: internal}, nil
	}
	rest := s[1:]
	idx := strings.Index(rest, "//")
	if idx < 0 {
		return LogicalPath{}, errs.New(errs.InvalidPath, "parse", s, nil)
	}
	rootStr, tail := rest[:idx], rest[idx+1:]
	if rootStr == "" {
		return LogicalPath{}, errs.New(errs.InvalidPath, "parse", s, nil)
	}
	root, err := ParseRevisionToken(rootStr)
	if err != nil {
		return LogicalPath{}, errs.New(errs.InvalidPath, "parse", s, err)
	}
	internal, err := ParseInternal(tail)
	if err != nil {
		return LogicalPath{}, err
	}
	return LogicalPath{root: root, internal: internal.withAbsolute(true)}, nil
}

// CompareTo orders logical paths: relative before absolute; among
// absolute paths, by revision-token string, then by internal path.
func (p LogicalPath) CompareTo(other LogicalPath) int {
	if (p.root == nil) != (other.root == nil) {
		if p.root == nil {
			return -1
		}
		return 1
	}
	if p.root != nil {
		if c := strings.Compare(p.root.String(), other.root.String()); c != 0 {
			return c
		}
	}
	return p.internal.CompareTo(other.internal)
}

// Equal reports whether p and other denote the same logical path.
func (p LogicalPath) Equal(other LogicalPath) bool {
	return p.CompareTo(other) == 0
}
