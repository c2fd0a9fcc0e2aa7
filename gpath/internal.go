// Package gpath implements the logical-path algebra gitjfs exposes in
// place of java.nio.file.Path: an InternalPath walks a single commit's
// tree the way a Path walks a file system, and a LogicalPath pairs one
// with a RevisionToken to name a location across the whole commit
// graph. Every method here is a pure value computation; none of it
// touches an object store.
package gpath

import (
	"strings"

	"github.com/gitjfs/gitjfs/errs"
)

const separator = "/"

// InternalPath is a sequence of names, either anchored at a tree's
// root (absolute) or floating (relative), exactly as
// java.nio.file.Path models a file system path. The root itself and
// the empty relative path are both represented by a nil names slice;
// absolute tells them apart.
type InternalPath struct {
	absolute bool
	names    []string
}

// Root is the absolute path with no names, "/".
func Root() InternalPath {
	return InternalPath{absolute: true}
}

// Empty is the relative path with no names, "".
func Empty() InternalPath {
	return InternalPath{}
}

// IsAbsolute reports whether the path is anchored at the tree root.
func (p InternalPath) IsAbsolute() bool {
	return p.absolute
}

// NameCount returns the number of name elements, 0 for both Root and
// Empty.
func (p InternalPath) NameCount() int {
	return len(p.names)
}

// ParseInternal builds an InternalPath from its canonical string
// form: an optional leading "/" marking it absolute, then
// "/"-separated names. Empty names and "." segments are removed
// during parsing, matching the grammar's treatment of the
// internal-path production, and ".." segments are preserved so
// Normalize can see and fold them.
func ParseInternal(s string) (InternalPath, error) {
	if s == "" {
		return Empty(), nil
	}
	absolute := strings.HasPrefix(s, separator)
	body := s
	if absolute {
		body = s[1:]
	}
	var names []string
	for _, seg := range strings.Split(body, separator) {
		switch seg {
		case "", ".":
			continue
		default:
			if strings.Contains(seg, "\x00") {
				return InternalPath{}, errs.New(errs.InvalidPath, "parse", s, nil)
			}
			names = append(names, seg)
		}
	}
	return InternalPath{absolute: absolute, names: names}, nil
}

// String renders the canonical form Parse accepts back.
func (p InternalPath) String() string {
	var b strings.Builder
	if p.absolute {
		b.WriteString(separator)
	}
	for i, n := range p.names {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(n)
	}
	return b.String()
}

// GetName returns the i'th name element as a single-element relative
// path, the InternalPath equivalent of Path.getName(int).
func (p InternalPath) GetName(i int) (InternalPath, bool) {
	if i < 0 || i >= len(p.names) {
		return InternalPath{}, false
	}
	return InternalPath{names: []string{p.names[i]}}, true
}

// Subpath returns the slice of names [begin, end) as a relative path.
func (p InternalPath) Subpath(begin, end int) (InternalPath, bool) {
	if begin < 0 || end > len(p.names) || begin >= end {
		return InternalPath{}, false
	}
	names := append([]string(nil), p.names[begin:end]...)
	return InternalPath{names: names}, true
}

// GetFileName returns the final name element as a relative path, or
// ok=false if the path has no names (Root or Empty).
func (p InternalPath) GetFileName() (InternalPath, bool) {
	if len(p.names) == 0 {
		return InternalPath{}, false
	}
	return InternalPath{names: []string{p.names[len(p.names)-1]}}, true
}

// GetParent returns the path of all but the final name element. It
// returns ok=false exactly when Path.getParent() would return null:
// for Root and for a relative path with a single name.
func (p InternalPath) GetParent() (InternalPath, bool) {
	if len(p.names) == 0 {
		return InternalPath{}, false
	}
	rest := p.names[:len(p.names)-1]
	if len(rest) == 0 {
		if p.absolute {
			return Root(), true
		}
		return InternalPath{}, false
	}
	return InternalPath{absolute: p.absolute, names: append([]string(nil), rest...)}, true
}

// Join appends other's names after p's. Joining an absolute path onto
// anything simply discards p, matching Path.resolve's treatment of an
// absolute argument (Resolve is the operation most callers want;
// Join is the lower-level name-list concatenation it's built from).
func (p InternalPath) Join(other InternalPath) InternalPath {
	if other.absolute {
		return other
	}
	if len(other.names) == 0 {
		return p
	}
	names := make([]string, 0, len(p.names)+len(other.names))
	names = append(names, p.names...)
	names = append(names, other.names...)
	return InternalPath{absolute: p.absolute, names: names}
}

// Resolve is java.nio.file.Path.resolve: if other is absolute, it is
// returned unchanged; if other is empty, p is returned unchanged;
// otherwise other's names are appended to p's.
func (p InternalPath) Resolve(other InternalPath) InternalPath {
	return p.Join(other)
}

// Normalize collapses "." and ".." segments the way
// java.nio.file.Path.normalize does: a ".." cancels the preceding
// real name if there is one; an absolute path silently drops any
// leading ".." (it can never ascend past the root); a relative path
// keeps leading ".." segments since there is nothing for them to
// cancel.
func (p InternalPath) Normalize() InternalPath {
	var out []string
	for _, n := range p.names {
		if n == ".." {
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
				continue
			}
			if p.absolute {
				continue
			}
			out = append(out, n)
			continue
		}
		out = append(out, n)
	}
	return InternalPath{absolute: p.absolute, names: out}
}

// StartsWith reports whether p begins with other's full name
// sequence and the two paths agree on absoluteness.
func (p InternalPath) StartsWith(other InternalPath) bool {
	if p.absolute != other.absolute {
		return false
	}
	if len(other.names) > len(p.names) {
		return false
	}
	for i, n := range other.names {
		if p.names[i] != n {
			return false
		}
	}
	return true
}

// EndsWith reports whether p ends with other's full name sequence. A
// relative other may match at the end of an absolute p; an absolute
// other must equal p exactly, mirroring Path.endsWith.
func (p InternalPath) EndsWith(other InternalPath) bool {
	if other.absolute {
		return p.absolute && p.Equal(other)
	}
	if len(other.names) > len(p.names) {
		return false
	}
	offset := len(p.names) - len(other.names)
	for i, n := range other.names {
		if p.names[offset+i] != n {
			return false
		}
	}
	return true
}

// Relativize returns a relative path r such that p.Resolve(r),
// normalized, reaches other, i.e. the Path.relativize computation. It
// requires p and other to share absoluteness, matching the Java
// contract.
func (p InternalPath) Relativize(other InternalPath) (InternalPath, bool) {
	if p.absolute != other.absolute {
		return InternalPath{}, false
	}
	n := 0
	for n < len(p.names) && n < len(other.names) && p.names[n] == other.names[n] {
		n++
	}
	var names []string
	for i := n; i < len(p.names); i++ {
		names = append(names, "..")
	}
	names = append(names, other.names[n:]...)
	return InternalPath{names: names}, true
}

// Equal reports whether p and other have the same absoluteness and
// name sequence.
func (p InternalPath) Equal(other InternalPath) bool {
	return p.CompareTo(other) == 0
}

// CompareTo orders paths the way Path.compareTo does: relative before
// absolute, then lexicographically by name, element by element, with
// a shorter path-with-all-equal-names-so-far sorting before a longer
// one.
func (p InternalPath) CompareTo(other InternalPath) int {
	if p.absolute != other.absolute {
		if p.absolute {
			return 1
		}
		return -1
	}
	for i := 0; i < len(p.names) && i < len(other.names); i++ {
		if c := strings.Compare(p.names[i], other.names[i]); c != 0 {
			return c
		}
	}
	return len(p.names) - len(other.names)
}
