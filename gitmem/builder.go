package gitmem

import (
	"bytes"
	//nolint:gosec // content-addressing follows Git's own choice of hash
	"crypto/sha1"
	"fmt"
	"sort"
	"time"

	"github.com/gitjfs/gitjfs/objstore"
)

// Builder assembles a Store by the same fluent, depth-first recipe
// the specification requires of any path-resolution client: referents
// before referers. Every Blob/Tree/Commit call returns the OID the
// object was hashed to, computed exactly the way git hash-object
// would (the object's Git type, a space, its decimal length, a NUL,
// then its contents), so ids minted by a Builder look and compare
// like ids a real repository would produce.
type Builder struct {
	s *Store
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		s: &Store{
			blobs:   make(map[objstore.OID][]byte),
			trees:   make(map[objstore.OID][]objstore.TreeEntry),
			commits: make(map[objstore.OID]*objstore.CommitInfo),
			refs:    make(map[string]objstore.OID),
		},
	}
}

func hashObject(kind string, data []byte) objstore.OID {
	//nolint:gosec // see Builder doc comment
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", kind, len(data))
	h.Write(data)
	oid, _ := objstore.OIDFromBytes(h.Sum(nil))
	return oid
}

// Blob records a blob's contents and returns its OID.
func (b *Builder) Blob(data []byte) objstore.OID {
	oid := hashObject("blob", data)
	b.s.blobs[oid] = data
	return oid
}

// Entry is one named child of a tree under construction.
type Entry struct {
	Name string
	OID  objstore.OID
	Mode objstore.FileMode
}

func gitMode(m objstore.FileMode) uint32 {
	switch m {
	case objstore.ModeTree:
		return 0o040000
	case objstore.ModeExecutable:
		return 0o100755
	case objstore.ModeSymlink:
		return 0o120000
	case objstore.ModeGitlink:
		return 0o160000
	default:
		return 0o100644
	}
}

// Tree records a tree with the given entries (sorted into Git's
// canonical tree order, which sorts as if directory names carried a
// trailing "/") and returns its OID.
func (b *Builder) Tree(entries ...Entry) objstore.OID {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return treeSortKey(sorted[i]) < treeSortKey(sorted[j])
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%o %s\x00", gitMode(e.Mode), e.Name)
		buf.Write(e.OID.Bytes())
	}
	oid := hashObject("tree", buf.Bytes())

	flat := make([]objstore.TreeEntry, len(sorted))
	for i, e := range sorted {
		flat[i] = objstore.TreeEntry{Name: e.Name, OID: e.OID, Mode: e.Mode}
	}
	b.s.trees[oid] = flat
	return oid
}

func treeSortKey(e Entry) string {
	if e.Mode == objstore.ModeTree {
		return e.Name + "/"
	}
	return e.Name
}

// CommitSpec is the information needed to build a commit object.
type CommitSpec struct {
	Tree      objstore.OID
	Parents   []objstore.OID
	Author    objstore.Signature
	Committer objstore.Signature
	Message   string
}

func formatSignature(s objstore.Signature) string {
	_, offset := s.When.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf(
		"%s <%s> %d %s%02d%02d",
		s.Name, s.Email, s.When.Unix(), sign, offset/3600, (offset/60)%60,
	)
}

// Commit records a commit object and returns its OID.
func (b *Builder) Commit(spec CommitSpec) objstore.OID {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", spec.Tree)
	for _, p := range spec.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", formatSignature(spec.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatSignature(spec.Committer))
	buf.WriteByte('\n')
	buf.WriteString(spec.Message)

	oid := hashObject("commit", buf.Bytes())
	b.s.commits[oid] = &objstore.CommitInfo{
		OID:       oid,
		Tree:      spec.Tree,
		Parents:   append([]objstore.OID(nil), spec.Parents...),
		Author:    spec.Author,
		Committer: spec.Committer,
	}
	return oid
}

// Sig is a convenience constructor for an objstore.Signature with a
// fixed UTC-offset timestamp, the shape every commit header uses.
func Sig(name, email string, when time.Time) objstore.Signature {
	return objstore.Signature{Name: name, Email: email, When: when}
}

// Ref points name (e.g. "refs/heads/main") at oid.
func (b *Builder) Ref(name string, oid objstore.OID) *Builder {
	b.s.refs[name] = oid
	return b
}

// Build returns the finished, immutable Store.
func (b *Builder) Build() *Store {
	return b.s
}
