package objstore

import "time"

// ObjectType is the type of a raw Git object, as reported by
// `cat-file --batch-check`-style tooling.
type ObjectType string

const (
	ObjectBlob    ObjectType = "blob"
	ObjectTree    ObjectType = "tree"
	ObjectCommit  ObjectType = "commit"
	ObjectTag     ObjectType = "tag"
	ObjectMissing ObjectType = "missing"
)

// FileMode is the Git tree-entry mode, collapsed to the handful of
// modes the tree resolver distinguishes between. It intentionally
// drops the distinction Git itself makes between e.g. 100644 and
// 100664, since the resolver never needs it.
type FileMode int

const (
	ModeTree FileMode = iota
	ModeRegular
	ModeExecutable
	ModeSymlink
	ModeGitlink
)

func (m FileMode) String() string {
	switch m {
	case ModeTree:
		return "tree"
	case ModeRegular:
		return "regular_file"
	case ModeExecutable:
		return "executable"
	case ModeSymlink:
		return "symlink"
	case ModeGitlink:
		return "gitlink"
	default:
		return "unknown"
	}
}

// FileModeFromGit converts a raw octal Git tree-entry mode (as found
// in a tree object, e.g. 0o100644) into a FileMode.
func FileModeFromGit(raw uint32) (FileMode, error) {
	switch raw {
	case 0o040000:
		return ModeTree, nil
	case 0o100644, 0o100664, 0o100600:
		return ModeRegular, nil
	case 0o100755:
		return ModeExecutable, nil
	case 0o120000:
		return ModeSymlink, nil
	case 0o160000:
		return ModeGitlink, nil
	default:
		return 0, &UnrecognizedModeError{Mode: raw}
	}
}

// UnrecognizedModeError reports a tree-entry mode that isn't one of
// the modes gitjfs knows how to interpret.
type UnrecognizedModeError struct {
	Mode uint32
}

func (e *UnrecognizedModeError) Error() string {
	return "unrecognized file mode in tree entry"
}

// TreeEntry is one entry of a Git tree object. Name never contains a
// "/".
type TreeEntry struct {
	Name string
	OID  OID
	Mode FileMode
}

// TreeReader iterates over the entries of a single tree object, in
// the order Git stores them (byte-wise by name). A TreeReader is used
// at most by one goroutine at a time and must be closed by the
// caller.
type TreeReader interface {
	// Next returns the next entry, or ok=false when exhausted.
	Next() (entry TreeEntry, ok bool, err error)
	Close() error
}

// Signature is an author or committer identity plus a zoned
// timestamp, as recorded in a commit object's header.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitInfo holds the parts of a commit object gitjfs needs: its
// tree, its parents (in the order recorded in the object, first
// parent first), and both identities.
type CommitInfo struct {
	OID       OID
	Tree      OID
	Parents   []OID
	Author    Signature
	Committer Signature
}

// Reference is one entry enumerated by ListRefs.
type Reference struct {
	Name string
	OID  OID
}

// ChangeType classifies one entry of a tree-to-tree diff.
type ChangeType int

const (
	ChangeAdd ChangeType = iota
	ChangeDelete
	ChangeModify
	ChangeRename
	ChangeCopy
)

func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeDelete:
		return "delete"
	case ChangeModify:
		return "modify"
	case ChangeRename:
		return "rename"
	case ChangeCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// DiffEntry is one line of a tree-to-tree diff between two commits.
// OldPath is empty for ChangeAdd; NewPath is empty for ChangeDelete.
type DiffEntry struct {
	Type    ChangeType
	OldPath string
	NewPath string
}
