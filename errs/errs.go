// Package errs is the error taxonomy shared by every gitjfs package
// that can fail in a way a caller needs to branch on. A single Kind
// enum and wrapper type let path parsing, tree
// resolution, and the file-system surface all raise errors that
// callers test with errors.Is / errs.Is, instead of each layer
// inventing its own sentinel values.
package errs

import "fmt"

// Kind classifies why an operation failed.
type Kind int

const (
	_ Kind = iota
	InvalidPath
	NoSuchFile
	NotADirectory
	NotALink
	AbsoluteLink
	PathCouldNotBeFound
	ReadOnlyFS
	ClosedFS
	AlreadyExists
	NotFound
	Unsupported
	IllegalArgument
	IllegalState
	AccessDenied
	IO
)

func (k Kind) String() string {
	switch k {
	case InvalidPath:
		return "invalid-path"
	case NoSuchFile:
		return "no-such-file"
	case NotADirectory:
		return "not-a-directory"
	case NotALink:
		return "not-a-link"
	case AbsoluteLink:
		return "absolute-link"
	case PathCouldNotBeFound:
		return "path-could-not-be-found"
	case ReadOnlyFS:
		return "read-only-fs"
	case ClosedFS:
		return "closed-fs"
	case AlreadyExists:
		return "already-exists"
	case NotFound:
		return "not-found"
	case Unsupported:
		return "unsupported"
	case IllegalArgument:
		return "illegal-argument"
	case IllegalState:
		return "illegal-state"
	case AccessDenied:
		return "access-denied"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Error makes a Kind usable as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// E is the concrete error value every gitjfs operation returns on
// failure. Op names the failing operation (e.g. "resolve", "readdir");
// Path, if non-empty, is the path string involved; Err, if non-nil,
// wraps an underlying cause (e.g. an I/O error from the object
// store).
type E struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *E) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *E) Unwrap() error {
	return e.Err
}

// Is makes *E participate in errors.Is comparisons keyed by Kind:
// errors.Is(err, errs.NoSuchFile) reports whether err is an *E (at any
// wrapping depth) whose Kind is NoSuchFile.
func (e *E) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// New constructs an *E.
func New(kind Kind, op, path string, err error) *E {
	return &E{Kind: kind, Op: op, Path: path, Err: err}
}

// Is reports whether err is a *E of the given Kind, at any wrapping
// depth.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	type isser interface{ Is(error) bool }
	for {
		if e, ok := err.(isser); ok && e.Is(kind) {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
		if err == nil {
			return false
		}
	}
}
