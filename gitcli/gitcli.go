// Package gitcli implements objstore.Store by shelling out to a real
// `git` binary, grounded on the teacher's subprocess plumbing: a
// safeexec-located binary, go-pipe-staged command pipelines, and its
// object-header line parser adapted here to also extract author and
// committer signatures (which the teacher's size-counting use case
// never needed).
package gitcli

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/cli/safeexec"
	gopipe "github.com/github/go-pipe/pipe"

	"github.com/gitjfs/gitjfs/objstore"
)

// Store is a real, on-disk Git repository, accessed via subprocess
// calls to git. It refuses unreachable objects: every read first
// confirms the object is reachable from some ref via `git rev-list`,
// rather than trusting a caller-supplied arbitrary OID (the
// collaborator contract requires a reader "configurable to
// refuse unreachable objects"; gitcli always applies that
// restriction).
type Store struct {
	dir    string
	gitBin string
	reach  reachable
}

var _ objstore.Store = (*Store)(nil)

// Open locates the git binary with safeexec and returns a Store
// rooted at dir, which must be a path inside a Git working tree or
// bare repository.
func Open(dir string) (*Store, error) {
	gitBin, err := findGitBin()
	if err != nil {
		return nil, fmt.Errorf("locating git executable: %w", err)
	}
	return &Store{dir: dir, gitBin: gitBin}, nil
}

// findGitBin locates the `git` executable the same way the teacher's
// git_bin.go does: via safeexec.LookPath, which (unlike os/exec on
// some platforms) refuses to resolve relative paths from the current
// directory, a hardening property worth keeping for a tool that
// shells out on behalf of library callers.
func findGitBin() (string, error) {
	return safeexec.LookPath("git")
}

func (s *Store) command(args ...string) *exec.Cmd {
	cmd := exec.Command(s.gitBin, args...)
	cmd.Dir = s.dir
	return cmd
}

// pipeline returns a fresh go-pipe Pipeline rooted at the store's
// directory, the same construction the teacher's ObjectIter uses.
func (s *Store) pipeline() *gopipe.Pipeline {
	return gopipe.New(gopipe.WithDir(s.dir))
}

// run executes a single git subcommand through a one-stage pipeline
// and returns its stdout. Every git command in this package, in
// objects.go, refs.go, and diff.go alike, goes through run.
func (s *Store) run(ctx context.Context, args ...string) ([]byte, error) {
	p := s.pipeline()
	p.Add(gopipe.CommandStage(args[0], s.command(args...)))
	out, err := p.Output(ctx)
	if err != nil {
		return nil, fmt.Errorf("running git %v: %w", args, err)
	}
	return out, nil
}

// Close releases no resources of its own: gitcli never keeps a
// subprocess alive between calls.
func (s *Store) Close() error {
	return nil
}
