package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/gitjfs/gitjfs/objstore"
)

// reachable memoizes the set of objects reachable from any ref, built
// once per Store by `git rev-list --objects --all` (the same
// plumbing command the teacher's ObjectIter drives, just seeded from
// every ref instead of a caller-supplied root list). Every read
// consults it before trusting a caller-supplied OID, satisfying the
// collaborator contract's requirement that the reader be configurable
// to refuse unreachable objects.
type reachable struct {
	once sync.Once
	err  error
	set  map[objstore.OID]struct{}
}

func (s *Store) reachableSet(ctx context.Context) (map[objstore.OID]struct{}, error) {
	s.reach.once.Do(func() {
		out, err := s.run(ctx, "rev-list", "--objects", "--all")
		if err != nil {
			s.reach.err = err
			return
		}
		set := make(map[objstore.OID]struct{})
		sc := bufio.NewScanner(bytes.NewReader(out))
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			line := sc.Text()
			if len(line) < objstore.HashSize*2 {
				continue
			}
			oid, err := objstore.NewOID(line[:objstore.HashSize*2])
			if err != nil {
				continue
			}
			set[oid] = struct{}{}
		}
		s.reach.set = set
	})
	return s.reach.set, s.reach.err
}

func (s *Store) checkReachable(ctx context.Context, oid objstore.OID) error {
	set, err := s.reachableSet(ctx)
	if err != nil {
		return fmt.Errorf("building reachable-object set: %w", err)
	}
	if _, ok := set[oid]; !ok {
		return objstore.ErrNotFound
	}
	return nil
}
