package gitcli

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitjfs/gitjfs/objstore"
)

// ListRefs enumerates the direct refs whose name starts with prefix,
// via `git for-each-ref`; a symbolic ref (one with a %(symref)
// target) is skipped. Annotated tags are treated as opaque: a tag ref
// is reported with the tag object's own id, never dereferenced to the
// commit it points at.
func (s *Store) ListRefs(ctx context.Context, prefix string) ([]objstore.Reference, error) {
	out, err := s.run(ctx, "for-each-ref", "--format=%(objectname) %(refname) %(symref)", prefix)
	if err != nil {
		return nil, err
	}

	var refs []objstore.Reference
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line == "" {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp == -1 {
			return nil, fmt.Errorf("malformed for-each-ref line %q", line)
		}
		oid, err := objstore.NewOID(line[:sp])
		if err != nil {
			return nil, fmt.Errorf("malformed for-each-ref oid %q: %w", line[:sp], err)
		}
		name, symref, _ := strings.Cut(line[sp+1:], " ")
		if symref != "" {
			continue
		}
		refs = append(refs, objstore.Reference{Name: name, OID: oid})
	}
	return refs, nil
}
