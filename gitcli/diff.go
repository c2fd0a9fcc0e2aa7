package gitcli

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitjfs/gitjfs/objstore"
)

// Diff computes the ordered tree-to-tree diff between commits a and
// b via `git diff-tree -r -z`, with rename and copy detection enabled
// (-M -C) so the diff can actually report the change types the
// collaborator contract names (gitmem, lacking a similarity
// heuristic, never reports those two).
func (s *Store) Diff(ctx context.Context, a, b objstore.OID) ([]objstore.DiffEntry, error) {
	if err := s.checkReachable(ctx, a); err != nil {
		return nil, err
	}
	if err := s.checkReachable(ctx, b); err != nil {
		return nil, err
	}

	out, err := s.run(ctx, "diff-tree", "-r", "-z", "-M", "-C", a.String(), b.String())
	if err != nil {
		return nil, err
	}

	records := splitNUL(out)
	var entries []objstore.DiffEntry
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec == "" || !strings.HasPrefix(rec, ":") {
			continue
		}
		status := diffStatusField(rec)
		if status == "" {
			return nil, fmt.Errorf("malformed diff-tree record %q", rec)
		}

		switch status[0] {
		case 'A':
			i++
			entries = append(entries, objstore.DiffEntry{Type: objstore.ChangeAdd, NewPath: records[i]})
		case 'D':
			i++
			entries = append(entries, objstore.DiffEntry{Type: objstore.ChangeDelete, OldPath: records[i]})
		case 'M', 'T':
			i++
			entries = append(entries, objstore.DiffEntry{Type: objstore.ChangeModify, OldPath: records[i], NewPath: records[i]})
		case 'R':
			oldPath, newPath := records[i+1], records[i+2]
			i += 2
			entries = append(entries, objstore.DiffEntry{Type: objstore.ChangeRename, OldPath: oldPath, NewPath: newPath})
		case 'C':
			oldPath, newPath := records[i+1], records[i+2]
			i += 2
			entries = append(entries, objstore.DiffEntry{Type: objstore.ChangeCopy, OldPath: oldPath, NewPath: newPath})
		default:
			return nil, fmt.Errorf("unrecognized diff-tree status %q", status)
		}
	}
	return entries, nil
}

// diffStatusField extracts the status letter (+ optional similarity
// score, e.g. "R100") from a ":src-mode dst-mode src-oid dst-oid
// status" record.
func diffStatusField(rec string) string {
	fields := strings.Fields(rec)
	if len(fields) != 5 {
		return ""
	}
	return fields[4]
}
