package gitcli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gitjfs/gitjfs/objstore"
)

// objectHeaderIter iterates over the "key value" header lines of a
// commit or tag object, grounded on the teacher's ObjectHeaderIter:
// the same tolerance for a missing blank-line terminator (Git allows
// commits with no message), the same key/value split on the first
// space and first following newline.
type objectHeaderIter struct {
	name string
	data string
}

func newObjectHeaderIter(name string, data []byte) (objectHeaderIter, error) {
	if headerEnd := bytes.Index(data, []byte("\n\n")); headerEnd != -1 {
		return objectHeaderIter{name, string(data[:headerEnd+1])}, nil
	}
	if len(data) == 0 {
		return objectHeaderIter{}, fmt.Errorf("%s has zero length", name)
	}
	if data[len(data)-1] != '\n' {
		return objectHeaderIter{}, fmt.Errorf("%s has no terminating LF", name)
	}
	return objectHeaderIter{name, string(data)}, nil
}

func (it *objectHeaderIter) hasNext() bool {
	return len(it.data) > 0
}

func (it *objectHeaderIter) next() (string, string, error) {
	if len(it.data) == 0 {
		return "", "", fmt.Errorf("header for %s read past end", it.name)
	}
	header := it.data
	keyEnd := strings.IndexByte(header, ' ')
	if keyEnd == -1 {
		return "", "", fmt.Errorf("malformed header in %s", it.name)
	}
	key := header[:keyEnd]
	header = header[keyEnd+1:]
	valueEnd := strings.IndexByte(header, '\n')
	if valueEnd == -1 {
		return "", "", fmt.Errorf("malformed header in %s", it.name)
	}
	value := header[:valueEnd]
	it.data = header[valueEnd+1:]
	return key, value, nil
}

// parseSignature parses a commit's "author"/"committer" header value
// of the form "Name <email> <unix-seconds> <+zzzz>" into a Signature.
func parseSignature(value string) (objstore.Signature, error) {
	emailStart := strings.IndexByte(value, '<')
	emailEnd := strings.IndexByte(value, '>')
	if emailStart == -1 || emailEnd == -1 || emailEnd < emailStart {
		return objstore.Signature{}, fmt.Errorf("malformed signature %q", value)
	}
	name := strings.TrimSpace(value[:emailStart])
	email := value[emailStart+1 : emailEnd]

	rest := strings.TrimSpace(value[emailEnd+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return objstore.Signature{}, fmt.Errorf("malformed signature timestamp %q", value)
	}
	epoch, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return objstore.Signature{}, fmt.Errorf("malformed signature epoch %q: %w", fields[0], err)
	}
	loc, err := parseZoneOffset(fields[1])
	if err != nil {
		return objstore.Signature{}, err
	}
	return objstore.Signature{
		Name:  name,
		Email: email,
		When:  time.Unix(epoch, 0).In(loc),
	}, nil
}

func parseZoneOffset(z string) (*time.Location, error) {
	if len(z) != 5 || (z[0] != '+' && z[0] != '-') {
		return nil, fmt.Errorf("malformed zone offset %q", z)
	}
	hours, err := strconv.Atoi(z[1:3])
	if err != nil {
		return nil, fmt.Errorf("malformed zone offset %q: %w", z, err)
	}
	minutes, err := strconv.Atoi(z[3:5])
	if err != nil {
		return nil, fmt.Errorf("malformed zone offset %q: %w", z, err)
	}
	offset := hours*3600 + minutes*60
	if z[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(z, offset), nil
}
