package gpath

import (
	"strings"

	"github.com/gitjfs/gitjfs/errs"
)

// encQuery percent-escapes s for use as a query-parameter value per
// the URI grammar: '&', '=', '?', and '%' are escaped; '/' is left
// literal (the internal-path query value keeps its separators
// readable).
func encQuery(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&', '=', '?', '%':
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(hexByte(c)))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func decQuery(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return "", errs.New(errs.InvalidPath, "decode-query", s, nil)
			}
			v, ok := unhex(s[i+1], s[i+2])
			if !ok {
				return "", errs.New(errs.InvalidPath, "decode-query", s, nil)
			}
			b.WriteByte(v)
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

func hexByte(c byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[c>>4], hex[c&0xf]})
}

func unhex(hi, lo byte) (byte, bool) {
	h, ok1 := unhexDigit(hi)
	l, ok2 := unhexDigit(lo)
	if !ok1 || !ok2 {
		return 0, false
	}
	return h<<4 | l, true
}

func unhexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// ToURI composes the query-string suffix a file system's URI appends
// for this path: "?root=<enc>&internal-path=<enc>" if p carries a
// revision token, "?internal-path=<enc>" otherwise. fsURI is the
// owning FileSystem's own "gitjfs://..." URI, as produced by the
// registry.
func (p LogicalPath) ToURI(fsURI string) string {
	var q strings.Builder
	if p.root != nil {
		q.WriteString("root=")
		q.WriteString(encQuery(p.root.String()))
		q.WriteString("&")
	}
	q.WriteString("internal-path=")
	q.WriteString(encQuery(p.internal.String()))
	return fsURI + "?" + q.String()
}

// FromURI parses the query suffix produced by ToURI back into a
// LogicalPath. It does not interpret the authority/path portion of
// the URI; that is the registry's job (it identifies which
// FileSystem owns the path).
func FromURI(query string) (LogicalPath, error) {
	var rootStr, internalStr string
	haveRoot, haveInternal := false, false
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return LogicalPath{}, errs.New(errs.InvalidPath, "from-uri", query, nil)
		}
		val, err := decQuery(kv[1])
		if err != nil {
			return LogicalPath{}, err
		}
		switch kv[0] {
		case "root":
			rootStr, haveRoot = val, true
		case "internal-path":
			internalStr, haveInternal = val, true
		default:
			return LogicalPath{}, errs.New(errs.InvalidPath, "from-uri", query, nil)
		}
	}
	if !haveInternal {
		return LogicalPath{}, errs.New(errs.InvalidPath, "from-uri", query, nil)
	}
	internal, err := ParseInternal(internalStr)
	if err != nil {
		return LogicalPath{}, err
	}
	if !haveRoot {
		return LogicalPath{internal: internal}, nil
	}
	root, err := ParseRevisionToken(rootStr)
	if err != nil {
		return LogicalPath{}, errs.New(errs.InvalidPath, "from-uri", query, err)
	}
	return LogicalPath{root: root, internal: internal.withAbsolute(true)}, nil
}

// EscapeDFSName percent-escapes name for use as a DFS-authority URI
// path segment: every byte outside unreserved characters is escaped
// except '/', which is left literal and treated as a path separator,
// per the URI grammar.
func EscapeDFSName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUnreservedOrSlash(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteString(strings.ToUpper(hexByte(c)))
	}
	return b.String()
}

func isUnreservedOrSlash(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~' || c == '/':
		return true
	default:
		return false
	}
}

// UnescapeDFSName reverses EscapeDFSName.
func UnescapeDFSName(escaped string) (string, error) {
	return decQuery(escaped)
}
