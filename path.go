package modelmap

import (
	"strconv"
	"strings"
)

// Pointer renders path segments as a JSON Pointer ("/a/b/0"). The empty
// segment list renders as "/".
func Pointer(parts ...string) string {
	if len(parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(escapeToken(p))
	}
	return b.String()
}

// childPath extends a JSON Pointer with one field segment.
func childPath(base, name string) string {
	if base == "" || base == "/" {
		return "/" + escapeToken(name)
	}
	return base + "/" + escapeToken(name)
}

// indexPath extends a JSON Pointer with a list index segment.
func indexPath(base string, i int) string {
	return childPath(base, strconv.Itoa(i))
}

// escapeToken applies RFC 6901 escaping ("~" -> "~0", "/" -> "~1").
func escapeToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
