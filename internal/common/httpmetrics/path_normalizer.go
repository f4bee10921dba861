package httpmetrics

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RouteLabel names the route that served r. Requests matched by the mux
// are labelled with their pattern path ("/posts/{id}"); anything else falls
// back to NormalizePath so unknown URLs cannot explode label cardinality.
func RouteLabel(r *http.Request) string {
	if r.Pattern != "" {
		pattern := r.Pattern
		if i := strings.IndexByte(pattern, ' '); i >= 0 {
			pattern = pattern[i+1:]
		}
		return pattern
	}
	return NormalizePath(r.URL.Path)
}

// NormalizePath replaces id-like segments with {id}.
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if _, err := uuid.Parse(part); err == nil || isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
