// Package identity maps an inbound request to the principal it runs as.
// Resolution never fails: anything that cannot be tied to a known user
// resolves to the anonymous principal.
package identity

import (
	"context"
	"net/http"
	"strings"

	"task-tracker/internal/domain"
)

// DefaultHeader carries the asserted user id.
const DefaultHeader = "X-User-Id"

// Request is the part of an inbound call a resolver may inspect.
type Request interface {
	// Header looks a header up by name, case-insensitively.
	Header(name string) string
	// Meta looks up a normalized server variable such as HTTP_X_USER_ID.
	Meta(key string) string
}

// Resolver maps a request to a principal.
type Resolver interface {
	Resolve(ctx context.Context, r Request) domain.Principal
}

// UserLookup finds stored users by id.
type UserLookup interface {
	Lookup(ctx context.Context, id int64) (domain.User, error)
}

// MetaKey converts a header name to its normalized server variable name,
// e.g. "X-User-Id" becomes "HTTP_X_USER_ID".
func MetaKey(header string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
}

// HeaderMap is a Request backed by a plain header set. It is what the CLI
// and tests hand to resolvers.
type HeaderMap http.Header

// NewHeaderMap builds a HeaderMap from name/value pairs.
func NewHeaderMap(pairs map[string]string) HeaderMap {
	h := http.Header{}
	for k, v := range pairs {
		h.Set(k, v)
	}
	return HeaderMap(h)
}

func (h HeaderMap) Header(name string) string {
	return http.Header(h).Get(name)
}

func (h HeaderMap) Meta(key string) string {
	for name, values := range h {
		if MetaKey(name) == key && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
