// Package gateway implements the reverse-proxy edge: a static routing
// table matched by path prefix and a dispatcher that forwards requests to
// the owning upstream, translating connectivity failures uniformly.
package gateway

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Route binds an externally-facing path prefix to an upstream base URL.
// Entries are immutable after startup.
type Route struct {
	Name   string   // logical service name, used in error bodies and logs
	Prefix string   // e.g. "/api/v1/finance"
	Target *url.URL // upstream base URL
}

// Table is the static routing table. Entries are kept sorted by descending
// prefix length so the first match is the longest one.
type Table struct {
	routes []Route
}

// NewTable builds a table from service name -> base URL pairs. Each service
// is exposed under /api/v1/<name>.
func NewTable(upstreams map[string]string) (*Table, error) {
	t := &Table{}
	for name, raw := range upstreams {
		target, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("upstream %s: %w", name, err)
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("upstream %s: %q is not an absolute URL", name, raw)
		}
		t.routes = append(t.routes, Route{
			Name:   name,
			Prefix: "/api/v1/" + name,
			Target: target,
		})
	}
	sort.Slice(t.routes, func(i, j int) bool {
		if len(t.routes[i].Prefix) != len(t.routes[j].Prefix) {
			return len(t.routes[i].Prefix) > len(t.routes[j].Prefix)
		}
		return t.routes[i].Prefix < t.routes[j].Prefix
	})
	return t, nil
}

// Match returns the route owning the longest matching prefix of path and
// the path with that prefix stripped. The upstream never sees the gateway's
// external prefix. A prefix matches whole path segments only, so
// /api/v1/finance never claims /api/v1/finances.
func (t *Table) Match(path string) (Route, string, bool) {
	for _, rt := range t.routes {
		if path == rt.Prefix {
			return rt, "/", true
		}
		if strings.HasPrefix(path, rt.Prefix+"/") {
			return rt, path[len(rt.Prefix):], true
		}
	}
	return Route{}, "", false
}

// Routes returns the configured routes, longest prefix first.
func (t *Table) Routes() []Route {
	return t.routes
}
