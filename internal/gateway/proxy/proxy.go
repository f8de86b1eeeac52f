package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/redone-net/marketplace/pkg/httperr"
)

// Route forwards requests whose path starts with Prefix to one backend.
type Route struct {
	Prefix  string
	backend *httputil.ReverseProxy
}

// Table is an ordered prefix routing table. The first matching route
// wins, so overlapping prefixes must be declared most specific first.
type Table struct {
	routes []Route
}

// MustNewTable builds a routing table from prefix->backend URL pairs,
// keeping declaration order. It panics on an unparsable backend URL.
func MustNewTable(pairs ...[2]string) *Table {
	table := &Table{}
	for _, pair := range pairs {
		target, err := url.Parse(pair[1])
		if err != nil {
			panic("invalid backend url " + pair[1] + ": " + err.Error())
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("Backend unreachable", "error", err, "path", r.URL.Path)
			httperr.Write(w, httperr.Wrap(httperr.KindUpstreamUnavailable, err, "backend unavailable"))
		}
		table.routes = append(table.routes, Route{Prefix: pair[0], backend: proxy})
	}

	return table
}

// ServeHTTP forwards the request to the first route whose prefix
// matches, or answers 404 when no route does.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, route := range t.routes {
		if matchPrefix(route.Prefix, r.URL.Path) {
			route.backend.ServeHTTP(w, r)

			return
		}
	}

	httperr.Write(w, httperr.New(httperr.KindNotFound, "no route for path"))
}

// matchPrefix reports whether path equals prefix or continues it at a
// segment boundary. "/api/produits" matches "/api/produits/3" but not
// "/api/produitsX".
func matchPrefix(prefix, path string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]

	return rest == "" || strings.HasPrefix(rest, "/")
}
