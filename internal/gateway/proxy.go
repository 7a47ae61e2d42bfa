package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httputil"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/api-edge/internal/response"
)

// Dispatcher matches each inbound request against the routing table and
// forwards it to the owning upstream. One ReverseProxy per route is built
// at startup; its transport holds the long-lived upstream connection pool.
type Dispatcher struct {
	table   *Table
	proxies map[string]*httputil.ReverseProxy
	log     *slog.Logger
}

// NewDispatcher builds the per-route proxies. The gateway is a thin hop:
// it never retries, and any transport-level failure reaching the error
// handler collapses into one service-unavailable answer naming the service.
func NewDispatcher(table *Table, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		table:   table,
		proxies: make(map[string]*httputil.ReverseProxy),
		log:     log,
	}
	for _, rt := range table.Routes() {
		rt := rt
		d.proxies[rt.Name] = &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				// The inbound URL path has already been stripped to the
				// upstream-relative path by Dispatch.
				pr.SetURL(rt.Target)
				pr.SetXForwarded()
			},
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				d.log.Error("upstream unreachable",
					"service", rt.Name, "target", rt.Target.String(), "err", err)
				writeUnavailable(w, rt.Name)
			},
		}
	}
	return d
}

// Dispatch is the catch-all handler behind admission control. No matching
// route yields a structured 404; a match forwards method, headers and body
// unchanged apart from the prefix strip and forwarding headers.
func (d *Dispatcher) Dispatch(c echo.Context) error {
	req := c.Request()
	rt, rest, ok := d.table.Match(req.URL.Path)
	if !ok {
		return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "Endpoint not found")
	}

	req.URL.Path = rest
	req.URL.RawPath = ""
	d.proxies[rt.Name].ServeHTTP(c.Response(), req)
	return nil
}

// writeUnavailable emits the 503 envelope from a raw ResponseWriter; the
// proxy error hook runs outside echo's context.
func writeUnavailable(w http.ResponseWriter, service string) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(response.Envelope{
		Success: false,
		Error: &response.ErrorBody{
			Code:    response.CodeServiceUnavailable,
			Message: service + " service is currently unavailable",
		},
	})
}
