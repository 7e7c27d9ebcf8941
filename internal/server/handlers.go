package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cruciblehq/bentostart/internal"
	"github.com/cruciblehq/bentostart/internal/depmap"
	"github.com/cruciblehq/bentostart/internal/service"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	probeTimeout    = 2 * time.Second
	openAPIVersion  = "3.0.2"
)

// Serves the bootstrap surface of one server and forwards everything else to
// the mounted engine.
type site struct {
	current atomic.Pointer[mount] // Service and engine handler, swapped on reload.
	deps    depmap.Map            // Remote dependencies probed by /readyz.
	metrics *metrics              // Request metrics, scraped at /metrics.
	dialer  *net.Dialer           // Dialer for readiness probes.
}

// Service together with the engine handler serving it.
type mount struct {
	svc     *service.Service
	handler http.Handler
	timeout time.Duration // Engine request timeout; zero for none.
}

// Creates the site of a server.
func newSite(m mount, deps depmap.Map, met *metrics) *site {
	s := &site{
		deps:    deps,
		metrics: met,
		dialer:  &net.Dialer{Timeout: probeTimeout},
	}
	s.swap(m)
	return s
}

// Replaces the served service and engine handler. The handler is bounded by
// the mount's request timeout.
func (s *site) swap(m mount) {
	if m.timeout > 0 {
		m.handler = http.TimeoutHandler(m.handler, m.timeout, "request timed out")
	}
	s.current.Store(&m)
	s.metrics.setService(m.svc)
}

// Returns the root handler.
func (s *site) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", s.handleLive)
	mux.HandleFunc("GET /healthz", s.handleLive)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /docs.json", s.handleDocs)
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.Handle("/", s.engine())

	return withRequestID(s.metrics.instrument(mux))
}

// Forwards to the current engine handler.
func (s *site) engine() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.current.Load().handler.ServeHTTP(w, r)
	})
}

// Handles a liveness probe.
func (s *site) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Handles a readiness probe.
//
// The server is ready once every remote dependency accepts a connection.
func (s *site) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.probe(r.Context())

	status := http.StatusOK
	body := readiness{Status: "ready", Dependencies: results}
	for _, res := range results {
		if res != "ok" {
			status = http.StatusServiceUnavailable
			body.Status = "unavailable"
			break
		}
	}

	writeJSON(w, status, body)
}

type readiness struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Dials every dependency concurrently. Returns "ok" or the failure per name.
func (s *site) probe(ctx context.Context) map[string]string {
	if len(s.deps) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(s.deps))
	)

	for name, addr := range s.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res := "ok"
			if err := s.dial(ctx, addr); err != nil {
				slog.Debug("dependency unreachable", "name", name, "address", addr, "error", err)
				res = err.Error()
			}

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

func (s *site) dial(ctx context.Context, addr string) error {
	network, address := dialTarget(addr)
	conn, err := s.dialer.DialContext(ctx, network, address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Returns the network and address to dial for a dependency address.
//
// Addresses may be URLs (tcp, http, https, unix) or plain host:port pairs.
// URLs without a port use the scheme's default.
func dialTarget(addr string) (network, address string) {
	u, err := url.Parse(addr)
	if err != nil || (u.Host == "" && u.Scheme != "unix") {
		return "tcp", addr
	}

	switch u.Scheme {
	case "unix":
		return "unix", u.Path
	case "http":
		return "tcp", hostPort(u, "80")
	case "https":
		return "tcp", hostPort(u, "443")
	default:
		return "tcp", u.Host
	}
}

func hostPort(u *url.URL, defaultPort string) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), defaultPort)
}

// Handles a request for the service's OpenAPI document.
func (s *site) handleDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, openAPIDocument(s.current.Load().svc))
}

type openAPI struct {
	OpenAPI string                          `json:"openapi"`
	Info    openAPIInfo                     `json:"info"`
	Paths   map[string]map[string]operation `json:"paths"`
}

type openAPIInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type operation struct {
	OperationID string `json:"operationId"`
	Summary     string `json:"summary,omitempty"`
}

// Describes the service's endpoints. Each API is served with POST at its
// route, which defaults to the API name.
func openAPIDocument(svc *service.Service) openAPI {
	doc := openAPI{
		OpenAPI: openAPIVersion,
		Info: openAPIInfo{
			Title:       svc.Name,
			Version:     svc.Version,
			Description: "Served by " + internal.Name + " " + internal.VersionString(),
		},
		Paths: make(map[string]map[string]operation, len(svc.APIs)),
	}
	if doc.Info.Version == "" {
		doc.Info.Version = "0.0.0"
	}

	for _, api := range svc.APIs {
		route := api.Route
		if route == "" {
			route = api.Name
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}

		var summary string
		if api.InputType != "" || api.OutputType != "" {
			summary = api.InputType + " -> " + api.OutputType
		}
		doc.Paths[route] = map[string]operation{
			"post": {OperationID: svc.Name + "__" + api.Name, Summary: summary},
		}
	}
	return doc
}

// Tags every request with an ID, reusing the caller's when present.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
