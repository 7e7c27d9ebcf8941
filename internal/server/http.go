package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/cruciblehq/bentostart/internal/launch"
)

// Time allowed to read request headers, bounding idle slow clients.
const readHeaderTimeout = 10 * time.Second

// Serves the full API server of a legacy service.
//
// Legacy services run one worker unless told otherwise. Reload is never set
// for legacy services by the time they get here.
func (l *Launcher) ServeLegacyHTTP(ctx context.Context, t launch.Target) error {
	st := targetSettings(t.Settings)

	c := t.Server
	if c.Workers == 0 && st.APIServer.Workers == 0 {
		c.Workers = 1
	}
	cfg := httpConfig(c, st)

	met := newMetrics("api_server")
	s := newSite(mount{t.Service, l.engineHandler(t.Service, ""), cfg.Timeout}, t.Dependencies, met)

	return l.serveHTTP(ctx, "legacy-http", cfg, s)
}

// Serves the HTTP server of a current-style service.
//
// With reload set, the service's directory is watched and the service is
// reloaded and remounted whenever its manifest changes.
func (l *Launcher) ServeHTTP(ctx context.Context, t launch.Target) error {
	st := targetSettings(t.Settings)
	cfg := httpConfig(t.Server, st)

	met := newMetrics("api_server")
	s := newSite(mount{t.Service, l.engineHandler(t.Service, ""), cfg.Timeout}, t.Dependencies, met)

	if cfg.Reload {
		stop, err := l.watch(ctx, t, s)
		if err != nil {
			return err
		}
		defer stop()
	}

	return l.serveHTTP(ctx, "http", cfg, s)
}

// Serves one runner of a legacy service.
//
// The runner must be declared by the service; this is checked before any
// socket is opened.
func (l *Launcher) ServeRunner(ctx context.Context, t launch.Target) error {
	if !t.Service.HasRunner(t.RunnerName) {
		return fmt.Errorf("%w: %q in %s", ErrUnknownRunner, t.RunnerName, t.Service.Tag())
	}

	st := targetSettings(t.Settings)
	rc := runnerConfig(t.Runner, st)

	met := newMetrics("runner")
	s := newSite(mount{t.Service, l.engineHandler(t.Service, t.RunnerName), rc.Timeout}, nil, met)

	ln, err := l.listen(ctx, rc.Host, rc.Port, rc.Backlog)
	if err != nil {
		return err
	}

	srv := newHTTPServer(s.handler(), 0)
	slog.Debug("serving runner", "runner", t.RunnerName, "service", t.Service.Tag())

	inst := &instance{
		name:     "runner",
		listener: ln,
		serve:    srv.Serve,
		shutdown: shutdownHTTP(srv),
		grace:    launch.Seconds(st.APIServer.GracefulShutdown),
		pidFile:  l.PIDFile,
	}
	return inst.run(ctx)
}

// Binds and runs an API server for the site.
func (l *Launcher) serveHTTP(ctx context.Context, name string, cfg launch.ServerConfig, s *site) error {
	tlsConfig, err := buildTLS(cfg.SSL)
	if err != nil {
		return err
	}

	setWorkers(cfg.Workers)

	ln, err := l.listen(ctx, cfg.Host, cfg.Port, cfg.Backlog)
	if err != nil {
		return err
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}

	srv := newHTTPServer(s.handler(), cfg.KeepAlive)

	inst := &instance{
		name:     name,
		listener: ln,
		serve:    srv.Serve,
		shutdown: shutdownHTTP(srv),
		grace:    cfg.GracefulShutdown,
		pidFile:  l.PIDFile,
	}
	return inst.run(ctx)
}

func newHTTPServer(h http.Handler, keepAlive time.Duration) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       keepAlive,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
}

// Returns a shutdown func that drains connections, closing whatever is left
// once the grace period runs out.
func shutdownHTTP(srv *http.Server) func(context.Context) error {
	return func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("graceful shutdown timed out, closing connections")
			return srv.Close()
		}
		return err
	}
}

// Sizes the scheduler to the worker count.
//
// Worker processes do not exist here; one process serves every request, so
// workers bound the number of threads executing Go code instead.
func setWorkers(n int) {
	if n <= 0 {
		return
	}
	prev := runtime.GOMAXPROCS(n)
	slog.Debug("workers set", "workers", n, "previous", prev)
}
