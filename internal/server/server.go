package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cruciblehq/bentostart/internal/paths"
	"google.golang.org/grpc"
)

// Server bound to an open listener, waiting to be run.
type instance struct {
	name     string                          // Strategy name, for logs.
	listener net.Listener                    // Open listener passed to serve.
	serve    func(net.Listener) error        // Blocks until the server stops.
	shutdown func(ctx context.Context) error // Stops the server within ctx.
	grace    time.Duration                   // Time allowed for shutdown.
	pidFile  string                          // PID file to maintain; empty for none.
}

// Opens a TCP listener on host:port.
//
// Go leaves the accept queue length to the kernel (net.core.somaxconn on
// Linux), so backlog is only reported.
func (l *Launcher) listen(ctx context.Context, host string, port, backlog int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, addr, err)
	}

	slog.Debug("listener open", "address", ln.Addr().String(), "backlog", backlog)

	if l.onListen != nil {
		l.onListen(ln.Addr())
	}
	return ln, nil
}

// Serves until ctx is done, then shuts down within the grace period.
//
// Returns nil after a clean shutdown, or the error that stopped the server.
func (i *instance) run(ctx context.Context) error {
	if i.pidFile != "" {
		if err := writePID(i.pidFile); err != nil {
			slog.Warn("failed to write PID file", "path", i.pidFile, "error", err)
		} else {
			defer os.Remove(i.pidFile)
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- i.serve(i.listener)
	}()

	slog.Info("server listening", "server", i.name, "address", i.listener.Addr().String())

	select {
	case err := <-errc:
		return serveError(err)
	case <-ctx.Done():
	}

	slog.Info("shutting down", "server", i.name, "grace", i.grace)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), i.grace)
	defer cancel()

	err := i.shutdown(shutdownCtx)
	if serr := serveError(<-errc); err == nil {
		err = serr
	}
	return err
}

// Maps the errors a server returns after being stopped to nil.
func serveError(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrServer, err)
}

// Writes the process ID so supervisors can find and signal the server.
func writePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode)
}
