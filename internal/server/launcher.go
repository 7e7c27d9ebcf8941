package server

import (
	"net"
	"net/http"

	"github.com/cruciblehq/bentostart/internal/paths"
	"github.com/cruciblehq/bentostart/internal/service"
	"github.com/cruciblehq/bentostart/internal/workdir"
	"google.golang.org/grpc"
)

// Request-handling engine mounted on the bootstrap servers.
//
// The servers in this package own sockets, TLS, health and metrics; serving
// the service's own endpoints is delegated to the engine.
type Engine interface {

	// Returns the handler for a service's endpoints. Runner is empty for API
	// servers and names the hosted runner for runner servers.
	Handler(svc *service.Service, runner string) http.Handler

	// Registers the service's gRPC services.
	RegisterGRPC(s grpc.ServiceRegistrar, svc *service.Service)
}

// Default implementation of [launch.Strategies].
type Launcher struct {
	Engine     Engine              // Mounted engine; nil serves only the bootstrap surface.
	Loader     service.Loader      // Reloads the service when --reload is set.
	SearchPath *workdir.SearchPath // Search path handed to Loader on reload.
	PIDFile    string              // PID file path; empty disables it.

	onListen func(net.Addr) // Test hook, called once the listener is open.
}

// Creates a launcher that reloads services with loader and writes the PID
// file to the runtime directory.
func NewLauncher(loader service.Loader, sp *workdir.SearchPath) *Launcher {
	return &Launcher{
		Loader:     loader,
		SearchPath: sp,
		PIDFile:    paths.PIDFile(),
	}
}

// Returns the engine handler, or a not-found handler without an engine.
func (l *Launcher) engineHandler(svc *service.Service, runner string) http.Handler {
	if l.Engine == nil {
		return http.NotFoundHandler()
	}
	return l.Engine.Handler(svc, runner)
}
