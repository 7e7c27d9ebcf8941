// Package server implements the default launch strategies.
//
// A [Launcher] binds the sockets of a resolved launch target and serves the
// bootstrap surface every server carries: liveness and readiness probes,
// Prometheus metrics, and the service's OpenAPI document for HTTP servers;
// the standard health service, plus reflection and channelz on request, for
// gRPC servers. Serving the service's own endpoints is delegated to an
// [Engine], mounted at the root of HTTP servers and registered on gRPC ones.
//
// Options the command line leaves unset are filled from the framework
// settings carried by the target. TLS options use the integer constants of
// Python's ssl module, so existing deployment tooling keeps working.
//
// Each strategy blocks until its context is done, then drains connections
// for the graceful shutdown period before closing what remains. While it
// runs, the process ID is kept in the launcher's PID file.
//
// Example usage:
//
//	l := server.NewLauncher(loader, searchPath)
//	l.Engine = engine
//
//	if err := launch.Run(ctx, l, target); err != nil {
//	    return err
//	}
package server
