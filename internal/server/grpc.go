package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/cruciblehq/bentostart/internal/launch"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	channelzservice "google.golang.org/grpc/channelz/service"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Serves the gRPC server of a legacy service.
//
// The health service reports SERVING for the server as a whole and for the
// inference service of the selected protocol version.
func (l *Launcher) ServeGRPC(ctx context.Context, t launch.Target) error {
	st := targetSettings(t.Settings)
	cfg := grpcConfig(t.Server, st)
	opts := grpcOptions(t.GRPC, st)

	version, err := launch.ParseProtocolVersion(string(opts.ProtocolVersion))
	if err != nil {
		return err
	}

	serverOpts, err := grpcServerOptions(cfg, opts)
	if err != nil {
		return err
	}

	setWorkers(cfg.Workers)

	srv := grpc.NewServer(serverOpts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(version.ServiceName(), healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(srv)
	}
	if opts.Channelz {
		channelzservice.RegisterChannelzServiceToServer(srv)
	}
	if l.Engine != nil {
		l.Engine.RegisterGRPC(srv, t.Service)
	}

	ln, err := l.listen(ctx, cfg.Host, cfg.Port, cfg.Backlog)
	if err != nil {
		return err
	}

	slog.Debug("grpc server configured",
		"protocol_version", string(version),
		"reflection", opts.Reflection,
		"channelz", opts.Channelz,
		"max_concurrent_streams", opts.MaxConcurrentStreams,
	)

	inst := &instance{
		name:     "grpc",
		listener: ln,
		serve:    srv.Serve,
		shutdown: func(ctx context.Context) error {
			hs.Shutdown()
			return stopGRPC(ctx, srv)
		},
		grace:   cfg.GracefulShutdown,
		pidFile: l.PIDFile,
	}
	return inst.run(ctx)
}

// Builds the options of a gRPC server.
func grpcServerOptions(cfg launch.ServerConfig, opts launch.GRPCOptions) ([]grpc.ServerOption, error) {
	serverOpts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	}

	if opts.MaxConcurrentStreams > 0 {
		serverOpts = append(serverOpts, grpc.MaxConcurrentStreams(uint32(opts.MaxConcurrentStreams)))
	}
	if cfg.KeepAlive > 0 {
		serverOpts = append(serverOpts, grpc.KeepaliveParams(keepalive.ServerParameters{MaxConnectionIdle: cfg.KeepAlive}))
	}
	if cfg.Timeout > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(timeoutInterceptor(cfg.Timeout)))
	}

	tlsConfig, err := buildTLS(cfg.SSL)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}

	return serverOpts, nil
}

// Bounds every unary call by the request timeout.
func timeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// Stops the server gracefully, or forcibly once ctx is done.
func stopGRPC(ctx context.Context, srv *grpc.Server) error {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("graceful shutdown timed out, closing connections")
		srv.Stop()
		<-done
	}
	return nil
}
