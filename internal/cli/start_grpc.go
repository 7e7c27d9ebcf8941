package cli

import (
	"context"

	"github.com/cruciblehq/bentostart/internal/dispatch"
	"github.com/cruciblehq/bentostart/internal/launch"
)

// Represents the 'bentostart start-grpc-server' command.
type StartGRPCServerCmd struct {
	Bento                string       `arg:"" optional:"" default:"." help:"Bento path or tag."`
	RemoteRunner         []string     `name:"remote-runner" env:"BENTOML_SERVE_RUNNER_MAP" sep:" " help:"Remote runner, as name=address. Repeatable." placeholder:"NAME=ADDRESS"`
	APIWorkers           int          `name:"api-workers" env:"BENTOML_API_WORKERS" help:"Number of API workers."`
	EnableReflection     bool         `name:"enable-reflection" help:"Enable the gRPC reflection service."`
	EnableChannelz       bool         `name:"enable-channelz" help:"Enable the gRPC channelz service."`
	MaxConcurrentStreams int          `name:"max-concurrent-streams" help:"Maximum concurrent streams per connection."`
	ProtocolVersion      string       `name:"protocol-version" short:"p" enum:"v1,v1alpha1" default:"v1" help:"gRPC protocol version (${enum})."`
	Server               serverFlags  `embed:""`
	SSL                  grpcSSLFlags `embed:"" prefix:"ssl-"`
}

// Executes the start-grpc-server command.
//
// Blocks until the context is cancelled (e.g. via SIGINT or SIGTERM) and the
// server has shut down.
func (c *StartGRPCServerCmd) Run(ctx context.Context) error {
	d, err := newDispatcher()
	if err != nil {
		return err
	}
	return d.RunGRPC(ctx, c.request())
}

func (c *StartGRPCServerCmd) request() dispatch.GRPCRequest {
	return dispatch.GRPCRequest{
		BentoRef:      c.Bento,
		WorkingDir:    c.Server.WorkingDir,
		RemoteRunners: c.RemoteRunner,
		Server: launch.ServerConfig{
			Host:    c.Server.Host,
			Port:    c.Server.Port,
			Backlog: c.Server.Backlog,
			Workers: c.APIWorkers,
			SSL:     c.SSL.config(),
		},
		GRPC: launch.GRPCOptions{
			ProtocolVersion:      launch.ProtocolVersion(c.ProtocolVersion),
			Reflection:           c.EnableReflection,
			Channelz:             c.EnableChannelz,
			MaxConcurrentStreams: c.MaxConcurrentStreams,
		},
	}
}
