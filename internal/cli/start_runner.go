package cli

import (
	"context"

	"github.com/cruciblehq/bentostart/internal/dispatch"
	"github.com/cruciblehq/bentostart/internal/launch"
)

// Represents the 'bentostart start-runner-server' command.
type StartRunnerServerCmd struct {
	Bento      string      `arg:"" optional:"" default:"." help:"Bento path or tag."`
	RunnerName string      `name:"runner-name" required:"" env:"BENTOML_SERVE_RUNNER_NAME" help:"Runner to serve."`
	Bind       string      `help:"Bind address in the legacy tcp://host:port form. Overrides --host and --port." placeholder:"URL"`
	Timeout    int         `env:"BENTOML_TIMEOUT" help:"Request timeout, in seconds."`
	Server     serverFlags `embed:""`
}

// Executes the start-runner-server command.
//
// Blocks until the context is cancelled (e.g. via SIGINT or SIGTERM) and the
// server has shut down.
func (c *StartRunnerServerCmd) Run(ctx context.Context) error {
	d, err := newDispatcher()
	if err != nil {
		return err
	}
	return d.RunRunner(ctx, c.request())
}

func (c *StartRunnerServerCmd) request() dispatch.RunnerRequest {
	return dispatch.RunnerRequest{
		BentoRef:   c.Bento,
		RunnerName: c.RunnerName,
		WorkingDir: c.Server.WorkingDir,
		Bind:       c.Bind,
		Runner: launch.RunnerConfig{
			Host:    c.Server.Host,
			Port:    c.Server.Port,
			Backlog: c.Server.Backlog,
			Timeout: launch.Seconds(c.Timeout),
		},
	}
}
