package cli

import (
	"context"

	"github.com/cruciblehq/bentostart/internal/dispatch"
	"github.com/cruciblehq/bentostart/internal/launch"
)

// Represents the 'bentostart start-http-server' command.
type StartHTTPServerCmd struct {
	Bento                   string      `arg:"" optional:"" default:"." help:"Bento path or tag."`
	ServiceName             string      `name:"service-name" env:"BENTOML_SERVE_SERVICE_NAME" help:"Service or runner to serve. Defaults to the whole service."`
	Depends                 []string    `env:"BENTOML_SERVE_DEPENDS" sep:" " help:"Remote dependency, as name=address. Repeatable." placeholder:"NAME=ADDRESS"`
	RunnerMap               string      `name:"runner-map" env:"BENTOML_SERVE_RUNNER_MAP" help:"Remote dependencies as a JSON object. Ignored when --depends is given." placeholder:"JSON"`
	Bind                    string      `help:"Bind address in the legacy tcp://host:port form. Overrides --host and --port." placeholder:"URL"`
	APIWorkers              int         `name:"api-workers" env:"BENTOML_API_WORKERS" help:"Number of API workers."`
	Timeout                 int         `env:"BENTOML_TIMEOUT" help:"Request timeout, in seconds."`
	TimeoutKeepAlive        int         `name:"timeout-keep-alive" help:"Idle keep-alive connection timeout, in seconds."`
	TimeoutGracefulShutdown int         `name:"timeout-graceful-shutdown" help:"Time allowed for in-flight requests on shutdown, in seconds."`
	Reload                  bool        `help:"Reload the service when its files change. Ignored for legacy services."`
	Server                  serverFlags `embed:""`
	SSL                     sslFlags    `embed:"" prefix:"ssl-"`
}

// Executes the start-http-server command.
//
// Blocks until the context is cancelled (e.g. via SIGINT or SIGTERM) and the
// server has shut down.
func (c *StartHTTPServerCmd) Run(ctx context.Context) error {
	d, err := newDispatcher()
	if err != nil {
		return err
	}
	return d.Run(ctx, c.request())
}

func (c *StartHTTPServerCmd) request() dispatch.Request {
	return dispatch.Request{
		BentoRef:    c.Bento,
		ServiceName: c.ServiceName,
		WorkingDir:  c.Server.WorkingDir,
		Depends:     c.Depends,
		RunnerMap:   c.RunnerMap,
		Bind:        c.Bind,
		Server: launch.ServerConfig{
			Host:             c.Server.Host,
			Port:             c.Server.Port,
			Backlog:          c.Server.Backlog,
			Workers:          c.APIWorkers,
			Timeout:          launch.Seconds(c.Timeout),
			KeepAlive:        launch.Seconds(c.TimeoutKeepAlive),
			GracefulShutdown: launch.Seconds(c.TimeoutGracefulShutdown),
			SSL:              c.SSL.config(),
			Reload:           c.Reload,
		},
	}
}
