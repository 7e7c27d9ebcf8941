package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/bentostart/internal"
	"github.com/cruciblehq/bentostart/internal/dispatch"
	"github.com/cruciblehq/bentostart/internal/server"
	"github.com/cruciblehq/bentostart/internal/service"
	"github.com/cruciblehq/bentostart/internal/settings"
)

// Represents the root command for bentostart.
type Root struct {
	Quiet             bool                 `short:"q" help:"Suppress informational output."`
	Verbose           bool                 `short:"v" help:"Enable verbose output."`
	Debug             bool                 `short:"d" help:"Enable debug output."`
	Config            string               `help:"Framework configuration file. Defaults to $BENTOML_CONFIG, then bentoml.yaml in the BentoML home." placeholder:"FILE"`
	StartHTTPServer   StartHTTPServerCmd   `cmd:"" name:"start-http-server" help:"Start the HTTP API server of a bento."`
	StartGRPCServer   StartGRPCServerCmd   `cmd:"" name:"start-grpc-server" help:"Start the gRPC API server of a legacy bento."`
	StartRunnerServer StartRunnerServerCmd `cmd:"" name:"start-runner-server" help:"Start a server hosting one runner of a legacy bento."`
	Version           VersionCmd           `cmd:"" help:"Show version information."`
}

// Parsed command line.
var RootCmd Root

// Options of the kong parser, shared with tests.
func options(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("Starts BentoML servers.\n\nResolves a bento, its dependencies and bind address, then starts the server variant the bento requires."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd, options(ctx)...)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags only ever enable a mode; modes enabled at build time stay enabled.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	slog.SetDefault(internal.NewLogger(os.Stderr))
}

// Creates a dispatcher backed by the bento.yaml loader and the default
// launch strategies, with the framework settings loaded.
func newDispatcher() (*dispatch.Dispatcher, error) {
	st, err := settings.Load(RootCmd.Config)
	if err != nil {
		return nil, err
	}

	loader := &service.ManifestLoader{}
	launcher := server.NewLauncher(loader, nil)

	d := dispatch.New(loader, launcher, st)
	launcher.SearchPath = d.SearchPath()

	return d, nil
}
