package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/bentostart/internal/bind"
	"github.com/cruciblehq/bentostart/internal/depmap"
	"github.com/cruciblehq/bentostart/internal/launch"
	"github.com/cruciblehq/bentostart/internal/service"
	"github.com/cruciblehq/bentostart/internal/settings"
	"github.com/cruciblehq/bentostart/internal/workdir"
)

// Inputs of the HTTP entry point.
type Request struct {
	BentoRef    string   // Bento path or tag.
	ServiceName string   // Service or runner to host; empty hosts the whole service.
	WorkingDir  string   // Explicit working directory; empty infers it.
	Depends     []string // Remote dependencies as name=address tokens.
	RunnerMap   string   // Remote dependencies as a JSON object; ignored when Depends is set.
	Bind        string   // Legacy tcp://host:port address.
	Server      launch.ServerConfig
}

// Selects and starts the server variant for a bento.
//
// Resolution runs to completion before any strategy is invoked, so an invalid
// input never leaves a socket open behind it.
type Dispatcher struct {
	loader     service.Loader
	strategies launch.Strategies
	settings   *settings.Settings
	searchPath *workdir.SearchPath
}

// Creates a dispatcher. A nil st uses the built-in framework defaults.
func New(loader service.Loader, strategies launch.Strategies, st *settings.Settings) *Dispatcher {
	if st == nil {
		st = settings.Defaults()
	}
	return &Dispatcher{
		loader:     loader,
		strategies: strategies,
		settings:   st,
		searchPath: workdir.NewSearchPath(),
	}
}

// Returns the search path the loader is given.
func (d *Dispatcher) SearchPath() *workdir.SearchPath {
	return d.searchPath
}

// Resolves the request and runs the selected strategy until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, req Request) error {
	t, err := d.Resolve(ctx, req)
	if err != nil {
		return err
	}
	return d.launch(ctx, t)
}

// Resolves the launch target for the HTTP entry point.
//
// A legacy service is served whole unless ServiceName names something other
// than the service itself, in which case only that runner is served. A
// current-style service is always served whole, with its declared config
// applied over the framework settings.
func (d *Dispatcher) Resolve(ctx context.Context, req Request) (launch.Target, error) {
	wd := d.prepareWorkingDir(req.BentoRef, req.WorkingDir)

	deps, err := depmap.Resolve(req.Depends, req.RunnerMap)
	if err != nil {
		return launch.Target{}, fmt.Errorf("%w: %w", ErrResolve, err)
	}

	addr, err := bind.Resolve(req.Server.Host, req.Server.Port, req.Bind)
	if err != nil {
		return launch.Target{}, fmt.Errorf("%w: %w", ErrResolve, err)
	}

	cfg := req.Server
	cfg.Host, cfg.Port = addr.Host, addr.Port

	svc, err := d.load(ctx, req.BentoRef)
	if err != nil {
		return launch.Target{}, err
	}

	t := launch.Target{
		BentoRef:   req.BentoRef,
		WorkingDir: wd,
		Service:    svc,
		Settings:   d.settings,
	}

	switch svc.Kind {
	case service.KindLegacy:
		if cfg.Reload {
			slog.Warn("--reload does not work with legacy style services", "service", svc.Name)
			cfg.Reload = false
		}
		if req.ServiceName == "" || req.ServiceName == svc.Name {
			t.Strategy = launch.StrategyLegacyHTTP
			t.Server = cfg
			t.Dependencies = deps
		} else {
			t.Strategy = launch.StrategyRunner
			t.Runner = cfg.Runner()
			t.RunnerName = req.ServiceName
		}
	default:
		t.Settings = svc.InjectConfig(d.settings)
		t.Strategy = launch.StrategyHTTP
		t.Server = cfg
		t.Dependencies = deps
		t.ServiceName = req.ServiceName
	}

	return t, nil
}

// Resolves the working directory and puts it first on the search path.
func (d *Dispatcher) prepareWorkingDir(bentoRef, explicit string) string {
	wd := workdir.Resolve(bentoRef, explicit)
	if d.searchPath.Prepend(wd) {
		slog.Debug("working directory added to search path", "dir", wd)
	}
	return wd
}

func (d *Dispatcher) load(ctx context.Context, bentoRef string) (*service.Service, error) {
	svc, err := d.loader.Load(ctx, bentoRef, d.searchPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	slog.Debug("service loaded", "service", svc.Name, "kind", svc.Kind, "digest", svc.Digest)
	return svc, nil
}

// Hands a resolved target to its strategy.
func (d *Dispatcher) launch(ctx context.Context, t launch.Target) error {
	for _, name := range t.Dependencies.Names() {
		slog.Info("using remote dependency", "name", name, "address", t.Dependencies[name])
	}

	slog.Info("starting server",
		"strategy", t.Strategy,
		"bento", t.BentoRef,
		"service", t.Service.Name,
		"working_dir", t.WorkingDir,
	)

	return launch.Run(ctx, d.strategies, t)
}
