package dispatch

import (
	"context"
	"fmt"

	"github.com/cruciblehq/bentostart/internal/bind"
	"github.com/cruciblehq/bentostart/internal/depmap"
	"github.com/cruciblehq/bentostart/internal/launch"
)

// Inputs of the gRPC entry point.
type GRPCRequest struct {
	BentoRef      string
	WorkingDir    string
	RemoteRunners []string // Remote runners as name=address tokens.
	Server        launch.ServerConfig
	GRPC          launch.GRPCOptions
}

// Inputs of the standalone runner entry point.
type RunnerRequest struct {
	BentoRef   string
	RunnerName string
	WorkingDir string
	Bind       string // Legacy tcp://host:port address.
	Runner     launch.RunnerConfig
}

// Resolves the request and runs the gRPC server until ctx is done.
func (d *Dispatcher) RunGRPC(ctx context.Context, req GRPCRequest) error {
	t, err := d.ResolveGRPC(ctx, req)
	if err != nil {
		return err
	}
	return d.launch(ctx, t)
}

// Resolves the launch target for the gRPC entry point.
//
// Only legacy services can be served over gRPC. The protocol version and the
// other gRPC toggles are forwarded as given.
func (d *Dispatcher) ResolveGRPC(ctx context.Context, req GRPCRequest) (launch.Target, error) {
	wd := d.prepareWorkingDir(req.BentoRef, req.WorkingDir)

	deps, err := depmap.Resolve(req.RemoteRunners, "")
	if err != nil {
		return launch.Target{}, fmt.Errorf("%w: %w", ErrResolve, err)
	}

	svc, err := d.load(ctx, req.BentoRef)
	if err != nil {
		return launch.Target{}, err
	}
	if !svc.IsLegacy() {
		return launch.Target{}, fmt.Errorf("%w: %s is a %s style service", ErrUnsupported, svc.Name, svc.Kind)
	}

	return launch.Target{
		Strategy:     launch.StrategyGRPC,
		BentoRef:     req.BentoRef,
		WorkingDir:   wd,
		Service:      svc,
		Settings:     d.settings,
		Dependencies: deps,
		Server:       req.Server,
		GRPC:         req.GRPC,
	}, nil
}

// Resolves the request and runs the runner server until ctx is done.
func (d *Dispatcher) RunRunner(ctx context.Context, req RunnerRequest) error {
	t, err := d.ResolveRunner(ctx, req)
	if err != nil {
		return err
	}
	return d.launch(ctx, t)
}

// Resolves the launch target for the standalone runner entry point.
func (d *Dispatcher) ResolveRunner(ctx context.Context, req RunnerRequest) (launch.Target, error) {
	if req.RunnerName == "" {
		return launch.Target{}, fmt.Errorf("%w: runner name is required", ErrResolve)
	}

	wd := d.prepareWorkingDir(req.BentoRef, req.WorkingDir)

	addr, err := bind.Resolve(req.Runner.Host, req.Runner.Port, req.Bind)
	if err != nil {
		return launch.Target{}, fmt.Errorf("%w: %w", ErrResolve, err)
	}

	cfg := req.Runner
	cfg.Host, cfg.Port = addr.Host, addr.Port

	svc, err := d.load(ctx, req.BentoRef)
	if err != nil {
		return launch.Target{}, err
	}
	if !svc.IsLegacy() {
		return launch.Target{}, fmt.Errorf("%w: %s is a %s style service", ErrUnsupported, svc.Name, svc.Kind)
	}

	return launch.Target{
		Strategy:   launch.StrategyRunner,
		BentoRef:   req.BentoRef,
		WorkingDir: wd,
		Service:    svc,
		Settings:   d.settings,
		Runner:     cfg,
		RunnerName: req.RunnerName,
	}, nil
}
