package launch

import (
	"context"
	"fmt"

	"github.com/cruciblehq/bentostart/internal/depmap"
	"github.com/cruciblehq/bentostart/internal/service"
	"github.com/cruciblehq/bentostart/internal/settings"
)

// Server variant a process runs.
type Strategy int

const (
	StrategyNone Strategy = iota

	// Full API server of a legacy service.
	StrategyLegacyHTTP

	// Server hosting one runner of a legacy service.
	StrategyRunner

	// HTTP server of a current-style service.
	StrategyHTTP

	// gRPC server of a legacy service.
	StrategyGRPC
)

func (s Strategy) String() string {
	switch s {
	case StrategyLegacyHTTP:
		return "legacy-http"
	case StrategyRunner:
		return "runner"
	case StrategyHTTP:
		return "http"
	case StrategyGRPC:
		return "grpc"
	default:
		return "none"
	}
}

// Resolved launch decision.
//
// A Target is produced once per process and not modified afterwards. Which
// fields are meaningful depends on Strategy:
//
//	StrategyLegacyHTTP  Server, Dependencies
//	StrategyRunner      Runner, RunnerName
//	StrategyHTTP        Server, Dependencies, ServiceName
//	StrategyGRPC        Server, Dependencies, GRPC
type Target struct {
	Strategy     Strategy
	BentoRef     string
	WorkingDir   string
	Service      *service.Service
	Settings     *settings.Settings // Framework defaults for unset options.
	Dependencies depmap.Map
	Server       ServerConfig
	Runner       RunnerConfig
	RunnerName   string
	ServiceName  string
	GRPC         GRPCOptions
}

// Server implementations a target can be handed to.
//
// Each method blocks for the lifetime of the server and returns when ctx is
// done and the server has shut down, or when it fails.
type Strategies interface {
	ServeLegacyHTTP(ctx context.Context, t Target) error
	ServeRunner(ctx context.Context, t Target) error
	ServeHTTP(ctx context.Context, t Target) error
	ServeGRPC(ctx context.Context, t Target) error
}

// Hands the target to the one strategy it selects.
func Run(ctx context.Context, s Strategies, t Target) error {
	switch t.Strategy {
	case StrategyLegacyHTTP:
		return s.ServeLegacyHTTP(ctx, t)
	case StrategyRunner:
		return s.ServeRunner(ctx, t)
	case StrategyHTTP:
		return s.ServeHTTP(ctx, t)
	case StrategyGRPC:
		return s.ServeGRPC(ctx, t)
	default:
		return fmt.Errorf("%w: %s", ErrStrategy, t.Strategy)
	}
}
