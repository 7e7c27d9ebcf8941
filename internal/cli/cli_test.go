package cli

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/bentostart/internal/launch"
)

func parse(t *testing.T, args ...string) (*Root, error) {
	t.Helper()

	var root Root
	parser, err := kong.New(&root, options(context.Background())...)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	_, err = parser.Parse(args)
	return &root, err
}

func mustParse(t *testing.T, args ...string) *Root {
	t.Helper()

	root, err := parse(t, args...)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return root
}

func TestStartHTTPServerDefaults(t *testing.T) {
	req := mustParse(t, "start-http-server").StartHTTPServer.request()

	if req.BentoRef != "." {
		t.Fatalf("BentoRef = %q, want %q", req.BentoRef, ".")
	}
	if req.Server != (launch.ServerConfig{}) {
		t.Fatalf("Server = %+v, want every option unset", req.Server)
	}
	if req.Depends != nil || req.RunnerMap != "" || req.Bind != "" {
		t.Fatalf("request = %+v, want no dependencies and no bind address", req)
	}
}

func TestStartHTTPServerFlags(t *testing.T) {
	root := mustParse(t,
		"--debug",
		"start-http-server", "./iris",
		"--service-name", "clf",
		"--depends", "a=http://a:3000",
		"--depends", "b=http://b:3000",
		"--bind", "tcp://0.0.0.0:4000",
		"--port", "5000",
		"--api-workers", "2",
		"--timeout", "30",
		"--timeout-keep-alive", "7",
		"--timeout-graceful-shutdown", "9",
		"--working-dir", "/srv",
		"--ssl-certfile", "cert.pem",
		"--ssl-keyfile-password", "secret",
		"--ssl-version", "5",
		"--reload",
	)
	if !root.Debug {
		t.Fatal("expected --debug to be set")
	}

	req := root.StartHTTPServer.request()

	if req.BentoRef != "./iris" || req.ServiceName != "clf" || req.WorkingDir != "/srv" {
		t.Fatalf("request = %+v", req)
	}
	if want := []string{"a=http://a:3000", "b=http://b:3000"}; !slices.Equal(req.Depends, want) {
		t.Fatalf("Depends = %v, want %v", req.Depends, want)
	}
	if req.Bind != "tcp://0.0.0.0:4000" || req.Server.Port != 5000 {
		t.Fatalf("Bind, Port = %q, %d, want tcp://0.0.0.0:4000, 5000", req.Bind, req.Server.Port)
	}
	if req.Server.Workers != 2 {
		t.Fatalf("Workers = %d, want 2", req.Server.Workers)
	}
	if req.Server.Timeout != 30*time.Second || req.Server.KeepAlive != 7*time.Second || req.Server.GracefulShutdown != 9*time.Second {
		t.Fatalf("durations = %v/%v/%v, want 30s/7s/9s", req.Server.Timeout, req.Server.KeepAlive, req.Server.GracefulShutdown)
	}
	want := launch.SSL{CertFile: "cert.pem", KeyPassword: "secret", Version: 5}
	if req.Server.SSL != want {
		t.Fatalf("SSL = %+v, want %+v", req.Server.SSL, want)
	}
	if !req.Server.Reload {
		t.Fatal("expected Reload to be set")
	}
}

func TestStartHTTPServerEnv(t *testing.T) {
	t.Setenv("BENTOML_SERVE_SERVICE_NAME", "clf")
	t.Setenv("BENTOML_SERVE_DEPENDS", "a=http://a:3000 b=http://b:3000")
	t.Setenv("BENTOML_SERVE_RUNNER_MAP", `{"c":"http://c:3000"}`)
	t.Setenv("BENTOML_HOST", "127.0.0.1")
	t.Setenv("BENTOML_PORT", "4000")
	t.Setenv("BENTOML_API_WORKERS", "3")
	t.Setenv("BENTOML_TIMEOUT", "20")

	req := mustParse(t, "start-http-server").StartHTTPServer.request()

	if req.ServiceName != "clf" {
		t.Fatalf("ServiceName = %q, want %q", req.ServiceName, "clf")
	}
	if want := []string{"a=http://a:3000", "b=http://b:3000"}; !slices.Equal(req.Depends, want) {
		t.Fatalf("Depends = %v, want %v", req.Depends, want)
	}
	if req.RunnerMap != `{"c":"http://c:3000"}` {
		t.Fatalf("RunnerMap = %q", req.RunnerMap)
	}
	if req.Server.Host != "127.0.0.1" || req.Server.Port != 4000 || req.Server.Workers != 3 {
		t.Fatalf("Server = %+v, want 127.0.0.1:4000 with 3 workers", req.Server)
	}
	if req.Server.Timeout != 20*time.Second {
		t.Fatalf("Timeout = %v, want 20s", req.Server.Timeout)
	}
}

func TestStartGRPCServer(t *testing.T) {
	req := mustParse(t,
		"start-grpc-server", "iris:latest",
		"--remote-runner", "clf=tcp://clf:3000",
		"--remote-runner", "enc=tcp://enc:3000",
		"--enable-reflection",
		"--max-concurrent-streams", "50",
		"-p", "v1alpha1",
		"--ssl-certfile", "cert.pem",
	).StartGRPCServer.request()

	if req.BentoRef != "iris:latest" {
		t.Fatalf("BentoRef = %q, want %q", req.BentoRef, "iris:latest")
	}
	if want := []string{"clf=tcp://clf:3000", "enc=tcp://enc:3000"}; !slices.Equal(req.RemoteRunners, want) {
		t.Fatalf("RemoteRunners = %v, want %v", req.RemoteRunners, want)
	}
	want := launch.GRPCOptions{ProtocolVersion: launch.ProtocolV1Alpha1, Reflection: true, MaxConcurrentStreams: 50}
	if req.GRPC != want {
		t.Fatalf("GRPC = %+v, want %+v", req.GRPC, want)
	}
	if req.Server.SSL.CertFile != "cert.pem" {
		t.Fatalf("SSL.CertFile = %q, want %q", req.Server.SSL.CertFile, "cert.pem")
	}
}

func TestStartGRPCServerEnv(t *testing.T) {
	t.Setenv("BENTOML_SERVE_RUNNER_MAP", "clf=tcp://clf:3000 enc=tcp://enc:3000")

	req := mustParse(t, "start-grpc-server").StartGRPCServer.request()

	if want := []string{"clf=tcp://clf:3000", "enc=tcp://enc:3000"}; !slices.Equal(req.RemoteRunners, want) {
		t.Fatalf("RemoteRunners = %v, want %v", req.RemoteRunners, want)
	}
}

func TestStartGRPCServerProtocolVersion(t *testing.T) {
	req := mustParse(t, "start-grpc-server").StartGRPCServer.request()
	if req.GRPC.ProtocolVersion != launch.ProtocolV1 {
		t.Fatalf("ProtocolVersion = %q, want %q", req.GRPC.ProtocolVersion, launch.ProtocolV1)
	}

	if _, err := parse(t, "start-grpc-server", "--protocol-version", "v2"); err == nil {
		t.Fatal("expected an error for an unknown protocol version")
	}
}

func TestStartRunnerServer(t *testing.T) {
	req := mustParse(t,
		"start-runner-server", "iris",
		"--runner-name", "clf",
		"--bind", "tcp://127.0.0.1:3001",
		"--timeout", "300",
		"--backlog", "64",
	).StartRunnerServer.request()

	if req.RunnerName != "clf" || req.Bind != "tcp://127.0.0.1:3001" {
		t.Fatalf("request = %+v", req)
	}
	want := launch.RunnerConfig{Backlog: 64, Timeout: 300 * time.Second}
	if req.Runner != want {
		t.Fatalf("Runner = %+v, want %+v", req.Runner, want)
	}
}

func TestStartRunnerServerEnv(t *testing.T) {
	t.Setenv("BENTOML_SERVE_RUNNER_NAME", "clf")
	t.Setenv("BENTOML_TIMEOUT", "45")

	req := mustParse(t, "start-runner-server").StartRunnerServer.request()

	if req.Runner.Timeout != 45*time.Second {
		t.Fatalf("Runner.Timeout = %v, want 45s", req.Runner.Timeout)
	}
}

func TestStartRunnerServerRequiresName(t *testing.T) {
	if _, err := parse(t, "start-runner-server"); err == nil {
		t.Fatal("expected an error without --runner-name")
	}

	t.Setenv("BENTOML_SERVE_RUNNER_NAME", "clf")
	req := mustParse(t, "start-runner-server").StartRunnerServer.request()
	if req.RunnerName != "clf" {
		t.Fatalf("RunnerName = %q, want %q", req.RunnerName, "clf")
	}
}
