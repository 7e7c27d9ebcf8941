package server

import (
	"runtime"
	"testing"
	"time"

	"github.com/cruciblehq/bentostart/internal/launch"
	"github.com/cruciblehq/bentostart/internal/settings"
)

func TestHTTPConfigFillsUnset(t *testing.T) {
	st := settings.Defaults()
	st.SSL.CertFile = "cert.pem"

	c := httpConfig(launch.ServerConfig{}, st)

	if c.Host != "0.0.0.0" || c.Port != 3000 {
		t.Fatalf("address = %s:%d, want 0.0.0.0:3000", c.Host, c.Port)
	}
	if c.Backlog != 2048 {
		t.Fatalf("Backlog = %d, want 2048", c.Backlog)
	}
	if c.Workers != runtime.NumCPU() {
		t.Fatalf("Workers = %d, want %d", c.Workers, runtime.NumCPU())
	}
	if c.Timeout != 60*time.Second {
		t.Fatalf("Timeout = %v, want 60s", c.Timeout)
	}
	if c.KeepAlive != 5*time.Second {
		t.Fatalf("KeepAlive = %v, want 5s", c.KeepAlive)
	}
	if c.GracefulShutdown != 30*time.Second {
		t.Fatalf("GracefulShutdown = %v, want 30s", c.GracefulShutdown)
	}
	if c.SSL.CertFile != "cert.pem" {
		t.Fatalf("SSL.CertFile = %q, want %q", c.SSL.CertFile, "cert.pem")
	}
	if c.SSL.Version != 17 {
		t.Fatalf("SSL.Version = %d, want 17", c.SSL.Version)
	}
}

func TestHTTPConfigKeepsSet(t *testing.T) {
	in := launch.ServerConfig{
		Host:             "127.0.0.1",
		Port:             8080,
		Backlog:          16,
		Workers:          3,
		Timeout:          time.Second,
		KeepAlive:        2 * time.Second,
		GracefulShutdown: 3 * time.Second,
		SSL:              launch.SSL{CertFile: "mine.pem", Version: 5},
	}

	st := settings.Defaults()
	st.SSL.CertFile = "theirs.pem"

	c := httpConfig(in, st)

	if c.Host != in.Host || c.Port != in.Port || c.Backlog != in.Backlog || c.Workers != in.Workers {
		t.Fatalf("config = %+v, want %+v", c, in)
	}
	if c.Timeout != in.Timeout || c.KeepAlive != in.KeepAlive || c.GracefulShutdown != in.GracefulShutdown {
		t.Fatalf("durations = %v/%v/%v, want %v/%v/%v",
			c.Timeout, c.KeepAlive, c.GracefulShutdown, in.Timeout, in.KeepAlive, in.GracefulShutdown)
	}
	if c.SSL.CertFile != "mine.pem" || c.SSL.Version != 5 {
		t.Fatalf("SSL = %+v, want CertFile mine.pem and Version 5", c.SSL)
	}
}

func TestHTTPConfigWorkersFromSettings(t *testing.T) {
	st := settings.Defaults()
	st.APIServer.Workers = 7

	if got := httpConfig(launch.ServerConfig{}, st).Workers; got != 7 {
		t.Fatalf("Workers = %d, want 7", got)
	}
}

func TestGRPCConfigUsesGRPCAddress(t *testing.T) {
	st := settings.Defaults()
	st.HTTP.Port = 3000
	st.GRPC.Host = "127.0.0.2"
	st.GRPC.Port = 50051

	c := grpcConfig(launch.ServerConfig{}, st)
	if c.Host != "127.0.0.2" || c.Port != 50051 {
		t.Fatalf("address = %s:%d, want 127.0.0.2:50051", c.Host, c.Port)
	}
}

func TestRunnerConfig(t *testing.T) {
	st := settings.Defaults()

	c := runnerConfig(launch.RunnerConfig{Port: 9000}, st)

	if c.Host != st.HTTP.Host {
		t.Fatalf("Host = %q, want %q", c.Host, st.HTTP.Host)
	}
	if c.Port != 9000 {
		t.Fatalf("Port = %d, want 9000", c.Port)
	}
	if c.Timeout != launch.Seconds(st.Runner.Timeout) {
		t.Fatalf("Timeout = %v, want %v", c.Timeout, launch.Seconds(st.Runner.Timeout))
	}
}

func TestGRPCOptions(t *testing.T) {
	st := settings.Defaults()
	st.GRPC.Channelz = true

	o := grpcOptions(launch.GRPCOptions{Reflection: true}, st)

	if o.ProtocolVersion != launch.ProtocolV1 {
		t.Fatalf("ProtocolVersion = %q, want %q", o.ProtocolVersion, launch.ProtocolV1)
	}
	if o.MaxConcurrentStreams != 100 {
		t.Fatalf("MaxConcurrentStreams = %d, want 100", o.MaxConcurrentStreams)
	}
	if !o.Reflection || !o.Channelz {
		t.Fatalf("Reflection, Channelz = %v, %v, want true, true", o.Reflection, o.Channelz)
	}

	o = grpcOptions(launch.GRPCOptions{ProtocolVersion: launch.ProtocolV1Alpha1, MaxConcurrentStreams: 8}, st)
	if o.ProtocolVersion != launch.ProtocolV1Alpha1 || o.MaxConcurrentStreams != 8 {
		t.Fatalf("options = %+v, want v1alpha1 with 8 streams", o)
	}
}

func TestTargetSettingsDefaults(t *testing.T) {
	if got := targetSettings(nil); got.HTTP.Port != 3000 {
		t.Fatalf("HTTP.Port = %d, want 3000", got.HTTP.Port)
	}

	st := settings.Defaults()
	if got := targetSettings(st); got != st {
		t.Fatal("expected the given settings to be returned")
	}
}
