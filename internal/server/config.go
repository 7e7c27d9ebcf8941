package server

import (
	"runtime"

	"github.com/cruciblehq/bentostart/internal/launch"
	"github.com/cruciblehq/bentostart/internal/settings"
)

// Fills the unset options of an API server from the framework settings.
func httpConfig(c launch.ServerConfig, st *settings.Settings) launch.ServerConfig {
	if c.Host == "" {
		c.Host = st.HTTP.Host
	}
	if c.Port == 0 {
		c.Port = st.HTTP.Port
	}
	return fillCommon(c, st)
}

// Fills the unset options of a gRPC server from the framework settings.
func grpcConfig(c launch.ServerConfig, st *settings.Settings) launch.ServerConfig {
	if c.Host == "" {
		c.Host = st.GRPC.Host
	}
	if c.Port == 0 {
		c.Port = st.GRPC.Port
	}
	return fillCommon(c, st)
}

func fillCommon(c launch.ServerConfig, st *settings.Settings) launch.ServerConfig {
	if c.Backlog == 0 {
		c.Backlog = st.APIServer.Backlog
	}
	if c.Workers == 0 {
		c.Workers = st.APIServer.Workers
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Timeout == 0 {
		c.Timeout = launch.Seconds(st.APIServer.Timeout)
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = launch.Seconds(st.APIServer.KeepAlive)
	}
	if c.GracefulShutdown == 0 {
		c.GracefulShutdown = launch.Seconds(st.APIServer.GracefulShutdown)
	}
	c.SSL = sslConfig(c.SSL, st.SSL)
	return c
}

func sslConfig(c launch.SSL, st settings.SSL) launch.SSL {
	if c.CertFile == "" {
		c.CertFile = st.CertFile
	}
	if c.KeyFile == "" {
		c.KeyFile = st.KeyFile
	}
	if c.KeyPassword == "" {
		c.KeyPassword = st.KeyFilePassword
	}
	if c.Version == 0 {
		c.Version = st.Version
	}
	if c.CertReqs == 0 {
		c.CertReqs = st.CertReqs
	}
	if c.CACerts == "" {
		c.CACerts = st.CACerts
	}
	if c.Ciphers == "" {
		c.Ciphers = st.Ciphers
	}
	return c
}

// Fills the unset options of a runner server from the framework settings.
// Runner servers bind where API servers do by default.
func runnerConfig(c launch.RunnerConfig, st *settings.Settings) launch.RunnerConfig {
	if c.Host == "" {
		c.Host = st.HTTP.Host
	}
	if c.Port == 0 {
		c.Port = st.HTTP.Port
	}
	if c.Backlog == 0 {
		c.Backlog = st.APIServer.Backlog
	}
	if c.Timeout == 0 {
		c.Timeout = launch.Seconds(st.Runner.Timeout)
	}
	return c
}

// Fills the unset gRPC toggles from the framework settings. Reflection and
// channelz are enabled if either source enables them.
func grpcOptions(o launch.GRPCOptions, st *settings.Settings) launch.GRPCOptions {
	if o.ProtocolVersion == "" {
		o.ProtocolVersion = launch.ProtocolVersion(st.GRPC.ProtocolVersion)
	}
	if o.MaxConcurrentStreams == 0 {
		o.MaxConcurrentStreams = st.GRPC.MaxConcurrentStreams
	}
	o.Reflection = o.Reflection || st.GRPC.Reflection
	o.Channelz = o.Channelz || st.GRPC.Channelz
	return o
}

// Returns the target's settings, or the built-in defaults.
func targetSettings(st *settings.Settings) *settings.Settings {
	if st == nil {
		return settings.Defaults()
	}
	return st
}
