package launch

import "time"

// Server options gathered from the command line.
//
// Every zero field is unset. The launch strategy fills unset fields from the
// framework settings; nothing on the startup path substitutes its own value.
type ServerConfig struct {
	Host             string
	Port             int
	Backlog          int
	Workers          int
	Timeout          time.Duration
	KeepAlive        time.Duration
	GracefulShutdown time.Duration
	SSL              SSL
	Reload           bool
}

// TLS options, passed through unevaluated.
//
// Version and CertReqs carry the integer constants of Python's ssl module,
// which is what deployment tooling emits.
type SSL struct {
	CertFile    string
	KeyFile     string
	KeyPassword string
	Version     int
	CertReqs    int
	CACerts     string
	Ciphers     string
}

// Options of a server that hosts a single runner.
type RunnerConfig struct {
	Host    string
	Port    int
	Backlog int
	Timeout time.Duration
}

// Projects the config onto the options a runner server accepts.
//
// Workers, TLS and reload do not apply to runner servers and are dropped.
func (c ServerConfig) Runner() RunnerConfig {
	return RunnerConfig{
		Host:    c.Host,
		Port:    c.Port,
		Backlog: c.Backlog,
		Timeout: c.Timeout,
	}
}

// Converts a whole number of seconds, where 0 means unset.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
