package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cruciblehq/bentostart/internal/paths"
	"gopkg.in/yaml.v3"
)

// Prefix of environment variables that override individual settings, e.g.
// BENTOML_CONFIG_API_SERVER_BACKLOG.
const EnvPrefix = "BENTOML_CONFIG_"

// Framework-level server settings.
//
// These are the defaults a launch strategy applies to every server option the
// command line leaves unset. Durations are whole seconds, as in the framework
// configuration file.
type Settings struct {
	HTTP      HTTP      `yaml:"http" envPrefix:"HTTP_"`
	GRPC      GRPC      `yaml:"grpc" envPrefix:"GRPC_"`
	APIServer APIServer `yaml:"api_server" envPrefix:"API_SERVER_"`
	Runner    Runner    `yaml:"runner" envPrefix:"RUNNER_"`
	SSL       SSL       `yaml:"ssl" envPrefix:"SSL_"`
}

type HTTP struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type GRPC struct {
	Host                 string `yaml:"host" env:"HOST"`
	Port                 int    `yaml:"port" env:"PORT"`
	Reflection           bool   `yaml:"reflection" env:"REFLECTION"`
	Channelz             bool   `yaml:"channelz" env:"CHANNELZ"`
	MaxConcurrentStreams int    `yaml:"max_concurrent_streams" env:"MAX_CONCURRENT_STREAMS"`
	ProtocolVersion      string `yaml:"protocol_version" env:"PROTOCOL_VERSION"`
}

type APIServer struct {
	Workers          int `yaml:"workers" env:"WORKERS"` // 0 means one per CPU.
	Backlog          int `yaml:"backlog" env:"BACKLOG"`
	Timeout          int `yaml:"timeout" env:"TIMEOUT"`
	KeepAlive        int `yaml:"timeout_keep_alive" env:"TIMEOUT_KEEP_ALIVE"`
	GracefulShutdown int `yaml:"timeout_graceful_shutdown" env:"TIMEOUT_GRACEFUL_SHUTDOWN"`
}

type Runner struct {
	Timeout int `yaml:"timeout" env:"TIMEOUT"`
}

// TLS material applied when the command line gives none. Integer fields use
// the constants of Python's ssl module, as the framework does.
type SSL struct {
	CertFile        string `yaml:"certfile" env:"CERTFILE"`
	KeyFile         string `yaml:"keyfile" env:"KEYFILE"`
	KeyFilePassword string `yaml:"keyfile_password" env:"KEYFILE_PASSWORD"`
	Version         int    `yaml:"version" env:"VERSION"`
	CertReqs        int    `yaml:"cert_reqs" env:"CERT_REQS"`
	CACerts         string `yaml:"ca_certs" env:"CA_CERTS"`
	Ciphers         string `yaml:"ciphers" env:"CIPHERS"`
}

// Returns the built-in framework defaults.
func Defaults() *Settings {
	return &Settings{
		HTTP: HTTP{
			Host: "0.0.0.0",
			Port: 3000,
		},
		GRPC: GRPC{
			Host:                 "0.0.0.0",
			Port:                 3000,
			MaxConcurrentStreams: 100,
			ProtocolVersion:      "v1",
		},
		APIServer: APIServer{
			Backlog:          2048,
			Timeout:          60,
			KeepAlive:        5,
			GracefulShutdown: 30,
		},
		Runner: Runner{
			Timeout: 300,
		},
		SSL: SSL{
			Version: 17, // ssl.PROTOCOL_TLS_SERVER
		},
	}
}

// Loads the settings.
//
// Built-in defaults are overlaid by the YAML file at path and then by
// BENTOML_CONFIG_* environment variables. An empty path means the default
// configuration file, which may be absent; a file named explicitly (or via
// BENTOML_CONFIG) must exist.
func Load(path string) (*Settings, error) {
	s := Defaults()

	optional := path == "" && os.Getenv(paths.ConfigEnv) == ""
	if path == "" {
		path = paths.ConfigFile()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSettings, path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("%w: %w", ErrSettings, err)
	}

	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettings, err)
	}

	return s, nil
}

// Returns a copy that can be modified without affecting s.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}
