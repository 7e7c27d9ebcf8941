package service

import (
	"slices"

	"github.com/cruciblehq/bentostart/internal/settings"
	"github.com/opencontainers/go-digest"
)

// Runtime representation a bento was built against.
type Kind int

const (

	// Built against the current runtime, which serves HTTP natively.
	KindCurrent Kind = iota

	// Built against the legacy runtime, composed of named runners.
	KindLegacy
)

func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Loaded, in-memory representation of a bento.
//
// A Service is created once at startup and treated as read-only afterwards.
// Kind is the only discriminant callers branch on.
type Service struct {
	Kind    Kind
	Name    string        // Declared service name.
	Version string        // Bento version, empty for unbuilt sources.
	Dir     string        // Directory the manifest was read from.
	Digest  digest.Digest // Digest of the manifest bytes.
	Runners []Runner      // Sub-runners; only legacy services declare them.
	APIs    []API         // Endpoints, for service metadata.
	Config  Config        // Config declared by a current-style service.
}

// Independently addressable sub-component of a legacy service.
type Runner struct {
	Name         string `yaml:"name" json:"name"`
	RunnableType string `yaml:"runnable_type" json:"runnable_type,omitempty"`
	Embedded     bool   `yaml:"embedded" json:"embedded,omitempty"`
}

// Endpoint exposed by a service.
type API struct {
	Name       string `yaml:"name" json:"name"`
	Route      string `yaml:"route" json:"route,omitempty"`
	InputType  string `yaml:"input_type" json:"input_type,omitempty"`
	OutputType string `yaml:"output_type" json:"output_type,omitempty"`
}

// Server config a current-style service declares for itself. Zero fields are
// not declared.
type Config struct {
	Workers int `yaml:"workers"`
	Traffic struct {
		Timeout int `yaml:"timeout"`
	} `yaml:"traffic"`
	HTTP struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"http"`
	SSL struct {
		CertFile string `yaml:"certfile"`
		KeyFile  string `yaml:"keyfile"`
		CACerts  string `yaml:"ca_certs"`
	} `yaml:"ssl"`
}

// Whether the service was built against the legacy runtime.
func (s *Service) IsLegacy() bool {
	return s.Kind == KindLegacy
}

// Whether the service declares a runner with the given name.
func (s *Service) HasRunner(name string) bool {
	return slices.ContainsFunc(s.Runners, func(r Runner) bool { return r.Name == name })
}

// Returns the service's bento tag, "name:version" or just "name".
func (s *Service) Tag() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + ":" + s.Version
}

// Applies the service's declared config on top of the framework settings.
//
// The result is a modified copy; base and the service are left untouched.
// Only declared (non-zero) values are applied.
func (s *Service) InjectConfig(base *settings.Settings) *settings.Settings {
	out := base.Clone()
	c := s.Config

	if c.Workers != 0 {
		out.APIServer.Workers = c.Workers
	}
	if c.Traffic.Timeout != 0 {
		out.APIServer.Timeout = c.Traffic.Timeout
	}
	if c.HTTP.Host != "" {
		out.HTTP.Host = c.HTTP.Host
	}
	if c.HTTP.Port != 0 {
		out.HTTP.Port = c.HTTP.Port
	}
	if c.SSL.CertFile != "" {
		out.SSL.CertFile = c.SSL.CertFile
	}
	if c.SSL.KeyFile != "" {
		out.SSL.KeyFile = c.SSL.KeyFile
	}
	if c.SSL.CACerts != "" {
		out.SSL.CACerts = c.SSL.CACerts
	}

	return out
}
