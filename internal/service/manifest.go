package service

import (
	_ "crypto/sha256" // Canonical digest algorithm.
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// Name of the manifest file at the root of a built bento.
const ManifestFile = "bento.yaml"

// On-disk layout of bento.yaml.
//
// Bentos built for the current runtime carry a "schema" section describing
// the service and its routes; legacy bentos list runners and apis instead.
type manifest struct {
	Service        string         `yaml:"service"`
	Name           string         `yaml:"name"`
	Version        string         `yaml:"version"`
	BentoMLVersion string         `yaml:"bentoml_version"`
	Runners        []Runner       `yaml:"runners"`
	APIs           []API          `yaml:"apis"`
	Schema         *schema        `yaml:"schema"`
	Services       []serviceEntry `yaml:"services"`
}

type schema struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Routes []API  `yaml:"routes"`
}

type serviceEntry struct {
	Name    string `yaml:"name"`
	Service string `yaml:"service"`
	Config  Config `yaml:"config"`
}

// Reads and interprets the manifest in dir.
func ReadManifest(dir string) (*Service, error) {
	p := filepath.Join(dir, ManifestFile)

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	svc, err := parseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifest, p, err)
	}

	svc.Dir = dir
	return svc, nil
}

func parseManifest(data []byte) (*Service, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	svc := &Service{
		Version: m.Version,
		Digest:  digest.FromBytes(data),
	}

	if m.Schema == nil {
		svc.Kind = KindLegacy
		svc.Name = m.Name
		svc.Runners = m.Runners
		svc.APIs = m.APIs
	} else {
		svc.Kind = KindCurrent
		svc.Name = m.Schema.Name
		if svc.Name == "" {
			svc.Name = m.Name
		}
		svc.APIs = m.Schema.Routes
		svc.Config = m.serviceConfig(svc.Name)
	}

	if svc.Name == "" {
		return nil, fmt.Errorf("no service name declared")
	}
	return svc, nil
}

// Returns the declared config of the named service, falling back to the
// first service entry.
func (m *manifest) serviceConfig(name string) Config {
	for _, e := range m.Services {
		if e.Name == name {
			return e.Config
		}
	}
	if len(m.Services) > 0 {
		return m.Services[0].Config
	}
	return Config{}
}
