package cli

import "github.com/cruciblehq/bentostart/internal/launch"

// Flags shared by every server command. Zero values are unset and filled from
// the framework settings by the server.
type serverFlags struct {
	Host       string `help:"Host to bind." env:"BENTOML_HOST"`
	Port       int    `help:"Port to bind." env:"BENTOML_PORT"`
	Backlog    int    `help:"Maximum number of pending connections."`
	WorkingDir string `name:"working-dir" help:"Directory to load the bento from. Inferred from the bento when unset." placeholder:"DIR"`
}

// TLS flags of the HTTP server, in the form of Python's ssl module.
type sslFlags struct {
	Certfile        string `help:"SSL certificate file."`
	Keyfile         string `help:"SSL key file. Defaults to the certificate file."`
	KeyfilePassword string `name:"keyfile-password" help:"Password of an encrypted SSL key file."`
	Version         int    `help:"SSL protocol, as a Python ssl constant (17 for PROTOCOL_TLS_SERVER)."`
	CertReqs        int    `name:"cert-reqs" help:"Client certificate requirement, as a Python ssl constant (0 none, 1 optional, 2 required)."`
	CACerts         string `name:"ca-certs" help:"CA certificates file."`
	Ciphers         string `help:"Ciphers to use, in OpenSSL cipher list format."`
}

func (f sslFlags) config() launch.SSL {
	return launch.SSL{
		CertFile:    f.Certfile,
		KeyFile:     f.Keyfile,
		KeyPassword: f.KeyfilePassword,
		Version:     f.Version,
		CertReqs:    f.CertReqs,
		CACerts:     f.CACerts,
		Ciphers:     f.Ciphers,
	}
}

// TLS flags of the gRPC server.
type grpcSSLFlags struct {
	Certfile string `help:"SSL certificate file."`
	Keyfile  string `help:"SSL key file. Defaults to the certificate file."`
	CACerts  string `name:"ca-certs" help:"CA certificates file."`
}

func (f grpcSSLFlags) config() launch.SSL {
	return launch.SSL{
		CertFile: f.Certfile,
		KeyFile:  f.Keyfile,
		CACerts:  f.CACerts,
	}
}
