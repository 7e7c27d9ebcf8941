// Package settings holds the framework's own server defaults.
//
// The startup path never invents a value for an option the user left unset.
// Instead the launch strategy falls back to these settings, which a
// current-style service may further override with its declared config before
// launch. Sources, lowest precedence first:
//
//   - built-in defaults ([Defaults])
//   - the configuration file (--config, $BENTOML_CONFIG, or
//     ~/bentoml/bentoml.yaml)
//   - BENTOML_CONFIG_* environment variables
//
// Example file:
//
//	http:
//	  port: 5000
//	api_server:
//	  backlog: 4096
//	  timeout: 120
//	grpc:
//	  reflection: true
package settings
