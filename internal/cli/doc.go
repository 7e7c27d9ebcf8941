// Parses flags and configures logging for bentostart.
//
// The root command accepts the following flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	--config        Framework configuration file.
//
// Each start-* subcommand gathers the server options given on the command
// line or in the environment, leaving the rest unset, and hands them to the
// dispatcher. Unset options are filled from the framework settings by the
// server that ends up running.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity before
// the command runs.
package cli
