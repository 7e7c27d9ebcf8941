// Provides the filesystem locations used at startup.
//
// The BentoML home (bento store and framework configuration file) follows the
// framework's own convention of ~/bentoml, overridable with BENTOML_HOME.
// Runtime files (the PID file) follow XDG conventions on Linux and the
// platform-native cache directory on macOS.
package paths
