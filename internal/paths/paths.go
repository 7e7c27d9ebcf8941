package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (

	// Name used for runtime directory and file naming.
	programName = "bentostart"

	// Overrides the BentoML home directory.
	HomeEnv = "BENTOML_HOME"

	// Overrides the framework configuration file.
	ConfigEnv = "BENTOML_CONFIG"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Expands a leading "~" to the user's home directory.
//
// Only "~" and "~/..." are expanded; "~user" forms are returned unchanged.
func ExpandUser(p string) string {
	if p == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return filepath.Join(xdg.Home, p[2:])
	}
	return p
}

// Root of the BentoML home directory.
//
//	$BENTOML_HOME, or ~/bentoml
func Home() string {
	if h := strings.TrimSpace(os.Getenv(HomeEnv)); h != "" {
		return ExpandUser(h)
	}
	return filepath.Join(xdg.Home, "bentoml")
}

// Directory of the local bento store.
//
//	<home>/bentos/<name>/<version>
func Bentos() string {
	return filepath.Join(Home(), "bentos")
}

// Path to the framework configuration file.
//
//	$BENTOML_CONFIG, or <home>/bentoml.yaml
func ConfigFile() string {
	if c := strings.TrimSpace(os.Getenv(ConfigEnv)); c != "" {
		return ExpandUser(c)
	}
	return filepath.Join(Home(), "bentoml.yaml")
}

// Path to the directory for runtime files.
//
//	Linux:   $XDG_RUNTIME_DIR/bentostart or /run/user/<uid>/bentostart
//	macOS:   ~/Library/Caches/bentostart/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, programName)
	}
	return filepath.Join(xdg.CacheHome, programName, "run")
}

// Path to the PID file of the running server.
func PIDFile() string {
	return filepath.Join(Runtime(), programName+".pid")
}
