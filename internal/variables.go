package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Program name, used for the CLI, the logger group and runtime files.
	Name = "bentostart"

	// Placeholder for build variables that were not set.
	undefined = "(undefined)"

	// Version string reported by binaries built outside the release pipeline.
	localBuild = "(local)"

	// Stage that is omitted from version strings.
	releaseStage = "main"
)

// Set through -ldflags "-X github.com/cruciblehq/bentostart/internal.<var>=...".
var (
	version   = "" // Release version, with or without a leading "v".
	stage     = "" // Release stage or branch the binary was cut from.
	gitCommit = "" // Commit hash the binary was built from.

	rawQuiet   = "false" // Default for --quiet.
	rawDebug   = "false" // Default for --debug.
	rawVerbose = "false" // Default for --verbose.
)

// Returns the release version without its "v" prefix, or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return undefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the lower-cased release stage, or "(undefined)".
func Stage() string {
	s := strings.ToLower(strings.TrimSpace(stage))
	if s == "" {
		return undefined
	}
	return s
}

// Returns the commit hash, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return undefined
	}
	return c
}

// Whether the binary was built without the full set of release variables.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<os>/<arch>]", or "(local)".
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != releaseStage {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s/%s]", Version(), suffix, GitCommit(), runtime.GOOS, runtime.GOARCH)
}
