package workdir

import (
	"os"

	"github.com/cruciblehq/bentostart/internal/paths"
)

// Working directory used when nothing else applies.
const Default = "."

// Resolves the directory service source code is loaded from.
//
// An explicit directory is returned verbatim. Otherwise, if the bento
// reference (with "~" expanded) names an existing directory, that directory is
// used. Otherwise, including when the reference cannot be stat'ed, the current
// directory is used.
func Resolve(bentoRef, explicit string) string {
	if explicit != "" {
		return explicit
	}

	expanded := paths.ExpandUser(bentoRef)
	if expanded == "" {
		return Default
	}

	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		return expanded
	}
	return Default
}
