package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cruciblehq/bentostart/internal/paths"
	"github.com/cruciblehq/bentostart/internal/workdir"
)

// Name of the file in a store entry that holds its latest version.
const latestFile = "latest"

// Bento tag, "name[:version]".
var tagPattern = regexp.MustCompile(`^([a-z0-9](?:[-._a-z0-9]*[a-z0-9])?)(?::([A-Za-z0-9](?:[-._A-Za-z0-9]*[A-Za-z0-9])?))?$`)

// Loads a bento into a [Service].
type Loader interface {
	Load(ctx context.Context, ref string, sp *workdir.SearchPath) (*Service, error)
}

// Loads bentos from their bento.yaml manifest.
type ManifestLoader struct {
	Store string // Bento store root. Empty uses [paths.Bentos].
}

// Locates the bento named by ref and reads its manifest.
//
// Candidates, in order: ref itself as a directory; ref relative to each
// search path entry; and, if ref is a tag, the bento store entry for it. The
// first candidate that holds a manifest wins.
func (l *ManifestLoader) Load(ctx context.Context, ref string, sp *workdir.SearchPath) (*Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := l.locate(ref, sp)
	if err != nil {
		return nil, err
	}

	return ReadManifest(dir)
}

func (l *ManifestLoader) locate(ref string, sp *workdir.SearchPath) (string, error) {
	expanded := paths.ExpandUser(ref)

	if hasManifest(expanded) {
		return expanded, nil
	}

	if sp != nil && !filepath.IsAbs(expanded) {
		for _, d := range sp.Dirs() {
			candidate := filepath.Join(d, expanded)
			if hasManifest(candidate) {
				return candidate, nil
			}
		}
	}

	if name, version, ok := ParseTag(ref); ok {
		dir, err := l.storeDir(name, version)
		if err != nil {
			return "", err
		}
		if hasManifest(dir) {
			return dir, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrNotFound, ref)
}

// Returns the store directory of a bento, resolving an empty or "latest"
// version through the store's latest file.
func (l *ManifestLoader) storeDir(name, version string) (string, error) {
	root := l.Store
	if root == "" {
		root = paths.Bentos()
	}

	if version == "" || version == latestFile {
		data, err := os.ReadFile(filepath.Join(root, name, latestFile))
		if err != nil {
			return "", fmt.Errorf("%w: %s has no latest version", ErrNotFound, name)
		}
		version = strings.TrimSpace(string(data))
	}

	return filepath.Join(root, name, version), nil
}

// Splits a bento tag into name and version. The version is empty when the
// tag has none.
func ParseTag(ref string) (name, version string, ok bool) {
	m := tagPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func hasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFile))
	return err == nil && info.Mode().IsRegular()
}
