package workdir

import "slices"

// Ordered list of directories the service loader searches, highest priority
// first.
//
// A SearchPath is a plain value owned by the caller and handed to the loader;
// it is not shared process state. The zero value is an empty path.
type SearchPath struct {
	dirs []string
}

// Creates a search path from dirs, dropping repeated entries.
func NewSearchPath(dirs ...string) *SearchPath {
	sp := &SearchPath{}
	for i := len(dirs) - 1; i >= 0; i-- {
		sp.Prepend(dirs[i])
	}
	return sp
}

// Makes dir the highest-priority entry.
//
// Idempotent: an entry that is already first is left alone, and an entry
// found further down is moved to the front rather than duplicated. Returns
// whether the path changed.
func (sp *SearchPath) Prepend(dir string) bool {
	if len(sp.dirs) > 0 && sp.dirs[0] == dir {
		return false
	}
	sp.dirs = slices.DeleteFunc(sp.dirs, func(d string) bool { return d == dir })
	sp.dirs = slices.Insert(sp.dirs, 0, dir)
	return true
}

// Returns a copy of the entries, highest priority first.
func (sp *SearchPath) Dirs() []string {
	return slices.Clone(sp.dirs)
}

// Returns the number of entries.
func (sp *SearchPath) Len() int {
	return len(sp.dirs)
}
