package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/startpacket/constants"
)

// extSet builds a lookup of normalized extensions, falling back to the
// default quote formats when exts is empty.
func extSet(exts []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, e := range exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	if len(set) == 0 {
		return constants.AllowedExtensions
	}
	return set
}

// AllowedExt reports whether path has one of the extensions in set.
func AllowedExt(path string, set map[string]struct{}) bool {
	_, ok := set[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}
