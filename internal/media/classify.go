package media

import (
	"path/filepath"
	"strings"
)

// IsEligible reports whether a path names a photo the scanner may collect.
// Names starting with '_' or '.' are reserved (system folders, hidden files)
// and never eligible regardless of extension.
func IsEligible(path string, formats map[string]struct{}) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := formats[ext]
	return ok
}
