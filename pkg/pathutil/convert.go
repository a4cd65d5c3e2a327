// Package pathutil converts between absolute and project-relative paths.
//
// The symbol store keeps every location relative to the indexed project
// root and re-prepends the root only when a result crosses the store
// boundary. This package is the conversion layer between the two
// representations.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to one relative to rootDir.
// Falls back to the original path if conversion fails, the path already
// lives outside rootDir, or the path is already relative.
//
//   - ToRelative("/proj/src/main.cpp", "/proj") → "src/main.cpp"
//   - ToRelative("/other/file.cpp", "/proj")     → "/other/file.cpp" (outside root)
//   - ToRelative("src/main.cpp", "/proj")        → "src/main.cpp" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// ToAbsolute re-prepends rootDir to a path stored relative to it.
// A path that is already absolute is returned unchanged.
func ToAbsolute(relPath, rootDir string) string {
	if relPath == "" || filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(rootDir, relPath)
}

// Basename strips rootDir, and one leading separator, from fullPath.
// It mirrors the indexer's original "filename minus project root" rule:
// a prefix trim rather than a filepath.Rel computation, so it tolerates
// paths that reached the indexer through a symlinked include.
func Basename(rootDir, fullPath string) string {
	if !strings.HasPrefix(fullPath, rootDir) {
		return fullPath
	}
	trimmed := fullPath[len(rootDir):]
	return strings.TrimPrefix(trimmed, string(filepath.Separator))
}
