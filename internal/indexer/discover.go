// Package indexer implements the Indexer Engine (spec.md §4.3): discovery,
// fan-out, and merge of the directory-wide symbol index, plus the
// single-file and query operations that sit alongside it.
package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoverSources walks root recursively and returns every file whose
// extension is in extensions (spec §4.3 "File discovery"). Order is not
// guaranteed stable, matching the spec's explicit note.
func DiscoverSources(root string, extensions []string) ([]string, error) {
	accept := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		accept[strings.ToLower(ext)] = true
	}

	var files []string
	err := doublestar.GlobWalk(os.DirFS(root), "**", func(path string, d os.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if accept[strings.ToLower(filepath.Ext(path))] {
			files = append(files, filepath.Join(root, path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexer: discovering sources under %s: %w", root, err)
	}
	return files, nil
}
