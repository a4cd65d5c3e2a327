package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverSourcesFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.cpp"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "widget.h"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte(""), 0o644))

	files, err := DiscoverSources(root, Extensions)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverSourcesEmptyDir(t *testing.T) {
	root := t.TempDir()
	files, err := DiscoverSources(root, Extensions)
	require.NoError(t, err)
	assert.Empty(t, files)
}
