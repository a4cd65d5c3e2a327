package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, root, relPath, content string) string {
	t.Helper()
	path := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const engineSample = `class Widget {
public:
    void spin();
};

void Widget::spin() {
    int count = 0;
    count += 1;
}
`

func TestRunOnSingleFileIndexesUnchangedFile(t *testing.T) {
	root := t.TempDir()
	path := writeSample(t, root, "widget.cpp", engineSample)

	e, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)

	ok := e.RunOnSingleFile(path, path)
	assert.True(t, ok)
}

func TestRunOnSingleFileSkipsEditedBuffer(t *testing.T) {
	root := t.TempDir()
	original := writeSample(t, root, "widget.cpp", engineSample)
	edited := writeSample(t, root, "widget.cpp.edited", engineSample)

	e, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)

	ok := e.RunOnSingleFile(original, edited)
	assert.False(t, ok)
}

func TestDropSingleFileAlwaysSucceeds(t *testing.T) {
	root := t.TempDir()
	e, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)

	assert.True(t, e.DropSingleFile("never-indexed.cpp"))
}

func TestDropAllRemovesFileFromDisk(t *testing.T) {
	root := t.TempDir()
	path := writeSample(t, root, "widget.cpp", engineSample)

	e, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)
	require.True(t, e.RunOnSingleFile(path, path))

	storeFile := filepath.Join(root, ".cxxd_index.db")
	_, err = os.Stat(storeFile)
	require.NoError(t, err)

	assert.True(t, e.DropAll(true))
	_, err = os.Stat(storeFile)
	assert.True(t, os.IsNotExist(err))
}

const crossFileClassHeader = `class Widget {
public:
    void spin();
};
`

const crossFileClassUser = `#include "widget.h"

void makeWidget(Widget input) {
    Widget local = input;
}

void use() {
    Widget other;
}
`

// TestFindAllReferencesClustersDeclarationWithCrossFileUses covers spec §8
// "Round-trip" scenario 3: a class declared in one file and used (once as a
// parameter type, twice as a local variable type) in another must all
// cluster under the declaration's USR, not scatter across the enclosing
// variables/functions that merely contain each use.
func TestFindAllReferencesClustersDeclarationWithCrossFileUses(t *testing.T) {
	root := t.TempDir()
	headerPath := writeSample(t, root, "widget.h", crossFileClassHeader)
	mainPath := writeSample(t, root, "main.cpp", crossFileClassUser)

	e, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)
	require.True(t, e.RunOnSingleFile(headerPath, headerPath))
	require.True(t, e.RunOnSingleFile(mainPath, mainPath))

	refs, ok := e.FindAllReferences(headerPath, 1, 7) // the "Widget" in "class Widget {"
	require.True(t, ok)
	assert.Len(t, refs, 4)
}

func TestFindAllReferencesUnsupportedKindReturnsEmptySuccess(t *testing.T) {
	root := t.TempDir()
	path := writeSample(t, root, "widget.cpp", "#include <vector>\n")

	e, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)

	refs, ok := e.FindAllReferences(path, 1, 12) // inside the #include directive itself
	assert.True(t, ok)
	assert.Empty(t, refs)
}

func TestPartitionAndBuildJobsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	chunks := Partition([]string{"a.cpp", "b.cpp", "c.cpp"}, 2)

	jobs, err := BuildJobs(chunks, tmpDir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	for i, job := range jobs {
		assert.FileExists(t, job.InputListPath)
		assert.NotEmpty(t, job.ID)
		assert.Contains(t, job.LogPath, "_")
		assert.Equal(t, chunks[i], job.Chunk)
	}
}
