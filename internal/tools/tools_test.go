package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStartupFailsOnMissingBinary(t *testing.T) {
	f := NewFormat("cxxd-nonexistent-formatter")
	f.Startup(filepath.Join(t.TempDir(), ".clang-format"))
	ok, _ := f.Request("anything.cpp")
	assert.False(t, ok)
}

func TestFormatRequestBeforeStartupFails(t *testing.T) {
	f := NewFormat("")
	ok, _ := f.Request("anything.cpp")
	assert.False(t, ok)
}

func TestLintStartupWithJSONDatabaseFailsOnMissingBinary(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "compile_commands.json")
	require.NoError(t, os.WriteFile(dbPath, []byte("[]"), 0o644))

	l := NewLint("cxxd-nonexistent-tidy")
	l.Startup(dbPath)
	assert.False(t, l.ready) // binary missing, startup leaves it unready
}

func TestLintStartupReadsInlineFlagsFile(t *testing.T) {
	dir := t.TempDir()
	flagsPath := filepath.Join(dir, "flags.txt")
	require.NoError(t, os.WriteFile(flagsPath, []byte("-std=c++17 -Wall\n"), 0o644))

	l := &Lint{binary: "true"}
	l.Startup(flagsPath)
	if l.ready {
		assert.Equal(t, []string{"--", "-std=c++17", "-Wall"}, l.compilerFlags)
	}
}

func TestBuildRequestBeforeStartupFails(t *testing.T) {
	b := NewBuild()
	ok, _, _ := b.Request("echo hi")
	assert.False(t, ok)
}

func TestBuildRequestRunsCommandInBuildDir(t *testing.T) {
	dir := t.TempDir()
	b := NewBuild()
	b.Startup(dir, "debug")
	defer b.Shutdown()

	ok, outputPath, elapsed := b.Request("pwd")
	require.True(t, ok)
	assert.FileExists(t, outputPath)
	assert.GreaterOrEqual(t, elapsed, 0.0)
}
