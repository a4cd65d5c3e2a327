package codemodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbakamovic/cxxd/internal/protocol"
)

const serviceSample = `#include <vector>

class Widget {
public:
    void spin();
};

void Widget::spin() {
    int count = 0;
    count += 1;
}
`

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "widget.cpp")
	require.NoError(t, os.WriteFile(path, []byte(serviceSample), 0o644))

	svc, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)
	return svc, path
}

func TestGoToIncludeFindsMatchingLine(t *testing.T) {
	svc, path := newTestService(t)
	loc, ok := svc.GoToInclude(path, path, 1)
	require.True(t, ok)
	assert.Equal(t, "vector", loc.Filename)
}

func TestGoToIncludeNoMatchFails(t *testing.T) {
	svc, path := newTestService(t)
	_, ok := svc.GoToInclude(path, path, 99)
	assert.False(t, ok)
}

func TestDiagnosticsCleanFile(t *testing.T) {
	svc, path := newTestService(t)
	diags, ok := svc.Diagnostics(path, path)
	require.True(t, ok)
	assert.Empty(t, diags)
}

func TestSyntaxHighlightReturnsTokens(t *testing.T) {
	svc, path := newTestService(t)
	tokens, ok := svc.SyntaxHighlight(path, path)
	require.True(t, ok)
	assert.NotEmpty(t, tokens)
}

const crossFileFunctionHeader = `void foobar() {
}
`

const crossFileFunctionUser = `#include "widget.h"

void use() {
    foobar();
}
`

// TestGoToDefinitionFallsBackToStoreAcrossFiles covers spec §4.4 step 3: a
// call site whose callee is defined in a different file can't be resolved
// by DefinitionOf (which only searches the cursor's own tunit), so
// GoToDefinition must fall back to the shared Symbol Store and land on the
// definition recorded when the other file was indexed.
func TestGoToDefinitionFallsBackToStoreAcrossFiles(t *testing.T) {
	root := t.TempDir()
	headerPath := filepath.Join(root, "widget.h")
	require.NoError(t, os.WriteFile(headerPath, []byte(crossFileFunctionHeader), 0o644))
	mainPath := filepath.Join(root, "main.cpp")
	require.NoError(t, os.WriteFile(mainPath, []byte(crossFileFunctionUser), 0o644))

	svc, err := New(root, "", 1, nil, 8)
	require.NoError(t, err)
	require.True(t, svc.indexer.RunOnSingleFile(headerPath, headerPath))
	require.True(t, svc.indexer.RunOnSingleFile(mainPath, mainPath))

	loc, ok := svc.GoToDefinition(mainPath, mainPath, 4, 5) // the "foobar" call in use()
	require.True(t, ok)
	assert.Equal(t, headerPath, loc.Filename)
	assert.Equal(t, 1, loc.Line)
}

func TestTypeDeductionResolvesCursor(t *testing.T) {
	svc, path := newTestService(t)
	result, ok := svc.TypeDeduction(path, path, 3, 7)
	require.True(t, ok)
	assert.NotEmpty(t, result.Text)
}

func TestRequestUnknownSubIDFails(t *testing.T) {
	svc, _ := newTestService(t)
	ok, result := svc.Request(protocol.CodeModelSubID(99), nil)
	assert.False(t, ok)
	assert.Nil(t, result)
}

func TestRequestIndexerRunDirectory(t *testing.T) {
	svc, _ := newTestService(t)
	ok, _ := svc.Request(protocol.SubIndexer, []any{protocol.OpRunDirectory})
	assert.True(t, ok)
}

func TestRequestIndexerDropSingleAlwaysSucceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ok, _ := svc.Request(protocol.SubIndexer, []any{protocol.OpDropSingle, "widget.cpp"})
	assert.True(t, ok)
}

func TestRequestIndexerUnknownOp(t *testing.T) {
	svc, _ := newTestService(t)
	ok, _ := svc.Request(protocol.SubIndexer, []any{protocol.IndexerOpID(0x99)})
	assert.False(t, ok)
}
