package mcpfront

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbakamovic/cxxd/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "widget.cpp"), []byte("void spin() {}\n"), 0o644))

	cfg := config.Default(root)
	cfg.Log.Path = filepath.Join(root, "cxxd.log")
	return cfg
}

func callToolRequest(t *testing.T, args map[string]any) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestDiagnosticsToolReturnsSuccess(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)

	path := filepath.Join(cfg.Project.Root, "widget.cpp")
	req := callToolRequest(t, map[string]any{"contents": path, "original": path})
	res, err := s.handleDiagnostics(context.Background(), req)
	require.NoError(t, err)

	out := resultText(t, res)
	assert.Equal(t, true, out["success"])
}

func TestGoToIncludeToolReportsFailureWithoutMatch(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)

	path := filepath.Join(cfg.Project.Root, "widget.cpp")
	req := callToolRequest(t, map[string]any{"contents": path, "original": path, "line": 1})
	res, err := s.handleGoToInclude(context.Background(), req)
	require.NoError(t, err)

	out := resultText(t, res)
	assert.Equal(t, false, out["success"])
}

func TestIndexDirectoryToolRunsSynchronously(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)

	res, err := s.handleIndexDirectory(context.Background(), callToolRequest(t, nil))
	require.NoError(t, err)

	out := resultText(t, res)
	assert.Equal(t, true, out["success"])
}

func TestFormatToolFailsWithoutConfiguredStyleFile(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)

	path := filepath.Join(cfg.Project.Root, "widget.cpp")
	res, err := s.handleFormat(context.Background(), callToolRequest(t, map[string]any{"filename": path}))
	require.NoError(t, err)

	out := resultText(t, res)
	// cfg.Tools.FormatConfig is empty in config.Default, so Startup never
	// marked the service ready.
	assert.Equal(t, false, out["success"])
}
