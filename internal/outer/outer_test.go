package outer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jbakamovic/cxxd/internal/config"
	"github.com/jbakamovic/cxxd/internal/protocol"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "widget.cpp"), []byte("void spin() {}\n"), 0o644))

	cfg := config.Default(root)
	cfg.Log.Path = filepath.Join(root, "cxxd.log")
	return cfg
}

func TestStartServerRegistersAllServices(t *testing.T) {
	cfg := testConfig(t)
	h, err := StartServer(cfg)
	require.NoError(t, err)

	StartService(h, protocol.ServiceCodeModel)
	RunOnDirectory(h)
	time.Sleep(20 * time.Millisecond)

	StopServer(h)
	h.Dispatcher.Join()
}

func TestConvenienceWrappersDoNotPanic(t *testing.T) {
	cfg := testConfig(t)
	h, err := StartServer(cfg)
	require.NoError(t, err)

	StartAll(h)
	time.Sleep(10 * time.Millisecond)

	path := filepath.Join(cfg.Project.Root, "widget.cpp")
	GoToDefinition(h, path, path, 1, 6)
	Diagnostics(h, path, path)
	SyntaxHighlight(h, path, path)
	TypeDeduction(h, path, path, 1, 6)
	GoToInclude(h, path, path, 1)
	time.Sleep(10 * time.Millisecond)

	StopServer(h)
	h.Dispatcher.Join()
}
