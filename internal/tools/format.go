// Package tools implements the three External Tool Services (spec.md
// §4.5): thin wrappers over external binaries, each exposing
// startup/shutdown/request exactly like a Service Worker's service handler
// (spec §4.6). Grounded on original_source/services/clang_format_service.py,
// clang_tidy_service.py and project_builder_service.py, reshaped from
// subprocess.call(..., shell=True) into explicit os/exec argv construction.
package tools

import (
	"os"
	"os/exec"

	"github.com/jbakamovic/cxxd/internal/logging"
)

// Format wraps an external code formatter (clang-format by default),
// invoked in-place over one file at a time (spec §4.5 "Format").
type Format struct {
	binary     string
	configPath string
	ready      bool
}

// NewFormat constructs an unstarted Format service.
func NewFormat(binary string) *Format {
	if binary == "" {
		binary = "clang-format"
	}
	return &Format{binary: binary}
}

// Startup validates the config file exists and the binary is resolvable
// (spec §4.5 "startup(config_path) validates the config file and
// presence of the external formatter"; spec §7 PreconditionMissing).
func (f *Format) Startup(configPath string) {
	if configPath == "" {
		logging.Error("format: startup with empty config path")
		f.ready = false
		return
	}
	if _, err := os.Stat(configPath); err != nil {
		logging.Error("format: config file %s: %v", configPath, err)
		f.ready = false
		return
	}
	if _, err := exec.LookPath(f.binary); err != nil {
		logging.Error("format: binary %q not found: %v", f.binary, err)
		f.ready = false
		return
	}
	f.configPath = configPath
	f.ready = true
}

// Shutdown releases no resources; kept for symmetry with the Service
// Worker contract (spec §4.6).
func (f *Format) Shutdown() {
	f.ready = false
}

// Request formats filename in place, style taken from the style file
// passed at Startup (spec §4.5 "request(file) invokes it in-place").
func (f *Format) Request(filename string) (bool, string) {
	if !f.ready {
		return false, ""
	}
	cmd := exec.Command(f.binary, "-i", "-style=file", "-assume-filename="+f.configPath, filename)
	if err := cmd.Run(); err != nil {
		logging.Error("format: %s on %s failed: %v", f.binary, filename, err)
		return false, ""
	}
	return true, ""
}
