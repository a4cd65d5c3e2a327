// Package config loads the daemon's project configuration from a KDL
// document (spec.md §6 "Compilation-flags input", §4.4 startup payload).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config is the fully-resolved project configuration passed to the Outer
// Boundary at startup.
type Config struct {
	Project Project
	Index   Index
	Tools   Tools
	Log     Log
}

// Project describes the indexed source tree.
type Project struct {
	Root          string // absolute path
	CompilerFlags string // path to a JSON compilation database or a text flags file
}

// Index controls the Indexer Engine's fan-out (spec §4.3, §5).
type Index struct {
	WorkerCount   int      // 0 => runtime.NumCPU()
	Extensions    []string // defaults to the closed set in spec §4.3
	CacheCapacity int      // translation-unit cache bound; 0 => unbounded (spec §3)
}

// Tools configures the three External Tool Services (spec §4.5).
type Tools struct {
	FormatBinary string
	FormatConfig string

	LintBinary   string
	LintDatabase string

	BuildDir string
	BuildTag string
}

// Log configures the Outer Boundary's logging setup (spec §4.8).
type Log struct {
	Path string
}

// DefaultExtensions is the closed set of source extensions the Indexer
// Engine's file discovery walk accepts (spec §4.3 "File discovery").
var DefaultExtensions = []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hh", ".hpp"}

// Default returns a Config with every field defaulted the way the original
// daemon behaves when no KDL document overrides it.
func Default(projectRoot string) *Config {
	return &Config{
		Project: Project{Root: projectRoot},
		Index: Index{
			WorkerCount:   runtime.NumCPU(),
			Extensions:    append([]string(nil), DefaultExtensions...),
			CacheCapacity: 32,
		},
		Log: Log{Path: filepath.Join(os.TempDir(), "cxxd.log")},
	}
}

// Validate rejects a configuration the rest of the daemon cannot act on —
// mirroring spec §6's "Unknown extensions are rejected with a logged
// error" for the compiler-flags input.
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return fmt.Errorf("config: project root must be set")
	}
	if !filepath.IsAbs(c.Project.Root) {
		return fmt.Errorf("config: project root must be absolute, got %q", c.Project.Root)
	}
	if c.Project.CompilerFlags != "" {
		ext := strings.ToLower(filepath.Ext(c.Project.CompilerFlags))
		if ext != ".json" && ext != ".txt" && ext != "" {
			return fmt.Errorf("config: unrecognized compiler flags extension %q (want .json or a plain text flags file)", ext)
		}
	}
	if c.Index.WorkerCount < 0 {
		return fmt.Errorf("config: index.worker_count must be >= 0")
	}
	return nil
}
