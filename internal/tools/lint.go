package tools

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jbakamovic/cxxd/internal/logging"
)

// Lint wraps an external static analyzer (clang-tidy by default), fed
// either a JSON compilation database or an inline flags file
// (spec §4.5 "Lint"; original_source/services/clang_tidy_service.py).
type Lint struct {
	binary        string
	compilerFlags []string // "-p", "<db>" for JSON, or "--", "<flags...>" for text
	outputFile    string
	ready         bool
}

// NewLint constructs an unstarted Lint service.
func NewLint(binary string) *Lint {
	if binary == "" {
		binary = "clang-tidy"
	}
	return &Lint{binary: binary}
}

// Startup resolves compilationDB's shape: a `.json` extension means a
// compilation database referenced via `-p`; anything else is read and its
// whitespace-separated contents inlined after `--`
// (spec §4.5 "supports two database shapes").
func (l *Lint) Startup(compilationDB string) {
	if _, err := exec.LookPath(l.binary); err != nil {
		logging.Error("lint: binary %q not found: %v", l.binary, err)
		l.ready = false
		return
	}

	ext := strings.ToLower(filepath.Ext(compilationDB))
	if ext == ".json" {
		l.compilerFlags = []string{"-p", compilationDB}
		logging.Info("lint: using JSON compilation database %s", compilationDB)
	} else {
		content, err := os.ReadFile(compilationDB)
		if err != nil {
			logging.Error("lint: reading compilation flags file %s: %v", compilationDB, err)
			l.ready = false
			return
		}
		flags := strings.Fields(string(content))
		l.compilerFlags = append([]string{"--"}, flags...)
		logging.Info("lint: using inline compiler flags from %s", compilationDB)
	}

	out, err := os.CreateTemp("", "*_clang_tidy_output")
	if err != nil {
		logging.Error("lint: creating output temp file: %v", err)
		l.ready = false
		return
	}
	out.Close()
	l.outputFile = out.Name()
	l.ready = true
}

// Shutdown releases the temp output file.
func (l *Lint) Shutdown() {
	if l.outputFile != "" {
		os.Remove(l.outputFile)
	}
	l.ready = false
}

// Request runs the linter over filename, optionally applying fixes in
// place, capturing output to the temp file allocated at Startup
// (spec §4.5 "request(file, apply_fixes)").
func (l *Lint) Request(filename string, applyFixes bool) (bool, string) {
	if !l.ready {
		return false, ""
	}

	args := append([]string{filename}, l.compilerFlags...)
	if applyFixes {
		args = append([]string{filename, "-fix"}, l.compilerFlags...)
	}

	out, err := os.Create(l.outputFile)
	if err != nil {
		logging.Error("lint: truncating output file: %v", err)
		return false, ""
	}
	defer out.Close()

	start := time.Now()
	cmd := exec.Command(l.binary, args...)
	cmd.Stdout = out
	err = cmd.Run()
	logging.Info("lint: %s over %s completed in %s", l.binary, filename, time.Since(start))

	if err != nil {
		logging.Error("lint: %s on %s failed: %v", l.binary, filename, err)
		return false, ""
	}
	return true, l.outputFile
}
