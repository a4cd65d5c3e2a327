package tools

import (
	"os"
	"os/exec"
	"time"

	"github.com/jbakamovic/cxxd/internal/logging"
)

// Build wraps an external build invocation, run inside a fixed working
// directory with output captured to a temp file
// (spec §4.5 "Build"; original_source/services/project_builder_service.py).
type Build struct {
	buildDir   string
	tag        string
	outputFile string
	ready      bool
}

// NewBuild constructs an unstarted Build service.
func NewBuild() *Build {
	return &Build{}
}

// Startup records the build directory and allocates the shared output
// temp file (spec §4.5 "startup(build_dir, tag) allocates a temp output
// file").
func (b *Build) Startup(buildDir, tag string) {
	if buildDir == "" {
		logging.Error("build: startup with empty build dir")
		b.ready = false
		return
	}
	out, err := os.CreateTemp("", "*_project_build_output")
	if err != nil {
		logging.Error("build: creating output temp file: %v", err)
		b.ready = false
		return
	}
	out.Close()

	b.buildDir = buildDir
	b.tag = tag
	b.outputFile = out.Name()
	b.ready = true
}

// Shutdown releases the temp output file.
func (b *Build) Shutdown() {
	if b.outputFile != "" {
		os.Remove(b.outputFile)
	}
	b.ready = false
}

// Request runs cmd inside the build directory, capturing stdout and
// stderr into the shared output file and reporting elapsed time
// (spec §4.5 "request(cmd) changes directory and runs the command").
func (b *Build) Request(cmd string) (bool, string, float64) {
	if !b.ready {
		return false, "", 0
	}

	out, err := os.Create(b.outputFile)
	if err != nil {
		logging.Error("build: truncating output file: %v", err)
		return false, "", 0
	}
	defer out.Close()

	start := time.Now()
	command := exec.Command("sh", "-c", cmd)
	command.Dir = b.buildDir
	command.Stdout = out
	command.Stderr = out
	err = command.Run()
	elapsed := time.Since(start).Seconds()

	logging.Info("build: %q in %s took %.3fs", cmd, b.buildDir, elapsed)
	return err == nil, b.outputFile, elapsed
}
