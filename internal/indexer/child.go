package indexer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/parserfacade"
	"github.com/jbakamovic/cxxd/internal/store"
)

// IndexChunkSubcommand is the hidden CLI verb the indexer re-execs itself
// with to run one fan-out child (spec §4.3 "Fan-out"; SPEC_FULL.md
// CONCURRENCY MAPPING).
const IndexChunkSubcommand = "index-chunk"

// JobDescriptor is one fan-out child's unit of work (spec §3 "Indexer job
// descriptor").
type JobDescriptor struct {
	ID              string
	Chunk           []string
	InputListPath   string
	WorkerStorePath string
	LogPath         string
}

// BuildJobs writes one input-list file per chunk under tmpDir and returns
// the resulting job descriptors (spec §3 "Indexer job descriptor";
// §4.3 "per-subprocess log naming").
func BuildJobs(chunks [][]string, tmpDir string) ([]*JobDescriptor, error) {
	jobs := make([]*JobDescriptor, 0, len(chunks))
	baseLog := filepath.Join(tmpDir, "cxxd-index.log")

	for i, chunk := range chunks {
		id := uuid.NewString()
		inputListPath := filepath.Join(tmpDir, fmt.Sprintf("chunk-%d-input.list", i))
		if err := writeInputList(inputListPath, chunk); err != nil {
			return nil, err
		}

		jobs = append(jobs, &JobDescriptor{
			ID:              id,
			Chunk:           chunk,
			InputListPath:   inputListPath,
			WorkerStorePath: filepath.Join(tmpDir, fmt.Sprintf("chunk-%d-store.db", i)),
			// <base log>_<n> mirrors clang_indexer.py's start_indexing_subprocess
			// naming scheme (SPEC_FULL.md SUPPLEMENTED FEATURES).
			LogPath: fmt.Sprintf("%s_%d", baseLog, i),
		})
	}
	return jobs, nil
}

func writeInputList(path string, chunk []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("indexer: creating input list %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, entry := range chunk {
		if _, err := w.WriteString(entry + "\n"); err != nil {
			return fmt.Errorf("indexer: writing input list %s: %w", path, err)
		}
	}
	return w.Flush()
}

// runChildren spawns one re-exec'd child process per job and waits for all
// of them, tolerating individual failures (spec §4.3 "Merge": "Any child
// failure leaves its chunk un-merged (logged); the rest of the index is
// still usable").
func runChildren(jobs []*JobDescriptor, projectRoot, compilerFlags string) {
	var g errgroup.Group
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := spawnChild(job, projectRoot, compilerFlags); err != nil {
				logging.Error("indexer: child %s failed: %v", job.ID, err)
			}
			return nil // a child's failure never aborts the sibling children
		})
	}
	_ = g.Wait()
}

// spawnChild re-execs this same binary as `<argv0> index-chunk ...`
// (spec §5 "Scheduling"; SPEC_FULL.md CONCURRENCY MAPPING).
func spawnChild(job *JobDescriptor, projectRoot, compilerFlags string) error {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	cmd := exec.CommandContext(context.Background(), exe,
		IndexChunkSubcommand,
		"--root", projectRoot,
		"--flags", compilerFlags,
		"--input-list", job.InputListPath,
		"--output-store", job.WorkerStorePath,
		"--log", job.LogPath,
	)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

// RunIndexChunk is the child-side entry point cmd/cxxd's hidden
// `index-chunk` subcommand invokes. It reads the input list, skips
// sentinel padding entries, and indexes every remaining file into its own
// private store (spec §4.3 "Per-file indexing").
func RunIndexChunk(root, inputListPath, outputStorePath, logPath string) error {
	logging.Init(logPath)

	files, err := readInputList(inputListPath)
	if err != nil {
		return err
	}

	st := store.New(outputStorePath)
	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("index-chunk: creating schema: %w", err)
	}
	defer st.Close()

	facade, err := parserfacade.New(0) // unbounded: this process indexes its chunk once and exits
	if err != nil {
		return fmt.Errorf("index-chunk: constructing parser facade: %w", err)
	}

	for _, file := range files {
		if file == Sentinel {
			continue
		}
		if err := indexFile(facade, st, root, file); err != nil {
			logging.Error("index-chunk: indexing %s: %v", file, err)
		}
	}
	return nil
}

func readInputList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index-chunk: opening input list %s: %w", path, err)
	}
	defer f.Close()

	var files []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		files = append(files, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("index-chunk: reading input list %s: %w", path, err)
	}
	return files, nil
}
