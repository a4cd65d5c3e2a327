package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/parserfacade"
	"github.com/jbakamovic/cxxd/internal/store"
	"github.com/jbakamovic/cxxd/pkg/pathutil"
)

// Extensions is the closed set of source extensions file discovery accepts
// (spec §4.3 "File discovery"). Kept as a package default so the indexer
// package has no import-cycle dependency on internal/config; the Outer
// Boundary wires config.Index.Extensions through New instead.
var Extensions = []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hh", ".hpp"}

// Reference is one occurrence returned by FindAllReferences, with its
// filename re-prepended to an absolute path (spec §4.3 "Results rows
// always return absolute paths").
type Reference struct {
	Filename string
	Line     int
	Column   int
	Context  string
}

// Engine is the Indexer Engine (spec §4.3). It owns the project's Symbol
// Store and a Parser Facade, and fans directory-wide indexing out to child
// processes (spec §5 "Scheduling").
type Engine struct {
	ProjectRoot   string
	CompilerFlags string
	WorkerCount   int
	Extensions    []string

	store  *store.Store
	facade *parserfacade.Facade
}

// New constructs an Engine bound to projectRoot's `.cxxd_index.db` store.
func New(projectRoot, compilerFlags string, workerCount int, extensions []string, cacheCapacity int) (*Engine, error) {
	facade, err := parserfacade.New(cacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("indexer: constructing parser facade: %w", err)
	}
	if len(extensions) == 0 {
		extensions = Extensions
	}
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &Engine{
		ProjectRoot:   projectRoot,
		CompilerFlags: compilerFlags,
		WorkerCount:   workerCount,
		Extensions:    extensions,
		store:         store.New(storePath(projectRoot)),
		facade:        facade,
	}, nil
}

func storePath(projectRoot string) string {
	return filepath.Join(projectRoot, ".cxxd_index.db")
}

// Facade returns the engine's Parser Facade, shared with the Code-Model
// Service so both operate on the same translation-unit cache (spec §4.4:
// "constructs all handlers, sharing the parser and the indexer's symbol
// store").
func (e *Engine) Facade() *parserfacade.Facade {
	return e.facade
}

// Store returns the engine's Symbol Store, shared with the Code-Model
// Service's go-to-definition fallback (spec §4.4 step 3).
func (e *Engine) Store() *store.Store {
	return e.store
}

// RunOnSingleFile reindexes one file in place (spec §4.3
// "run-on-single-file(original, contents)"). Edited-unsaved buffers
// (original != contents) are never indexed.
func (e *Engine) RunOnSingleFile(original, contents string) bool {
	if original != contents {
		return false
	}
	if err := e.store.Open(); err != nil {
		logging.Error("indexer: opening store for single-file index: %v", err)
		return false
	}
	if err := e.store.CreateSchema(); err != nil {
		logging.Error("indexer: creating schema: %v", err)
		return false
	}

	rel := pathutil.Basename(e.ProjectRoot, original)
	if err := e.store.DeleteByFile(rel); err != nil {
		logging.Error("indexer: clearing prior rows for %s: %v", rel, err)
		return false
	}

	if err := indexFile(e.facade, e.store, e.ProjectRoot, original); err != nil {
		logging.Error("indexer: indexing %s: %v", original, err)
		return false
	}
	return true
}

// RunOnDirectory performs the fan-out / merge directory index (spec §4.3
// "run-on-directory()"). If the store file already exists on disk it is
// merely opened — no re-index is performed.
func (e *Engine) RunOnDirectory() bool {
	if _, err := os.Stat(e.store.Path()); err == nil {
		if err := e.store.Open(); err != nil {
			logging.Error("indexer: opening existing store: %v", err)
			return false
		}
		return true
	}

	if err := e.store.CreateSchema(); err != nil {
		logging.Error("indexer: creating schema: %v", err)
		return false
	}

	files, err := DiscoverSources(e.ProjectRoot, e.Extensions)
	if err != nil {
		logging.Error("indexer: discovering sources: %v", err)
		return false
	}
	if len(files) == 0 {
		return true
	}

	chunks := Partition(files, e.WorkerCount)

	tmpDir, err := os.MkdirTemp("", "cxxd-index-*")
	if err != nil {
		logging.Error("indexer: creating temp dir: %v", err)
		return false
	}
	defer os.RemoveAll(tmpDir)

	jobs, err := BuildJobs(chunks, tmpDir)
	if err != nil {
		logging.Error("indexer: building job descriptors: %v", err)
		return false
	}

	start := time.Now()
	runChildren(jobs, e.ProjectRoot, e.CompilerFlags)
	elapsed := time.Since(start)
	logging.Info("indexer: fan-out over %d file(s) in %d chunk(s) took %s", len(files), len(jobs), elapsed)

	childStores := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if _, err := os.Stat(j.WorkerStorePath); err == nil {
			childStores = append(childStores, j.WorkerStorePath)
		}
	}
	if err := e.store.BulkMerge(childStores); err != nil {
		logging.Error("indexer: merging child stores: %v", err)
		return false
	}
	return true
}

// DropSingleFile deletes every row for filename's project-relative
// basename. Always reports success (spec §4.3 "drop-single-file",
// §9 SUPPLEMENTED FEATURES).
func (e *Engine) DropSingleFile(filename string) bool {
	if err := e.store.Open(); err != nil {
		logging.Error("indexer: opening store for drop-single-file: %v", err)
		return true
	}
	rel := pathutil.Basename(e.ProjectRoot, filename)
	if err := e.store.DeleteByFile(rel); err != nil {
		logging.Error("indexer: drop-single-file %s: %v", rel, err)
	}
	return true
}

// DropAll deletes every row, optionally removing the store file from disk
// (spec §4.3 "drop-all(remove_from_disk)").
func (e *Engine) DropAll(removeFromDisk bool) bool {
	if err := e.store.Open(); err != nil {
		logging.Error("indexer: opening store for drop-all: %v", err)
		return true
	}
	if err := e.store.DeleteAll(); err != nil {
		logging.Error("indexer: drop-all: %v", err)
	}
	if removeFromDisk {
		path := e.store.Path()
		if err := e.store.Close(); err != nil {
			logging.Error("indexer: closing store before unlink: %v", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Error("indexer: removing store file %s: %v", path, err)
		}
	}
	return true
}

// FindAllReferences resolves the cursor at (line, column) in file and
// returns every store occurrence of its USR, provided its AST kind is in
// the supported set (spec §4.3 "find-all-references").
func (e *Engine) FindAllReferences(file string, line, column int) ([]Reference, bool) {
	tunit, err := e.facade.Parse(file, file)
	if err != nil || tunit == nil {
		logging.Error("indexer: find-all-references parse of %s failed: %v", file, err)
		return nil, false
	}

	cursor, ok := e.facade.CursorAt(tunit, line, column)
	if !ok {
		return nil, true
	}

	kind := e.facade.ASTNodeID(cursor)
	if !kind.Supported() {
		return nil, true
	}

	usr := e.facade.UsrOf(cursor)
	if usr == "" {
		return nil, true
	}

	if err := e.store.Open(); err != nil {
		logging.Error("indexer: opening store for find-all-references: %v", err)
		return nil, false
	}
	rows, err := e.store.QueryByUSR(usr)
	if err != nil {
		logging.Error("indexer: querying usr %s: %v", usr, err)
		return nil, false
	}

	refs := make([]Reference, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, Reference{
			Filename: pathutil.ToAbsolute(row.Filename, e.ProjectRoot),
			Line:     row.Line,
			Column:   row.Column,
			Context:  row.Context,
		})
	}
	return refs, true
}

// indexFile parses absPath and records every supported AST node into st,
// relative to root (spec §4.3 "Per-file indexing"). It is shared by
// RunOnSingleFile and by each fan-out child.
func indexFile(facade *parserfacade.Facade, st *store.Store, root, absPath string) error {
	tunit, err := facade.Parse(absPath, absPath)
	if err != nil {
		return err
	}
	if tunit == nil {
		return fmt.Errorf("parse failed for %s", absPath)
	}

	relPath := pathutil.Basename(root, absPath)
	rootCursor := &parserfacade.Cursor{Node: tunit.Tree.RootNode(), Tunit: tunit}

	facade.Traverse(rootCursor, nil, func(cursor, parent *parserfacade.Cursor, state any) parserfacade.VisitResult {
		// tree-sitter, unlike the libclang binding the original wraps, never
		// expands #include directives into the parse tree, so every node it
		// produces is physically in the file being parsed — the "node came
		// in through an include" branch spec §4.3 describes can't arise here
		// and is folded into the unconditional Recurse below.
		kind := facade.ASTNodeID(cursor)
		if !kind.Supported() {
			return parserfacade.Recurse
		}

		pos := cursor.Node.StartPosition()
		sym := storeSymbolFromCursor(facade, cursor, relPath, pos, kind)
		if err := st.Insert(sym); err != nil {
			logging.Error("indexer: inserting symbol %s: %v", sym.USR, err)
		}
		return parserfacade.Recurse
	})

	return st.Flush()
}

func storeSymbolFromCursor(facade *parserfacade.Facade, cursor *parserfacade.Cursor, relPath string, pos tree_sitter.Point, kind parserfacade.Kind) store.Symbol {
	return store.Symbol{
		Filename:     relPath,
		Line:         int(pos.Row) + 1,
		Column:       int(pos.Column) + 1,
		USR:          facade.UsrOf(cursor),
		Context:      lineTextAt(cursor.Tunit.Content, pos.Row),
		Kind:         int(kind),
		IsDefinition: facade.IsDefinition(cursor),
	}
}

func lineTextAt(content []byte, row uint) string {
	start := 0
	current := uint(0)
	for i, b := range content {
		if current == row {
			start = i
			break
		}
		if b == '\n' {
			current++
		}
	}
	end := start
	for end < len(content) && content[end] != '\n' {
		end++
	}
	return string(content[start:end])
}
