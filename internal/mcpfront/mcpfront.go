// Package mcpfront exposes the Outer Boundary's operations as MCP tools,
// following internal/mcp/server.go's registration pattern from the
// teacher: one mcp.Tool + jsonschema.Schema pair per operation, routed to
// a handler of signature func(context.Context, *mcp.CallToolRequest)
// (*mcp.CallToolResult, error).
//
// Unlike the dispatcher-routed Outer API (spec §6), an MCP tool call
// needs a result in the same round trip, so Server holds its services
// directly and calls their synchronous methods rather than enqueuing onto
// the Server Dispatcher's channel.
package mcpfront

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jbakamovic/cxxd/internal/codemodel"
	"github.com/jbakamovic/cxxd/internal/config"
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/protocol"
	"github.com/jbakamovic/cxxd/internal/tools"
)

// Server wraps an mcp.Server and the service instances its tools call
// into directly (spec §4.4, §4.5; SPEC_FULL.md DOMAIN STACK "MCP").
type Server struct {
	server *mcp.Server

	codeModel *codemodel.Service
	format    *tools.Format
	lint      *tools.Lint
	build     *tools.Build
}

// New constructs a Server from cfg, starting the three external-tool
// services synchronously so their first Request call is already usable
// (original daemon's services start on STARTUP before any REQUEST).
func New(cfg *config.Config) (*Server, error) {
	codeModelSvc, err := codemodel.New(cfg.Project.Root, cfg.Project.CompilerFlags, cfg.Index.WorkerCount, cfg.Index.Extensions, cfg.Index.CacheCapacity)
	if err != nil {
		return nil, err
	}

	format := tools.NewFormat(cfg.Tools.FormatBinary)
	format.Startup(cfg.Tools.FormatConfig)

	lint := tools.NewLint(cfg.Tools.LintBinary)
	lint.Startup(cfg.Tools.LintDatabase)

	build := tools.NewBuild()
	build.Startup(cfg.Tools.BuildDir, cfg.Tools.BuildTag)

	s := &Server{
		server:    mcp.NewServer(&mcp.Implementation{Name: "cxxd-mcp-server", Version: "0.1.0"}, nil),
		codeModel: codeModelSvc,
		format:    format,
		lint:      lint,
		build:     build,
	}
	s.registerTools()
	return s, nil
}

// Run blocks serving MCP requests over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "go_to_definition",
		Description: "Resolve the symbol at a source position to its defining location.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"contents": {Type: "string", Description: "Path to the buffer's on-disk contents (may be a scratch copy of an unsaved edit)"},
				"original": {Type: "string", Description: "The buffer's logical filename"},
				"line":     {Type: "integer", Description: "1-based line"},
				"column":   {Type: "integer", Description: "1-based column"},
			},
			Required: []string{"contents", "original", "line", "column"},
		},
	}, s.handleGoToDefinition)

	s.server.AddTool(&mcp.Tool{
		Name:        "go_to_include",
		Description: "Resolve the #include directive on a source line to the file it names.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"contents": {Type: "string", Description: "Path to the buffer's on-disk contents"},
				"original": {Type: "string", Description: "The buffer's logical filename"},
				"line":     {Type: "integer", Description: "1-based line"},
			},
			Required: []string{"contents", "original", "line"},
		},
	}, s.handleGoToInclude)

	s.server.AddTool(&mcp.Tool{
		Name:        "diagnostics",
		Description: "Parse a translation unit and return its compiler diagnostics.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"contents": {Type: "string", Description: "Path to the buffer's on-disk contents"},
				"original": {Type: "string", Description: "The buffer's logical filename"},
			},
			Required: []string{"contents", "original"},
		},
	}, s.handleDiagnostics)

	s.server.AddTool(&mcp.Tool{
		Name:        "syntax_highlight",
		Description: "Parse a translation unit and return one token per AST node of a supported kind.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"contents": {Type: "string", Description: "Path to the buffer's on-disk contents"},
				"original": {Type: "string", Description: "The buffer's logical filename"},
			},
			Required: []string{"contents", "original"},
		},
	}, s.handleSyntaxHighlight)

	s.server.AddTool(&mcp.Tool{
		Name:        "type_deduction",
		Description: "Resolve the AST node at a source position and report its kind and spelled text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"contents": {Type: "string", Description: "Path to the buffer's on-disk contents"},
				"original": {Type: "string", Description: "The buffer's logical filename"},
				"line":     {Type: "integer", Description: "1-based line"},
				"column":   {Type: "integer", Description: "1-based column"},
			},
			Required: []string{"contents", "original", "line", "column"},
		},
	}, s.handleTypeDeduction)

	s.server.AddTool(&mcp.Tool{
		Name:        "index_directory",
		Description: "Build the symbol store by walking the project root; an existing store file is opened as is, not rebuilt.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleIndexDirectory)

	s.server.AddTool(&mcp.Tool{
		Name:        "index_file",
		Description: "Re-index a single file, replacing its previously stored symbols.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"contents": {Type: "string", Description: "Path to the buffer's on-disk contents"},
				"original": {Type: "string", Description: "The buffer's logical filename"},
			},
			Required: []string{"contents", "original"},
		},
	}, s.handleIndexFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "drop_file",
		Description: "Remove one file's symbols from the store.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"filename": {Type: "string"}},
			Required:   []string{"filename"},
		},
	}, s.handleDropFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "drop_all",
		Description: "Drop the entire symbol store, optionally deleting it from disk.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"remove_from_disk": {Type: "boolean"}},
		},
	}, s.handleDropAll)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_all_references",
		Description: "Find every stored reference to the symbol at a source position.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filename": {Type: "string"},
				"line":     {Type: "integer", Description: "1-based line"},
				"column":   {Type: "integer", Description: "1-based column"},
			},
			Required: []string{"filename", "line", "column"},
		},
	}, s.handleFindAllReferences)

	s.server.AddTool(&mcp.Tool{
		Name:        "format",
		Description: "Run the configured code formatter over a file in place.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"filename": {Type: "string"}},
			Required:   []string{"filename"},
		},
	}, s.handleFormat)

	s.server.AddTool(&mcp.Tool{
		Name:        "lint",
		Description: "Run the configured static analyzer over a file, optionally applying fixes.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filename":    {Type: "string"},
				"apply_fixes": {Type: "boolean"},
			},
			Required: []string{"filename"},
		},
	}, s.handleLint)

	s.server.AddTool(&mcp.Tool{
		Name:        "build",
		Description: "Run a build command in the configured build directory.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"cmd": {Type: "string"}},
			Required:   []string{"cmd"},
		},
	}, s.handleBuild)
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("mcpfront: marshal response: %w", err)
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(content)}}}, nil
}

func (s *Server) handleGoToDefinition(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Contents string `json:"contents"`
		Original string `json:"original"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	loc, ok := s.codeModel.GoToDefinition(p.Contents, p.Original, p.Line, p.Column)
	return jsonResult(map[string]any{"success": ok, "location": loc})
}

func (s *Server) handleGoToInclude(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Contents string `json:"contents"`
		Original string `json:"original"`
		Line     int    `json:"line"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	loc, ok := s.codeModel.GoToInclude(p.Contents, p.Original, p.Line)
	return jsonResult(map[string]any{"success": ok, "location": loc})
}

func (s *Server) handleDiagnostics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Contents string `json:"contents"`
		Original string `json:"original"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	diags, ok := s.codeModel.Diagnostics(p.Contents, p.Original)
	return jsonResult(map[string]any{"success": ok, "diagnostics": diags})
}

func (s *Server) handleSyntaxHighlight(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Contents string `json:"contents"`
		Original string `json:"original"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	tokens, ok := s.codeModel.SyntaxHighlight(p.Contents, p.Original)
	return jsonResult(map[string]any{"success": ok, "tokens": tokens})
}

func (s *Server) handleTypeDeduction(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Contents string `json:"contents"`
		Original string `json:"original"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	result, ok := s.codeModel.TypeDeduction(p.Contents, p.Original, p.Line, p.Column)
	return jsonResult(map[string]any{"success": ok, "result": result})
}

func (s *Server) handleIndexDirectory(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, _ := s.codeModel.Request(protocol.SubIndexer, []any{protocol.OpRunDirectory})
	return jsonResult(map[string]any{"success": ok})
}

func (s *Server) handleIndexFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Contents string `json:"contents"`
		Original string `json:"original"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	ok, _ := s.codeModel.Request(protocol.SubIndexer, []any{protocol.OpRunSingle, p.Original, p.Contents})
	return jsonResult(map[string]any{"success": ok})
}

func (s *Server) handleDropFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	ok, _ := s.codeModel.Request(protocol.SubIndexer, []any{protocol.OpDropSingle, p.Filename})
	return jsonResult(map[string]any{"success": ok})
}

func (s *Server) handleDropAll(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		RemoveFromDisk bool `json:"remove_from_disk"`
	}
	_ = json.Unmarshal(req.Params.Arguments, &p)
	ok, _ := s.codeModel.Request(protocol.SubIndexer, []any{protocol.OpDropAll, p.RemoveFromDisk})
	return jsonResult(map[string]any{"success": ok})
}

func (s *Server) handleFindAllReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Filename string `json:"filename"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	ok, refs := s.codeModel.Request(protocol.SubIndexer, []any{protocol.OpFindAllRefs, p.Filename, p.Line, p.Column})
	return jsonResult(map[string]any{"success": ok, "references": refs})
}

func (s *Server) handleFormat(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	ok, _ := s.format.Request(p.Filename)
	if !ok {
		logging.Warn("mcpfront: format of %s failed", p.Filename)
	}
	return jsonResult(map[string]any{"success": ok})
}

func (s *Server) handleLint(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Filename   string `json:"filename"`
		ApplyFixes bool   `json:"apply_fixes"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	ok, outputFile := s.lint.Request(p.Filename, p.ApplyFixes)
	return jsonResult(map[string]any{"success": ok, "output_file": outputFile})
}

func (s *Server) handleBuild(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return jsonResult(map[string]any{"success": false, "error": err.Error()})
	}
	ok, outputFile, elapsed := s.build.Request(p.Cmd)
	return jsonResult(map[string]any{"success": ok, "output_file": outputFile, "elapsed_seconds": elapsed})
}
