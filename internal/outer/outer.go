// Package outer implements the Outer Boundary (spec.md §4.8, §6): the only
// surface external callers use. It wires up logging, constructs the four
// registered services from a resolved config.Config, starts the Server
// Dispatcher, and exposes the thin convenience wrappers spec §6 lists for
// every code-model sub-request and external-tool service.
package outer

import (
	"github.com/jbakamovic/cxxd/internal/codemodel"
	"github.com/jbakamovic/cxxd/internal/config"
	"github.com/jbakamovic/cxxd/internal/dispatcher"
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/protocol"
	"github.com/jbakamovic/cxxd/internal/tools"
	"github.com/jbakamovic/cxxd/internal/worker"
)

// Handle is what start_server returns: the dispatcher's input queue,
// wrapped so callers only ever see the Outer API (spec §6 "start_server
// ... returns its input queue").
type Handle struct {
	Dispatcher *dispatcher.Dispatcher
	CodeModel  *codemodel.Service
}

// StartServer configures logging, constructs every registered service
// from cfg, and starts the dispatcher (spec §4.8).
func StartServer(cfg *config.Config) (*Handle, error) {
	logging.Init(cfg.Log.Path)

	codeModelSvc, err := codemodel.New(cfg.Project.Root, cfg.Project.CompilerFlags, cfg.Index.WorkerCount, cfg.Index.Extensions, cfg.Index.CacheCapacity)
	if err != nil {
		return nil, err
	}

	d := dispatcher.New(func(success bool, payload []any, result any) {
		logging.Info("outer: request completed, success=%v", success)
	})
	d.Register(protocol.ServiceCodeModel, func() worker.Service {
		return &dispatcher.CodeModelAdapter{Service: codeModelSvc}
	})
	d.Register(protocol.ServiceFormat, func() worker.Service {
		return &dispatcher.FormatAdapter{Service: tools.NewFormat(cfg.Tools.FormatBinary)}
	})
	d.Register(protocol.ServiceLint, func() worker.Service {
		return &dispatcher.LintAdapter{Service: tools.NewLint(cfg.Tools.LintBinary)}
	})
	d.Register(protocol.ServiceBuild, func() worker.Service {
		return &dispatcher.BuildAdapter{Service: tools.NewBuild()}
	})
	d.Start()

	return &Handle{Dispatcher: d, CodeModel: codeModelSvc}, nil
}

// StopServer enqueues SHUTDOWN_AND_EXIT (spec §6 "stop_server(handle,
// *payload) enqueues (0xFF, 0, [payload...])").
func StopServer(h *Handle, payload ...any) {
	h.Dispatcher.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownAndExit, Payload: payload})
}

// StartAll fans START_ALL out to every registered service.
func StartAll(h *Handle, payload ...any) {
	h.Dispatcher.Enqueue(protocol.DispatchMessage{Action: protocol.ActionStartAll, Payload: payload})
}

// StopAll fans SHUTDOWN_ALL out to every registered service.
func StopAll(h *Handle, payload ...any) {
	h.Dispatcher.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownAll, Payload: payload})
}

// StartService starts one named service.
func StartService(h *Handle, id protocol.ServiceID, payload ...any) {
	h.Dispatcher.Enqueue(protocol.DispatchMessage{Action: protocol.ActionStartOne, Service: id, Payload: payload})
}

// StopService stops one named service.
func StopService(h *Handle, id protocol.ServiceID, payload ...any) {
	h.Dispatcher.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownOne, Service: id, Payload: payload})
}

// RequestService sends a REQUEST to one named service.
func RequestService(h *Handle, id protocol.ServiceID, payload ...any) {
	h.Dispatcher.Enqueue(protocol.DispatchMessage{Action: protocol.ActionSendOne, Service: id, Payload: payload})
}

func codeModelRequest(h *Handle, sub protocol.CodeModelSubID, args ...any) {
	payload := append([]any{sub}, args...)
	RequestService(h, protocol.ServiceCodeModel, payload...)
}

// RunOnSingleFile curries the indexer's run-on-single-file op onto the
// code-model service (spec §6 "Thin convenience wrappers exist for each
// code-model sub-request").
func RunOnSingleFile(h *Handle, original, contents string) {
	codeModelRequest(h, protocol.SubIndexer, protocol.OpRunSingle, original, contents)
}

// RunOnDirectory curries the indexer's run-on-directory op.
func RunOnDirectory(h *Handle) {
	codeModelRequest(h, protocol.SubIndexer, protocol.OpRunDirectory)
}

// DropSingleFile curries the indexer's drop-single-file op.
func DropSingleFile(h *Handle, filename string) {
	codeModelRequest(h, protocol.SubIndexer, protocol.OpDropSingle, filename)
}

// DropAll curries the indexer's drop-all op.
func DropAll(h *Handle, removeFromDisk bool) {
	codeModelRequest(h, protocol.SubIndexer, protocol.OpDropAll, removeFromDisk)
}

// FindAllReferences curries the indexer's find-all-references op.
func FindAllReferences(h *Handle, file string, line, column int) {
	codeModelRequest(h, protocol.SubIndexer, protocol.OpFindAllRefs, file, line, column)
}

// SyntaxHighlight curries the code-model syntax-highlight sub-request.
func SyntaxHighlight(h *Handle, contents, original string) {
	codeModelRequest(h, protocol.SubSyntaxHighlight, contents, original)
}

// Diagnostics curries the code-model diagnostics sub-request.
func Diagnostics(h *Handle, contents, original string) {
	codeModelRequest(h, protocol.SubDiagnostics, contents, original)
}

// TypeDeduction curries the code-model type-deduction sub-request.
func TypeDeduction(h *Handle, contents, original string, line, column int) {
	codeModelRequest(h, protocol.SubTypeDeduction, contents, original, line, column)
}

// GoToDefinition curries the code-model go-to-definition sub-request.
func GoToDefinition(h *Handle, contents, original string, line, column int) {
	codeModelRequest(h, protocol.SubGoToDefinition, contents, original, line, column)
}

// GoToInclude curries the code-model go-to-include sub-request.
func GoToInclude(h *Handle, contents, original string, line int) {
	codeModelRequest(h, protocol.SubGoToInclude, contents, original, line)
}

// Format curries a request to the Format service.
func Format(h *Handle, filename string) {
	RequestService(h, protocol.ServiceFormat, filename)
}

// Lint curries a request to the Lint service.
func Lint(h *Handle, filename string, applyFixes bool) {
	RequestService(h, protocol.ServiceLint, filename, applyFixes)
}

// Build curries a request to the Build service.
func Build(h *Handle, cmd string) {
	RequestService(h, protocol.ServiceBuild, cmd)
}
