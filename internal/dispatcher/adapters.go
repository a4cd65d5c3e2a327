package dispatcher

import (
	"github.com/jbakamovic/cxxd/internal/codemodel"
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/protocol"
	"github.com/jbakamovic/cxxd/internal/tools"
)

// CodeModelAdapter wraps a codemodel.Service's sub-id routed Request
// behind the plain payload-only worker.Service contract: the first
// payload element selects the sub-handler (spec §4.4 "Request routing").
type CodeModelAdapter struct {
	Service *codemodel.Service
}

func (a *CodeModelAdapter) Startup(payload []any) {}
func (a *CodeModelAdapter) Shutdown(payload []any) {}

func (a *CodeModelAdapter) Request(payload []any) (bool, any) {
	if len(payload) == 0 {
		logging.Warn("codemodel adapter: empty payload")
		return false, nil
	}
	sub, ok := payload[0].(protocol.CodeModelSubID)
	if !ok {
		logging.Warn("codemodel adapter: malformed sub-id")
		return false, nil
	}
	return a.Service.Request(sub, payload[1:])
}

// FormatAdapter wraps tools.Format behind worker.Service.
type FormatAdapter struct {
	Service *tools.Format
}

func (a *FormatAdapter) Startup(payload []any) {
	if len(payload) < 1 {
		return
	}
	configPath, _ := payload[0].(string)
	a.Service.Startup(configPath)
}

func (a *FormatAdapter) Shutdown(payload []any) {
	a.Service.Shutdown()
}

func (a *FormatAdapter) Request(payload []any) (bool, any) {
	if len(payload) < 1 {
		return false, nil
	}
	filename, _ := payload[0].(string)
	return a.Service.Request(filename)
}

// LintAdapter wraps tools.Lint behind worker.Service.
type LintAdapter struct {
	Service *tools.Lint
}

func (a *LintAdapter) Startup(payload []any) {
	if len(payload) < 1 {
		return
	}
	db, _ := payload[0].(string)
	a.Service.Startup(db)
}

func (a *LintAdapter) Shutdown(payload []any) {
	a.Service.Shutdown()
}

func (a *LintAdapter) Request(payload []any) (bool, any) {
	if len(payload) < 2 {
		return false, nil
	}
	filename, _ := payload[0].(string)
	applyFixes, _ := payload[1].(bool)
	ok, out := a.Service.Request(filename, applyFixes)
	return ok, out
}

// BuildAdapter wraps tools.Build behind worker.Service.
type BuildAdapter struct {
	Service *tools.Build
}

func (a *BuildAdapter) Startup(payload []any) {
	if len(payload) < 2 {
		return
	}
	dir, _ := payload[0].(string)
	tag, _ := payload[1].(string)
	a.Service.Startup(dir, tag)
}

func (a *BuildAdapter) Shutdown(payload []any) {
	a.Service.Shutdown()
}

func (a *BuildAdapter) Request(payload []any) (bool, any) {
	if len(payload) < 1 {
		return false, nil
	}
	cmd, _ := payload[0].(string)
	ok, out, elapsed := a.Service.Request(cmd)
	return ok, [2]any{out, elapsed}
}
