package codemodel

import (
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/parserfacade"
)

// Diagnostics parses contents and returns every diagnostic the parser
// recorded (spec §4.4 "Diagnostics: parse and return ... diagnostics that
// the plugin callback uses to consume ... lazily" — this port returns the
// already-materialized slice, since parserfacade.DiagnosticsOf has no
// per-call cost worth deferring).
func (s *Service) Diagnostics(contents, original string) ([]parserfacade.Diagnostic, bool) {
	tunit, err := s.facade.Parse(contents, original)
	if err != nil || tunit == nil {
		logging.Error("codemodel: diagnostics parse of %s failed: %v", contents, err)
		return nil, false
	}
	return s.facade.DiagnosticsOf(tunit), true
}

func (s *Service) requestDiagnostics(payload []any) (bool, any) {
	if len(payload) < 2 {
		return false, nil
	}
	contents, _ := payload[0].(string)
	original, _ := payload[1].(string)

	diags, ok := s.Diagnostics(contents, original)
	return ok, diags
}
