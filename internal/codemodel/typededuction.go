package codemodel

import (
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/parserfacade"
)

// TypeDeductionResult is what the plugin callback receives for a
// type-deduction request — the resolved node's kind and its verbatim
// source text (spec §4.4 "Type deduction: parse and return the
// translation unit plus an iterator/helper").
type TypeDeductionResult struct {
	Kind parserfacade.Kind
	Text string
}

// TypeDeduction resolves the cursor at (line, column) and reports its AST
// kind and spelled text.
func (s *Service) TypeDeduction(contents, original string, line, column int) (*TypeDeductionResult, bool) {
	tunit, err := s.facade.Parse(contents, original)
	if err != nil || tunit == nil {
		logging.Error("codemodel: type-deduction parse of %s failed: %v", contents, err)
		return nil, false
	}

	cursor, ok := s.facade.CursorAt(tunit, line, column)
	if !ok {
		return nil, false
	}

	return &TypeDeductionResult{
		Kind: s.facade.ASTNodeID(cursor),
		Text: string(tunit.Content[cursor.Node.StartByte():cursor.Node.EndByte()]),
	}, true
}

func (s *Service) requestTypeDeduction(payload []any) (bool, any) {
	if len(payload) < 4 {
		return false, nil
	}
	contents, _ := payload[0].(string)
	original, _ := payload[1].(string)
	line, _ := payload[2].(int)
	column, _ := payload[3].(int)

	result, ok := s.TypeDeduction(contents, original, line, column)
	return ok, result
}
