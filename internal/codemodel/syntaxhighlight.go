package codemodel

import (
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/parserfacade"
)

// SyntaxHighlightToken is one AST node the plugin callback renders
// (spec §4.4 "Syntax highlight: parse and return the translation unit
// plus an iterator/helper").
type SyntaxHighlightToken struct {
	Kind      parserfacade.Kind
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// SyntaxHighlight parses contents and walks its whole tree, collecting one
// token per supported AST node for the plugin's highlighter to consume.
func (s *Service) SyntaxHighlight(contents, original string) ([]SyntaxHighlightToken, bool) {
	tunit, err := s.facade.Parse(contents, original)
	if err != nil || tunit == nil {
		logging.Error("codemodel: syntax-highlight parse of %s failed: %v", contents, err)
		return nil, false
	}

	root := &parserfacade.Cursor{Node: tunit.Tree.RootNode(), Tunit: tunit}
	var tokens []SyntaxHighlightToken
	s.facade.Traverse(root, nil, func(cursor, parent *parserfacade.Cursor, state any) parserfacade.VisitResult {
		kind := s.facade.ASTNodeID(cursor)
		if kind.Supported() {
			start := cursor.Node.StartPosition()
			end := cursor.Node.EndPosition()
			tokens = append(tokens, SyntaxHighlightToken{
				Kind:      kind,
				Line:      int(start.Row) + 1,
				Column:    int(start.Column) + 1,
				EndLine:   int(end.Row) + 1,
				EndColumn: int(end.Column) + 1,
			})
		}
		return parserfacade.Recurse
	})
	return tokens, true
}

func (s *Service) requestSyntaxHighlight(payload []any) (bool, any) {
	if len(payload) < 2 {
		return false, nil
	}
	contents, _ := payload[0].(string)
	original, _ := payload[1].(string)

	tokens, ok := s.SyntaxHighlight(contents, original)
	return ok, tokens
}
