package codemodel

import (
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/pkg/pathutil"
)

// GoToDefinition implements spec §4.4's five-step policy: ask the parser
// first, fall back to the symbol store, then rewrite the result back onto
// an edited buffer's logical filename.
func (s *Service) GoToDefinition(contents, original string, line, column int) (*Location, bool) {
	tunit, err := s.facade.Parse(contents, original)
	if err != nil || tunit == nil {
		logging.Error("codemodel: go-to-definition parse of %s failed: %v", contents, err)
		return nil, false
	}

	cursor, ok := s.facade.CursorAt(tunit, line, column)
	if !ok {
		return nil, false
	}

	if def, ok := s.facade.DefinitionOf(cursor); ok {
		pos := def.Node.StartPosition()
		return &Location{Filename: original, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}, true
	}

	usr := s.facade.UsrOf(cursor)
	if usr == "" {
		return nil, false
	}
	rows, err := s.indexer.Store().QueryDefinition(usr)
	if err != nil {
		logging.Error("codemodel: go-to-definition store lookup for %s failed: %v", usr, err)
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}

	row := rows[0]
	loc := &Location{
		Filename: pathutil.ToAbsolute(row.Filename, s.ProjectRoot),
		Line:     row.Line,
		Column:   row.Column,
	}

	// If the resolved location is the edited buffer itself and the buffer
	// is unsaved, report the logical (original) filename instead, so
	// navigation lands on a name the editor can actually open
	// (spec §4.4 step 4; transcribed from go_to_definition.py's final if).
	if loc.Filename == contents && contents != original {
		loc.Filename = original
	}

	return loc, true
}

func (s *Service) requestGoToDefinition(payload []any) (bool, any) {
	if len(payload) < 4 {
		return false, nil
	}
	contents, _ := payload[0].(string)
	original, _ := payload[1].(string)
	line, _ := payload[2].(int)
	column, _ := payload[3].(int)

	loc, ok := s.GoToDefinition(contents, original, line, column)
	return ok, loc
}
