package codemodel

import "github.com/jbakamovic/cxxd/internal/logging"

// GoToInclude returns the top-level #include directive whose source line
// equals the requested line (spec §4.4 "Go-to-include").
func (s *Service) GoToInclude(contents, original string, line int) (*Location, bool) {
	tunit, err := s.facade.Parse(contents, original)
	if err != nil || tunit == nil {
		logging.Error("codemodel: go-to-include parse of %s failed: %v", contents, err)
		return nil, false
	}

	for _, inc := range s.facade.TopLevelIncludes(tunit) {
		if inc.Line == line {
			return &Location{Filename: inc.Filename, Line: 1, Column: 1}, true
		}
	}
	return nil, false
}

func (s *Service) requestGoToInclude(payload []any) (bool, any) {
	if len(payload) < 3 {
		return false, nil
	}
	contents, _ := payload[0].(string)
	original, _ := payload[1].(string)
	line, _ := payload[2].(int)

	loc, ok := s.GoToInclude(contents, original, line)
	return ok, loc
}
