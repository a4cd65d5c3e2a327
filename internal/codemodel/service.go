// Package codemodel implements the Code-Model Service (spec.md §4.4): a
// facade over the Parser Facade and the Indexer Engine's shared Symbol
// Store, routing requests to five leaf handlers plus the indexer itself
// by numeric sub-id.
package codemodel

import (
	"github.com/jbakamovic/cxxd/internal/indexer"
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/parserfacade"
	"github.com/jbakamovic/cxxd/internal/protocol"
)

// Location is a source position a handler resolves to (spec §4.4
// go-to-definition / go-to-include results).
type Location struct {
	Filename string
	Line     int
	Column   int
}

// Service owns the parser facade, the indexer engine, and routes incoming
// requests to the five leaf handlers (spec §4.4).
type Service struct {
	ProjectRoot   string
	CompilerFlags string

	facade  *parserfacade.Facade
	indexer *indexer.Engine
}

// New constructs a Service sharing its parser and symbol store with a
// freshly constructed Indexer Engine (spec §4.4 "constructs all handlers,
// sharing the parser and the indexer's symbol store").
func New(projectRoot, compilerFlags string, workerCount int, extensions []string, cacheCapacity int) (*Service, error) {
	idx, err := indexer.New(projectRoot, compilerFlags, workerCount, extensions, cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Service{
		ProjectRoot:   projectRoot,
		CompilerFlags: compilerFlags,
		facade:        idx.Facade(),
		indexer:       idx,
	}, nil
}

// Request routes payload to the handler named by sub, mirroring the
// original's numeric sub-id dispatch (spec §4.4 "Request routing").
// Unknown sub-ids return (false, nil).
func (s *Service) Request(sub protocol.CodeModelSubID, payload []any) (bool, any) {
	switch sub {
	case protocol.SubIndexer:
		return s.requestIndexer(payload)
	case protocol.SubSyntaxHighlight:
		return s.requestSyntaxHighlight(payload)
	case protocol.SubDiagnostics:
		return s.requestDiagnostics(payload)
	case protocol.SubTypeDeduction:
		return s.requestTypeDeduction(payload)
	case protocol.SubGoToDefinition:
		return s.requestGoToDefinition(payload)
	case protocol.SubGoToInclude:
		return s.requestGoToInclude(payload)
	default:
		logging.Warn("codemodel: unknown sub-id %d", sub)
		return false, nil
	}
}

func (s *Service) requestIndexer(payload []any) (bool, any) {
	if len(payload) == 0 {
		logging.Warn("codemodel: indexer request with empty payload")
		return false, nil
	}
	op, ok := payload[0].(protocol.IndexerOpID)
	if !ok {
		logging.Warn("codemodel: indexer request with malformed op id")
		return false, nil
	}

	args := payload[1:]
	switch op {
	case protocol.OpRunSingle:
		if len(args) < 2 {
			return false, nil
		}
		original, _ := args[0].(string)
		contents, _ := args[1].(string)
		return s.indexer.RunOnSingleFile(original, contents), nil
	case protocol.OpRunDirectory:
		return s.indexer.RunOnDirectory(), nil
	case protocol.OpDropSingle:
		if len(args) < 1 {
			return false, nil
		}
		filename, _ := args[0].(string)
		return s.indexer.DropSingleFile(filename), nil
	case protocol.OpDropAll:
		removeFromDisk := false
		if len(args) >= 1 {
			removeFromDisk, _ = args[0].(bool)
		}
		return s.indexer.DropAll(removeFromDisk), nil
	case protocol.OpFindAllRefs:
		if len(args) < 3 {
			return false, nil
		}
		file, _ := args[0].(string)
		line, _ := args[1].(int)
		column, _ := args[2].(int)
		refs, ok := s.indexer.FindAllReferences(file, line, column)
		return ok, refs
	default:
		logging.Warn("codemodel: unknown indexer op %d", op)
		return false, nil
	}
}
