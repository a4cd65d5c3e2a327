// Package parserfacade is the narrow contract over the external C/C++
// parser (spec.md §4.2, §6 "Parser Facade"). The real daemon treats the
// parser as an opaque capability — a libclang binding in the original,
// here github.com/tree-sitter/go-tree-sitter with the tree-sitter-cpp
// grammar, the member of this corpus (`lci`) already wires for C/C++.
//
// Tree-sitter is a syntactic parser: it has no semantic linkage between a
// declaration and its uses the way libclang's USR does. Facade.UsrOf
// therefore derives a syntactic stand-in — the qualified identifier path
// from translation-unit root to the node, plus its kind — which is stable
// across translation units for the same spelled name and is what the
// Symbol Store actually needs as its clustering key (spec §3 "usr").
package parserfacade

import (
	"fmt"
	"os"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// Kind is the AST-node classification the Indexer Engine records
// (spec §3 "Supported AST kinds").
type Kind int

const (
	KindOther Kind = iota
	KindClass
	KindStruct
	KindEnum
	KindEnumValue
	KindUnion
	KindTypedef
	KindUsingDeclaration
	KindFunction
	KindMethod
	KindLocalVariable
	KindFunctionParameter
	KindField
	KindMacroDefinition
	KindMacroInstantiation
)

// Supported reports whether kind is in the closed set the Indexer Engine
// persists (spec §3, §4.3).
func (k Kind) Supported() bool {
	return k != KindOther
}

// Tunit is the parser's in-memory representation of a parsed source file
// (spec GLOSSARY "Translation unit").
type Tunit struct {
	Tree     *tree_sitter.Tree
	Content  []byte
	Spelling string // logical (original) filename this tunit represents
}

// Cursor is a position-and-entity handle inside a Tunit
// (spec GLOSSARY "Cursor").
type Cursor struct {
	Node       *tree_sitter.Node
	Tunit      *Tunit
	Referenced *Cursor // the declaration this cursor's node refers to, when CursorAt found one in the same tunit (spec §9(a))
}

// Diagnostic is one parser-reported problem (spec §4.2 "diagnostics_of").
type Diagnostic struct {
	Message string
	Line    int
	Column  int
}

// Include is one top-level #include directive (spec §4.2
// "top_level_includes").
type Include struct {
	Filename string
	Line     int
	Column   int
}

// VisitResult is what a traversal visitor returns to steer the walk
// (spec §4.2 "traverse").
type VisitResult int

const (
	Recurse VisitResult = iota
	Continue            // skip this node's subtree, move to next sibling
	Break
)

// Facade wraps tree-sitter-cpp behind the narrow contract the Indexer
// Engine and the Code-Model Service consume (spec §4.2).
type Facade struct {
	language *tree_sitter.Language
	cache    *TunitCache
}

// New returns a Facade with a translation-unit cache of the given
// capacity (0 means unbounded — the short-lived-process variant spec §3
// calls out for per-file indexing children).
func New(cacheCapacity int) (*Facade, error) {
	lang := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	return &Facade{
		language: lang,
		cache:    NewTunitCache(cacheCapacity),
	}, nil
}

// Parse parses contentsPath's bytes and labels the resulting Tunit with
// originalPath as its logical spelling (spec §4.2 "parse(contents_path,
// original_path)"; spec GLOSSARY "Edited / unsaved file").
func (f *Facade) Parse(contentsPath, originalPath string) (*Tunit, error) {
	content, err := os.ReadFile(contentsPath)
	if err != nil {
		return nil, fmt.Errorf("parserfacade: reading %s: %w", contentsPath, err)
	}

	if cached, ok := f.cache.Get(originalPath, content); ok {
		return cached, nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(f.language); err != nil {
		return nil, fmt.Errorf("parserfacade: set language: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, nil
	}

	tunit := &Tunit{Tree: tree, Content: content, Spelling: originalPath}
	f.cache.Put(originalPath, content, tunit)
	return tunit, nil
}

// CursorAt resolves the smallest named node enclosing (line, column),
// both 1-based (spec §4.2 "cursor_at(tunit, line, column)").
func (f *Facade) CursorAt(tunit *Tunit, line, column int) (*Cursor, bool) {
	if tunit == nil || tunit.Tree == nil {
		return nil, false
	}
	row := uint(line - 1)
	col := uint(column - 1)

	node := smallestNamedNodeAt(tunit.Tree.RootNode(), row, col)
	if node == nil {
		return nil, false
	}
	cursor := &Cursor{Node: node, Tunit: tunit}
	if ref := resolveReference(tunit.Tree.RootNode(), node, tunit.Content); ref != nil {
		cursor.Referenced = &Cursor{Node: ref, Tunit: tunit}
	}
	return cursor, true
}

func smallestNamedNodeAt(node *tree_sitter.Node, row, col uint) *tree_sitter.Node {
	if node == nil || !pointWithin(node, row, col) {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if found := smallestNamedNodeAt(child, row, col); found != nil {
			return found
		}
	}
	if node.IsNamed() {
		return node
	}
	return nil
}

func pointWithin(node *tree_sitter.Node, row, col uint) bool {
	start := node.StartPosition()
	end := node.EndPosition()
	if row < start.Row || row > end.Row {
		return false
	}
	if row == start.Row && col < start.Column {
		return false
	}
	if row == end.Row && col > end.Column {
		return false
	}
	return true
}

// DefinitionOf looks within cursor's own translation unit for the
// defining occurrence of the same qualified identity (spec §4.2
// "definition_of(cursor)"). It returns false when no such node exists in
// this tunit — the Code-Model Service then falls back to the Symbol Store
// (spec §4.4 step 3).
func (f *Facade) DefinitionOf(cursor *Cursor) (*Cursor, bool) {
	if cursor == nil {
		return nil, false
	}
	target := identityOf(cursor.Node, cursor.Tunit.Content)
	if target == "" {
		return nil, false
	}

	var found *tree_sitter.Node
	walk(cursor.Tunit.Tree.RootNode(), func(n *tree_sitter.Node) VisitResult {
		if found != nil {
			return Break
		}
		if isDefinitionNode(n) && identityOf(n, cursor.Tunit.Content) == target {
			found = n
			return Break
		}
		return Recurse
	})
	if found == nil {
		return nil, false
	}
	return &Cursor{Node: found, Tunit: cursor.Tunit}, true
}

// UsrOf returns the opaque unique-symbol identifier for cursor, deferring
// to cursor.Referenced when set — mirroring the original's
// `cursor.referenced.get_usr() if cursor.referenced else cursor.get_usr()`
// (spec §4.2 "usr_of", §9(a)).
func (f *Facade) UsrOf(cursor *Cursor) string {
	if cursor == nil {
		return ""
	}
	if cursor.Referenced != nil {
		return identityOf(cursor.Referenced.Node, cursor.Referenced.Tunit.Content)
	}
	return identityOf(cursor.Node, cursor.Tunit.Content)
}

// ASTNodeID classifies cursor's node kind (spec §4.2 "ast_node_id").
func (f *Facade) ASTNodeID(cursor *Cursor) Kind {
	if cursor == nil || cursor.Node == nil {
		return KindOther
	}
	return kindOf(cursor.Node)
}

// IsDefinition reports whether cursor is the defining occurrence of its
// entity rather than a declaration or a use (spec §3 "is_definition").
func (f *Facade) IsDefinition(cursor *Cursor) bool {
	if cursor == nil || cursor.Node == nil {
		return false
	}
	// A recognized use (type name, call callee, field) is never the
	// defining occurrence, even inside a function body.
	if _, ok := referenceKind(cursor.Node); ok {
		return false
	}
	// isDefinitionNode treats a nil node as "not a definition", so
	// enclosingDeclaration returning nil (no enclosing declaration at all)
	// needs no separate check here.
	return isDefinitionNode(enclosingDeclaration(cursor.Node))
}

// TopLevelIncludes returns every #include directive at translation-unit
// scope (spec §4.2 "top_level_includes").
func (f *Facade) TopLevelIncludes(tunit *Tunit) []Include {
	if tunit == nil || tunit.Tree == nil {
		return nil
	}
	root := tunit.Tree.RootNode()
	var out []Include
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil || child.Kind() != "preproc_include" {
			continue
		}
		pathNode := child.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		filename := strings.Trim(string(tunit.Content[pathNode.StartByte():pathNode.EndByte()]), "\"<>")
		pos := child.StartPosition()
		out = append(out, Include{
			Filename: filename,
			Line:     int(pos.Row) + 1,
			Column:   int(pos.Column) + 1,
		})
	}
	return out
}

// DiagnosticsOf returns every parse error tree-sitter recorded in tunit
// (spec §4.2 "diagnostics_of").
func (f *Facade) DiagnosticsOf(tunit *Tunit) []Diagnostic {
	if tunit == nil || tunit.Tree == nil {
		return nil
	}
	var out []Diagnostic
	walk(tunit.Tree.RootNode(), func(n *tree_sitter.Node) VisitResult {
		if n.IsError() || n.IsMissing() {
			pos := n.StartPosition()
			msg := "syntax error"
			if n.IsMissing() {
				msg = fmt.Sprintf("missing %s", n.Kind())
			}
			out = append(out, Diagnostic{Message: msg, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1})
			return Continue
		}
		return Recurse
	})
	return out
}

// Traverse runs a depth-first visit over root, honoring the visitor's
// Recurse/Continue/Break decisions (spec §4.2 "traverse"). state is
// threaded through unmodified, mirroring the original's
// `traverse(root_cursor, state, visitor)` signature.
func (f *Facade) Traverse(root *Cursor, state any, visitor func(cursor, parent *Cursor, state any) VisitResult) {
	if root == nil {
		return
	}
	f.traverse(root, nil, state, visitor)
}

func (f *Facade) traverse(cursor, parent *Cursor, state any, visitor func(cursor, parent *Cursor, state any) VisitResult) VisitResult {
	result := visitor(cursor, parent, state)
	if result != Recurse {
		return result
	}
	for i := uint(0); i < cursor.Node.ChildCount(); i++ {
		child := cursor.Node.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		childCursor := &Cursor{Node: child, Tunit: cursor.Tunit}
		if f.traverse(childCursor, cursor, state, visitor) == Break {
			return Break
		}
	}
	return Recurse
}

// walk is an internal depth-first helper used by DefinitionOf and
// DiagnosticsOf where there is no need to thread a Cursor pair through
// the visitor.
func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node) VisitResult) VisitResult {
	if node == nil {
		return Recurse
	}
	if result := visit(node); result != Recurse {
		return result
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if walk(node.Child(i), visit) == Break {
			return Break
		}
	}
	return Recurse
}
