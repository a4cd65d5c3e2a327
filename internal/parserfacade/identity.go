package parserfacade

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// kindOf maps a tree-sitter-cpp grammar node kind onto the closed set of
// AST kinds the Indexer Engine persists (spec §3 "Supported AST kinds").
// Everything else — statements, expressions, punctuation — classifies as
// KindOther and is never stored.
func kindOf(n *tree_sitter.Node) Kind {
	switch n.Kind() {
	case "class_specifier":
		return KindClass
	case "struct_specifier":
		return KindStruct
	case "enum_specifier":
		return KindEnum
	case "enumerator":
		return KindEnumValue
	case "union_specifier":
		return KindUnion
	case "type_definition", "alias_declaration":
		return KindTypedef
	case "using_declaration":
		return KindUsingDeclaration
	case "function_definition":
		return KindFunction
	case "field_declaration":
		if hasFunctionDeclarator(n) {
			return KindMethod
		}
		return KindField
	case "parameter_declaration":
		return KindFunctionParameter
	case "declaration":
		return KindLocalVariable
	case "preproc_def", "preproc_function_def":
		return KindMacroDefinition
	case "identifier", "field_identifier", "type_identifier":
		// A bare identifier is either the name token of its own enclosing
		// declaration, or a use of some other, separately-declared entity
		// (spec §9(a) reference resolution). referenceKind recognizes the
		// syntactic shapes tree-sitter can classify unambiguously (a type
		// name, a call callee); everything else falls back to whatever
		// declaration enclosingDeclaration finds.
		if kind, ok := referenceKind(n); ok {
			return kind
		}
		decl := enclosingDeclaration(n)
		if decl == nil {
			return KindOther
		}
		return kindOf(decl)
	default:
		return KindOther
	}
}

func hasFunctionDeclarator(n *tree_sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.Child(i).Kind() == "function_declarator" {
			return true
		}
	}
	return false
}

// enclosingDeclaration returns the nearest declaration-kind node at or
// above n — n itself when n is already one (so identityOf/DefinitionOf
// can call this directly on a declaration node and get that node back),
// or nil when no declaration encloses n at all, which only happens when n
// is a bare identifier with no surrounding structure — an error-tolerant
// parse of an edited, not-yet-complete buffer (spec §1 "no panics on
// valid input"). identifier/field_identifier/type_identifier are never
// matched by the switch below, so the nil case is the only way a leaf
// node's climb can terminate; it never returns the leaf itself, which is
// what let kindOf recurse on the same node forever before this fix.
func enclosingDeclaration(n *tree_sitter.Node) *tree_sitter.Node {
	for p := n; p != nil; p = p.Parent() {
		switch p.Kind() {
		case "function_definition", "class_specifier", "struct_specifier",
			"enum_specifier", "enumerator", "union_specifier", "type_definition",
			"alias_declaration", "using_declaration", "field_declaration",
			"parameter_declaration", "declaration", "preproc_def", "preproc_function_def":
			return p
		}
	}
	return nil
}

// isDefinitionNode reports whether n is the defining occurrence of its
// entity rather than a forward declaration or reference (spec §3
// "is_definition"; spec §4.2 "definition_of").
func isDefinitionNode(n *tree_sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "function_definition":
		return true
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		return n.ChildByFieldName("body") != nil
	default:
		return false
	}
}

// referenceKind classifies n as a *use* of a separately-declared entity —
// one of the syntactic shapes tree-sitter lets us tell apart without
// semantic resolution — rather than the name token of its own immediately
// enclosing declaration. ok is false when n is a declaration's own name
// (identityOf's qualifier-aware declaration path applies instead) or when
// the use doesn't match a recognized shape (e.g. a plain variable read,
// which this syntactic scheme cannot distinguish from the function or
// block that merely contains it — a pre-existing, narrower limitation
// than the one this fix addresses).
func referenceKind(n *tree_sitter.Node) (Kind, bool) {
	if isDeclarationNameSite(n) {
		return KindOther, false
	}
	switch n.Kind() {
	case "type_identifier":
		// A bare type reference could name a class, struct, enum, union
		// or typedef; without semantic resolution we can't tell which, so
		// every type-like declaration shares one identity bucket (kindTag
		// collapses them all to "type") and KindClass stands in as the
		// representative Kind value.
		return KindClass, true
	case "identifier":
		if isCallee(n) {
			return KindFunction, true
		}
	case "field_identifier":
		if isCallee(n) {
			return KindMethod, true
		}
		return KindField, true
	}
	return KindOther, false
}

// isDeclarationNameSite reports whether n is the spelled-name leaf of its
// own nearest enclosing declaration, as opposed to some other identifier
// occurring inside that declaration or a sibling expression.
func isDeclarationNameSite(n *tree_sitter.Node) bool {
	decl := enclosingDeclaration(n)
	if decl == nil {
		return false
	}
	return sameSpan(declaredNameNode(decl), n)
}

// isDeclSite reports whether n is itself a declaration-kind node, as
// opposed to some descendant of one. resolveReference uses it to keep its
// search anchored on actual declarations rather than other uses that
// happen to share the same identity string.
func isDeclSite(n *tree_sitter.Node) bool {
	decl := enclosingDeclaration(n)
	return decl != nil && sameSpan(decl, n)
}

// isCallee reports whether n is the function name of a call expression —
// `n(...)` or `recv.n(...)` — the one shape a bare identifier or
// field_identifier use can be recognized as a function/method reference
// purely from its syntactic position.
func isCallee(n *tree_sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "call_expression":
		if fn := parent.ChildByFieldName("function"); fn != nil {
			return sameSpan(fn, n)
		}
	case "field_expression":
		field := parent.ChildByFieldName("field")
		if field == nil || !sameSpan(field, n) {
			return false
		}
		call := parent.Parent()
		if call == nil || call.Kind() != "call_expression" {
			return false
		}
		if fn := call.ChildByFieldName("function"); fn != nil {
			return sameSpan(fn, parent)
		}
	}
	return false
}

// identityOf synthesizes a stable cross-translation-unit identity for n:
// the enclosing scope path, the spelled name, and the kind, joined so two
// occurrences of the same named entity (declaration and definition, or a
// declaration and its use) collide on the same string. This stands in for
// libclang's USR, which tree-sitter has no equivalent of (package doc).
//
// A use-site identifier — one referenceKind recognizes as naming some
// other, separately-declared entity — is keyed by its own spelled name and
// a kind bucket chosen to collide with that entity's own declaration-site
// identity (spec §9(a)); it is never qualified by the scope it happens to
// appear in, since a bare reference carries no information about which
// scope actually declared the entity it names.
func identityOf(n *tree_sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	if kind, ok := referenceKind(n); ok {
		name := textOf(n, content)
		if name == "" {
			return ""
		}
		return name + "#" + kindTag(kind)
	}

	decl := enclosingDeclaration(n)
	name := nameOf(decl, content)
	if name == "" {
		return ""
	}
	qualifier := qualifierOf(decl, content)
	kind := kindOf(decl)
	if qualifier != "" {
		return qualifier + "::" + name + "#" + kindTag(kind)
	}
	return name + "#" + kindTag(kind)
}

// resolveReference finds, within root's own tree, the declaration node
// that n — a reference use such as a type name or a function-call callee
// — names: the nearest tree-sitter analogue of libclang's
// cursor.referenced (spec §9(a)). It returns nil when n is not itself a
// reference, or when no matching declaration exists in this translation
// unit, in which case the Code-Model Service falls back to the Symbol
// Store for a cross-file lookup (gotodefinition.go step 3).
func resolveReference(root *tree_sitter.Node, n *tree_sitter.Node, content []byte) *tree_sitter.Node {
	if _, ok := referenceKind(n); !ok {
		return nil
	}
	target := identityOf(n, content)
	if target == "" {
		return nil
	}

	var found *tree_sitter.Node
	walk(root, func(cand *tree_sitter.Node) VisitResult {
		if found != nil {
			return Break
		}
		if isDeclSite(cand) && identityOf(cand, content) == target {
			found = cand
			return Break
		}
		return Recurse
	})
	return found
}

func kindTag(k Kind) string {
	switch k {
	case KindClass, KindStruct, KindEnum, KindUnion, KindTypedef:
		// Collapsed: see referenceKind's type_identifier case.
		return "type"
	case KindEnumValue:
		return "enumerator"
	case KindUsingDeclaration:
		return "using"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindLocalVariable:
		return "var"
	case KindFunctionParameter:
		return "param"
	case KindField:
		return "field"
	case KindMacroDefinition:
		return "macro"
	case KindMacroInstantiation:
		return "macro_use"
	default:
		return "other"
	}
}

// declaredNameNode returns the leaf identifier node that spells out the
// entity n introduces, unwrapping the declarator chain pointer/array/
// function wrappers the cpp grammar builds around a plain identifier, or
// nil if n doesn't introduce a name at all.
func declaredNameNode(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if field := n.ChildByFieldName("name"); field != nil {
		return unwrapDeclarator(field)
	}
	if field := n.ChildByFieldName("declarator"); field != nil {
		return unwrapDeclarator(field)
	}
	switch n.Kind() {
	case "identifier", "field_identifier", "type_identifier":
		return n
	}
	return nil
}

// nameOf extracts the spelled identifier of the entity a declaration node
// introduces.
func nameOf(n *tree_sitter.Node, content []byte) string {
	return textOf(declaredNameNode(n), content)
}

// unwrapDeclarator descends through pointer/reference/array/function
// declarator wrappers to the identifier they ultimately name.
func unwrapDeclarator(n *tree_sitter.Node) *tree_sitter.Node {
	for n != nil {
		switch n.Kind() {
		case "identifier", "field_identifier", "type_identifier", "destructor_name":
			return n
		case "pointer_declarator", "reference_declarator", "abstract_pointer_declarator":
			if inner := n.ChildByFieldName("declarator"); inner != nil {
				n = inner
				continue
			}
		case "function_declarator", "array_declarator", "parenthesized_declarator":
			if inner := n.ChildByFieldName("declarator"); inner != nil {
				n = inner
				continue
			}
		}
		break
	}
	return n
}

// qualifierOf walks n's ancestors collecting the names of enclosing
// class/struct/union/namespace scopes, outermost first.
func qualifierOf(n *tree_sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	var scopes []string
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier":
			if name := nameOf(p, content); name != "" {
				scopes = append(scopes, name)
			}
		case "namespace_definition":
			if field := p.ChildByFieldName("name"); field != nil {
				scopes = append(scopes, textOf(field, content))
			}
		}
	}
	for i, j := 0, len(scopes)-1; i < j; i, j = i+1, j-1 {
		scopes[i], scopes[j] = scopes[j], scopes[i]
	}
	return strings.Join(scopes, "::")
}

func sameSpan(a, b *tree_sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func textOf(n *tree_sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}
