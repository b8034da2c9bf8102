package source

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// languageSpec describes how comments and declarations look in one grammar.
type languageSpec struct {
	name       string
	extensions []string
	language   func() *sitter.Language
	// commentTypes are node types that hold a whole comment.
	commentTypes map[string]bool
	// scopeTypes are declaration node types a comment can be attached to.
	scopeTypes map[string]bool
	// docstrings enables Python style string statements as comments.
	docstrings bool
}

// TreeSitterParser implements CommentParser on top of a Tree-sitter grammar.
// A fresh sitter.Parser is created per call, so one value may be shared
// between goroutines.
type TreeSitterParser struct {
	spec languageSpec
}

func newTreeSitterParser(spec languageSpec) *TreeSitterParser {
	return &TreeSitterParser{spec: spec}
}

// Language returns the language identifier.
func (p *TreeSitterParser) Language() string {
	return p.spec.name
}

// SupportedExtensions returns the extensions handled by this parser.
func (p *TreeSitterParser) SupportedExtensions() []string {
	return append([]string(nil), p.spec.extensions...)
}

// Comments parses content and returns every comment in source order.
func (p *TreeSitterParser) Comments(ctx context.Context, content []byte) ([]Comment, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.spec.language())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%s: parse failed: %w", p.spec.name, err)
	}
	defer tree.Close()

	var comments []Comment
	p.walk(tree.RootNode(), content, &comments)
	return comments, nil
}

func (p *TreeSitterParser) walk(node *sitter.Node, content []byte, out *[]Comment) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if p.spec.commentTypes[child.Type()] {
			*out = append(*out, p.newComment(child, content, commentKind(child.Content(content))))
			continue
		}
		if p.spec.docstrings && isDocstring(child) {
			*out = append(*out, p.newComment(child, content, KindDocstring))
			continue
		}
		p.walk(child, content, out)
	}
}

func (p *TreeSitterParser) newComment(n *sitter.Node, content []byte, kind Kind) Comment {
	start, end := n.StartPoint(), n.EndPoint()
	c := Comment{
		Text:        n.Content(content),
		Kind:        kind,
		StartRow:    int(start.Row),
		StartColumn: int(start.Column),
		EndRow:      int(end.Row),
		EndColumn:   int(end.Column),
	}
	// Some grammars include the terminating newline in line comments.
	if strings.HasSuffix(c.Text, "\n") && c.EndColumn == 0 && c.EndRow > c.StartRow {
		c.EndRow--
		c.EndColumn = int(start.Column) + len(strings.TrimRight(c.Text, "\n"))
	}
	if scope := p.associatedScope(n, kind); scope != nil {
		c.Scope = scopeName(scope, content)
	}
	return c
}

// isDocstring reports whether n is a bare string statement at module level
// or inside a function or class body. Its position in the body is not checked,
// so a module docstring after a shebang or licence comment still counts.
func isDocstring(n *sitter.Node) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	if n.NamedChild(0).Type() != "string" {
		return false
	}
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "module":
		return true
	case "block":
		owner := parent.Parent()
		return owner != nil && (owner.Type() == "function_definition" || owner.Type() == "class_definition")
	}
	return false
}

func commentKind(text string) Kind {
	switch {
	case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "//!"):
		return KindDoc
	case strings.HasPrefix(text, "/**"), strings.HasPrefix(text, "/*!"):
		return KindDoc
	case strings.HasPrefix(text, "/*"):
		return KindBlock
	default:
		return KindLine
	}
}

// associatedScope returns the declaration a comment documents: docstrings
// belong to their enclosing declaration, other comments to the next one and
// otherwise to the enclosing one.
func (p *TreeSitterParser) associatedScope(n *sitter.Node, kind Kind) *sitter.Node {
	if kind == KindDocstring {
		return p.enclosingScope(n)
	}
	if next := p.nextScope(n); next != nil {
		return next
	}
	return p.enclosingScope(n)
}

func (p *TreeSitterParser) enclosingScope(n *sitter.Node) *sitter.Node {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if p.spec.scopeTypes[cur.Type()] {
			return cur
		}
	}
	return nil
}

func (p *TreeSitterParser) nextScope(n *sitter.Node) *sitter.Node {
	for cur := n.NextNamedSibling(); cur != nil; cur = cur.NextNamedSibling() {
		if p.spec.scopeTypes[cur.Type()] {
			return cur
		}
		if cur.Type() == "block" {
			for i := 0; i < int(cur.NamedChildCount()); i++ {
				if child := cur.NamedChild(i); child != nil && p.spec.scopeTypes[child.Type()] {
					return child
				}
			}
		}
	}
	return nil
}

// scopeName returns the identifier of a declaration node.
func scopeName(n *sitter.Node, content []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(content)
	}
	// go: type_declaration -> type_spec -> name
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || (child.Type() != "type_spec" && child.Type() != "type_alias") {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			return name.Content(content)
		}
	}
	// c/cpp: declarators nest until the identifier
	for d := n.ChildByFieldName("declarator"); d != nil; d = d.ChildByFieldName("declarator") {
		switch d.Type() {
		case "identifier", "field_identifier", "qualified_identifier", "destructor_name", "operator_name", "type_identifier":
			return d.Content(content)
		}
	}
	// rust: impl blocks are named after their type
	if typ := n.ChildByFieldName("type"); typ != nil {
		return typ.Content(content)
	}
	first, _, _ := strings.Cut(n.Content(content), "\n")
	return strings.TrimSpace(first)
}
