package source

import (
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// NewGoParser returns a comment parser for Go.
func NewGoParser() *TreeSitterParser {
	return newTreeSitterParser(languageSpec{
		name:         "go",
		extensions:   []string{".go"},
		language:     golang.GetLanguage,
		commentTypes: set("comment"),
		scopeTypes:   set("function_declaration", "method_declaration", "type_declaration", "const_declaration", "var_declaration"),
	})
}

// NewRustParser returns a comment parser for Rust.
func NewRustParser() *TreeSitterParser {
	return newTreeSitterParser(languageSpec{
		name:         "rs",
		extensions:   []string{".rs"},
		language:     rust.GetLanguage,
		commentTypes: set("line_comment", "block_comment"),
		scopeTypes: set("function_item", "struct_item", "enum_item", "trait_item",
			"impl_item", "mod_item", "const_item", "static_item", "type_item"),
	})
}

// NewCParser returns a comment parser for C.
func NewCParser() *TreeSitterParser {
	return newTreeSitterParser(languageSpec{
		name:         "c",
		extensions:   []string{".c", ".h"},
		language:     c.GetLanguage,
		commentTypes: set("comment"),
		scopeTypes:   set("function_definition", "struct_specifier", "enum_specifier", "union_specifier"),
	})
}

// NewCppParser returns a comment parser for C++.
func NewCppParser() *TreeSitterParser {
	return newTreeSitterParser(languageSpec{
		name:         "cpp",
		extensions:   []string{".cpp", ".hpp", ".cc", ".hh", ".cxx", ".hxx"},
		language:     cpp.GetLanguage,
		commentTypes: set("comment"),
		scopeTypes: set("function_definition", "class_specifier", "struct_specifier",
			"enum_specifier", "namespace_definition"),
	})
}

// NewPythonParser returns a comment parser for Python, including docstrings.
func NewPythonParser() *TreeSitterParser {
	return newTreeSitterParser(languageSpec{
		name:         "py",
		extensions:   []string{".py"},
		language:     python.GetLanguage,
		commentTypes: set("comment"),
		scopeTypes:   set("function_definition", "class_definition"),
		docstrings:   true,
	})
}
