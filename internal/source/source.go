// Package source extracts comments from source files.
//
// Each supported language is parsed with Tree-sitter; the resulting comment
// nodes are reported together with their position and the declaration they
// document.
package source

import (
	"bytes"
	"context"
	"unicode/utf8"
)

// Kind classifies a comment.
type Kind string

const (
	KindLine      Kind = "line"      // "//" or "#"
	KindBlock     Kind = "block"     // "/* ... */"
	KindDoc       Kind = "doc"       // "///", "//!", "/** ... */"
	KindDocstring Kind = "docstring" // Python string statement
)

// Comment is one comment node of a source file.
type Comment struct {
	Text string
	Kind Kind
	// StartRow and EndRow are 0-based.
	StartRow    int
	StartColumn int
	EndRow      int
	EndColumn   int
	// Scope names the declaration the comment is attached to, if any.
	Scope string
}

// SingleLine reports whether the comment occupies a single row.
func (c Comment) SingleLine() bool {
	return c.StartRow == c.EndRow
}

// CommentParser extracts comments from the content of a single file.
type CommentParser interface {
	// Language returns a short identifier such as "go" or "rs".
	Language() string
	// SupportedExtensions returns extensions with a leading dot.
	SupportedExtensions() []string
	// Comments returns comments in source order.
	Comments(ctx context.Context, content []byte) ([]Comment, error)
}

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(content []byte) []byte {
	if !bytes.ContainsRune(content, '\r') {
		return content
	}
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

// textSampleSize is how much of a file IsText inspects.
const textSampleSize = 2048

// IsText reports whether content looks like UTF-8 text.
func IsText(content []byte) bool {
	sample := content
	if len(sample) > textSampleSize {
		sample = sample[:textSampleSize]
		// do not split a multi-byte rune at the sample boundary
		for i := 0; i < utf8.UTFMax && len(sample) > 0 && !utf8.RuneStart(content[len(sample)]); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	if bytes.IndexByte(sample, 0) != -1 {
		return false
	}
	return utf8.Valid(sample)
}
