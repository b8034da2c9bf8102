package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"codelinks/internal/logging"

	"go.uber.org/zap"
)

// Registry routes files to the CommentParser registered for their extension.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]CommentParser // extension -> parser (e.g., ".rs" -> rust)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]CommentParser)}
}

// DefaultRegistry returns a registry with every built-in language.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoParser())
	r.Register(NewRustParser())
	r.Register(NewCParser())
	r.Register(NewCppParser())
	r.Register(NewPythonParser())
	return r
}

// Register adds a parser for its supported extensions.
// If a parser is already registered for an extension, it is replaced.
func (r *Registry) Register(parser CommentParser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range parser.SupportedExtensions() {
		ext = NormalizeExtension(ext)
		logging.Get(logging.CategorySource).Debug("registering parser",
			zap.String("language", parser.Language()), zap.String("extension", ext))
		r.parsers[ext] = parser
	}
}

// Parser returns the parser for a file path, or nil.
func (r *Registry) Parser(path string) CommentParser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[NormalizeExtension(filepath.Ext(path))]
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Restrict returns a registry holding only the given languages or extensions.
// An empty selection returns r itself.
func (r *Registry) Restrict(selection []string) (*Registry, error) {
	if len(selection) == 0 {
		return r, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := NewRegistry()
	for _, sel := range selection {
		sel = strings.ToLower(strings.TrimSpace(sel))
		found := false
		for ext, p := range r.parsers {
			if p.Language() == sel || ext == NormalizeExtension(sel) {
				out.parsers[ext] = p
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("no parser registered for %q", sel)
		}
	}
	return out, nil
}

// Comments extracts the comments of a file with the matching parser.
func (r *Registry) Comments(ctx context.Context, path string, content []byte) ([]Comment, error) {
	parser := r.Parser(path)
	if parser == nil {
		return nil, fmt.Errorf("no parser registered for extension: %s", filepath.Ext(path))
	}
	return parser.Comments(ctx, NormalizeNewlines(content))
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
