// Package discover finds the source files to analyse below a directory.
package discover

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codelinks/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

// Options controls which files are discovered.
type Options struct {
	// Root is the directory to walk.
	Root string
	// Include globs (doublestar syntax, relative to Root, slash separated)
	// take precedence over .gitignore and Exclude.
	Include []string
	Exclude []string
	// Gitignore honours .gitignore files below Root.
	Gitignore bool
	// Extensions limits discovery to these extensions (with leading dot).
	// Empty means every file.
	Extensions []string
}

// Validate checks that the glob patterns are well formed.
func (o Options) Validate() error {
	for _, p := range append(append([]string{}, o.Include...), o.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// Discover walks opts.Root and returns matching files sorted by path.
// Returned paths are opts.Root joined with the relative file path.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	log := logging.Get(logging.CategoryDiscover)

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source dir %s is not a directory", opts.Root)
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	var matcher gitignore.Matcher
	if opts.Gitignore {
		patterns, err := gitignore.ReadPatterns(osfs.New(opts.Root), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read .gitignore: %w", err)
		}
		if len(patterns) > 0 {
			matcher = gitignore.NewMatcher(patterns)
			log.Debug("gitignore patterns loaded", zap.Int("patterns", len(patterns)))
		}
	}

	var files []string
	err = filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(opts.Root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		relSlash := filepath.ToSlash(rel)
		parts := strings.Split(relSlash, "/")

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			// included files may live below ignored directories
			if len(opts.Include) == 0 && matcher != nil && matcher.Match(parts, true) {
				log.Debug("skipping ignored directory", zap.String("dir", relSlash))
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		switch {
		case matchesAny(relSlash, opts.Include):
		case matcher != nil && matcher.Match(parts, false):
			return nil
		case matchesAny(relSlash, opts.Exclude):
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", opts.Root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return normalize(files[i]) < normalize(files[j])
	})
	log.Info("source files discovered", zap.String("root", opts.Root), zap.Int("files", len(files)))
	return files, nil
}

func matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
