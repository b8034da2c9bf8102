// Package analyse extracts one-line needs, need-id references and marked
// reStructuredText blocks from the comments of source files.
package analyse

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"codelinks/internal/gitinfo"
	"codelinks/internal/logging"
	"codelinks/internal/marker"
	"codelinks/internal/source"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls an Analyser.
type Config struct {
	// Workers caps the number of files parsed concurrently.
	Workers int
	// MaxFileBytes skips larger files; 0 disables the limit.
	MaxFileBytes int64

	OnelineNeeds bool
	Style        marker.Style

	NeedIDRefs bool
	RefMarkers []string

	MarkedRst bool
	RstStyle  marker.RstStyle
}

// DefaultConfig extracts one-line needs and need-id references with the
// default markers. Marked rst is off.
func DefaultConfig() Config {
	return Config{
		Workers:      4,
		OnelineNeeds: true,
		Style:        marker.DefaultStyle(),
		NeedIDRefs:   true,
		RefMarkers:   append([]string(nil), marker.DefaultRefMarkers...),
		RstStyle:     marker.DefaultRstStyle(),
	}
}

// Result is the outcome of an analysis run.
type Result struct {
	// Files is the number of files whose comments were extracted.
	Files int
	// Skipped counts binary, oversized and unsupported files.
	Skipped  int
	Comments int
	Contents []MarkedContent
	Warnings []Warning
	Duration time.Duration
}

// Needs returns the "need" entries.
func (r *Result) Needs() []MarkedContent {
	var out []MarkedContent
	for _, c := range r.Contents {
		if c.Type == TypeNeed {
			out = append(out, c)
		}
	}
	return out
}

// Refs returns the "need-id-refs" entries.
func (r *Result) Refs() []MarkedContent {
	var out []MarkedContent
	for _, c := range r.Contents {
		if c.Type == TypeNeedIDRefs {
			out = append(out, c)
		}
	}
	return out
}

// Rsts returns the "rst" entries.
func (r *Result) Rsts() []MarkedContent {
	var out []MarkedContent
	for _, c := range r.Contents {
		if c.Type == TypeRst {
			out = append(out, c)
		}
	}
	return out
}

// Analyser runs marker extraction over a set of files.
type Analyser struct {
	cfg      Config
	registry *source.Registry
	git      *gitinfo.Info
	log      *zap.Logger
}

// New creates an Analyser. git may be nil, in which case no remote URLs are set.
func New(cfg Config, registry *source.Registry, git *gitinfo.Info) *Analyser {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if registry == nil {
		registry = source.DefaultRegistry()
	}
	return &Analyser{
		cfg:      cfg,
		registry: registry,
		git:      git,
		log:      logging.Get(logging.CategoryAnalyse),
	}
}

type fileResult struct {
	parsed   bool
	comments int
	contents []MarkedContent
	warnings []Warning
}

// Run analyses files concurrently. The result is ordered by file, row and
// column regardless of scheduling.
func (a *Analyser) Run(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.analyseFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{}
	for _, res := range results {
		if !res.parsed {
			out.Skipped++
			continue
		}
		out.Files++
		out.Comments += res.comments
		out.Contents = append(out.Contents, res.contents...)
		out.Warnings = append(out.Warnings, res.warnings...)
	}
	sortContents(out.Contents)
	sort.SliceStable(out.Warnings, func(i, j int) bool {
		if out.Warnings[i].FilePath != out.Warnings[j].FilePath {
			return out.Warnings[i].FilePath < out.Warnings[j].FilePath
		}
		return out.Warnings[i].Line < out.Warnings[j].Line
	})
	out.Duration = time.Since(start)

	a.log.Info("analysis finished",
		zap.Int("files", out.Files),
		zap.Int("skipped", out.Skipped),
		zap.Int("comments", out.Comments),
		zap.Int("needs", len(out.Needs())),
		zap.Int("need_id_refs", len(out.Refs())),
		zap.Int("marked_rst", len(out.Rsts())),
		zap.Int("warnings", len(out.Warnings)),
		zap.Duration("duration", out.Duration))
	for _, w := range out.Warnings {
		a.log.Warn("invalid oneline marker",
			zap.String("file", w.FilePath), zap.Int("line", w.Line),
			zap.String("sub_type", w.SubType), zap.String("msg", w.Msg))
	}
	return out, nil
}

func sortContents(contents []MarkedContent) {
	sort.SliceStable(contents, func(i, j int) bool {
		a, b := contents[i], contents[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.SourceMap.Start.Row != b.SourceMap.Start.Row {
			return a.SourceMap.Start.Row < b.SourceMap.Start.Row
		}
		return a.SourceMap.Start.Column < b.SourceMap.Start.Column
	})
}

func (a *Analyser) analyseFile(ctx context.Context, path string) (fileResult, error) {
	if a.registry.Parser(path) == nil {
		a.log.Debug("no parser for file", zap.String("file", path))
		return fileResult{}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fileResult{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if a.cfg.MaxFileBytes > 0 && info.Size() > a.cfg.MaxFileBytes {
		a.log.Info("skipping oversized file", zap.String("file", path), zap.Int64("bytes", info.Size()))
		return fileResult{}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !source.IsText(content) {
		a.log.Debug("skipping binary file", zap.String("file", path))
		return fileResult{}, nil
	}
	return a.analyseContent(ctx, path, content)
}

// analyseContent extracts marked content from the source of a single file.
func (a *Analyser) analyseContent(ctx context.Context, path string, content []byte) (fileResult, error) {
	comments, err := a.registry.Comments(ctx, path, content)
	if err != nil {
		return fileResult{}, fmt.Errorf("failed to extract comments from %s: %w", path, err)
	}
	res := fileResult{parsed: true, comments: len(comments)}
	for _, c := range comments {
		a.extract(path, c, &res)
	}
	a.log.Debug("file analysed", zap.String("file", path),
		zap.Int("comments", len(comments)), zap.Int("contents", len(res.contents)))
	return res, nil
}

// extract scans the lines of one comment. Rows are absolute; columns on the
// first row are shifted by the column the comment starts at. Lines covered by
// a marked rst block are not parsed as one-line needs.
func (a *Analyser) extract(path string, c source.Comment, res *fileResult) {
	rstFrom, rstTo := -1, -1
	if a.cfg.MarkedRst {
		if mc, block := a.extractRst(path, c); block != nil {
			res.contents = append(res.contents, mc)
			rstFrom, rstTo = block.StartRow, block.EndRow
		}
	}

	for offset, line := range commentLines(c) {
		row := c.StartRow + offset
		shift := 0
		if offset == 0 {
			shift = c.StartColumn
		}

		var refs []marker.Ref
		if a.cfg.NeedIDRefs {
			refs = marker.ParseRefs(line, a.cfg.RefMarkers)
			for _, ref := range refs {
				res.contents = append(res.contents, MarkedContent{
					FilePath:    path,
					RemoteURL:   a.git.FileURL(path, row+1),
					SourceMap:   span(row, ref.StartColumn+shift, ref.EndColumn+shift),
					TaggedScope: c.Scope,
					Type:        TypeNeedIDRefs,
					Marker:      ref.Marker,
					NeedIDs:     ref.NeedIDs,
				})
			}
		}
		if !a.cfg.OnelineNeeds || len(refs) > 0 || (offset >= rstFrom && offset <= rstTo) {
			continue
		}

		need, warn := marker.Parse(line, a.cfg.Style)
		switch {
		case warn != nil:
			res.warnings = append(res.warnings, Warning{
				FilePath: path,
				Line:     row + 1,
				Msg:      warn.Msg,
				Type:     TypeNeed,
				SubType:  string(warn.SubType),
			})
		case need != nil:
			res.contents = append(res.contents, MarkedContent{
				FilePath:    path,
				RemoteURL:   a.git.FileURL(path, row+1),
				SourceMap:   span(row, need.StartColumn+shift, need.EndColumn+shift),
				TaggedScope: c.Scope,
				Type:        TypeNeed,
				Need:        need.Fields,
			})
		}
	}
}

// extractRst returns the marked rst block of a comment, if any. A single-line
// block spans the text between the sequences. A multi-line block starts at
// column 0 of the line after the start sequence and ends on the last line
// before the end sequence, with leading sequences stripped from its text.
func (a *Analyser) extractRst(path string, c source.Comment) (MarkedContent, *marker.RstBlock) {
	block := marker.ExtractRst(c.Text, a.cfg.RstStyle)
	if block == nil {
		return MarkedContent{}, nil
	}

	mc := MarkedContent{
		FilePath:    path,
		TaggedScope: c.Scope,
		Type:        TypeRst,
	}
	row := c.StartRow + block.StartRow
	if !block.Multiline {
		shift := 0
		if block.StartRow == 0 {
			shift = c.StartColumn
		}
		lineStart := strings.LastIndex(c.Text[:block.StartIdx], "\n") + 1
		mc.SourceMap = span(row, block.StartIdx-lineStart+shift, block.EndIdx-lineStart+shift)
		mc.Rst = block.Text
	} else {
		strip := a.cfg.RstStyle.StripLeadingSequences
		lines := strings.Split(block.Text, "\n")
		// the last segment is what precedes the end sequence on its line
		if last := lines[len(lines)-1]; len(lines) > 1 && strings.TrimSpace(marker.RemoveLeadingSequences(last, strip)) == "" {
			lines = lines[:len(lines)-1]
		}
		start := row + 1
		mc.SourceMap = SourceMap{
			Start: Position{Row: start, Column: 0},
			End:   Position{Row: start + len(lines) - 1, Column: len(lines[len(lines)-1])},
		}
		mc.Rst = marker.RemoveLeadingSequences(block.Text, strip)
	}
	mc.RemoteURL = a.git.FileURL(path, mc.Line())
	return mc, block
}

func span(row, start, end int) SourceMap {
	return SourceMap{
		Start: Position{Row: row, Column: start},
		End:   Position{Row: row, Column: end},
	}
}

// commentLines splits a comment into lines that keep their newline. A
// single-line comment always ends with exactly one newline.
func commentLines(c source.Comment) []string {
	if c.SingleLine() {
		return []string{strings.TrimRight(c.Text, "\n") + "\n"}
	}
	return strings.SplitAfter(c.Text, "\n")
}
