// Package export turns analysis results into documentation artefacts.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"codelinks/internal/analyse"
	"codelinks/internal/logging"

	"go.uber.org/zap"
)

// DefaultRemoteURLField is the need option that receives the source link.
const DefaultRemoteURLField = "remote-url"

// NeedExtendOptions configures NeedExtend.
type NeedExtendOptions struct {
	// RemoteURLField is the option name set on each extended need.
	RemoteURLField string
	// Title, when set, is written as an underlined heading.
	Title string
}

// NeedExtend writes one ".. needextend::" directive per need id referenced by
// need-id-refs entries. Other content types are ignored. Every need-id-refs
// entry is checked before anything is written; entries without a remote URL
// are skipped.
func NeedExtend(w io.Writer, contents []analyse.MarkedContent, opts NeedExtendOptions) (int, error) {
	log := logging.Get(logging.CategoryExport)
	field := opts.RemoteURLField
	if field == "" {
		field = DefaultRemoteURLField
	}

	var refs []analyse.MarkedContent
	var errs []error
	for _, c := range contents {
		if c.Type != analyse.TypeNeedIDRefs {
			continue
		}
		if err := checkRef(c); err != nil {
			errs = append(errs, err)
			continue
		}
		refs = append(refs, c)
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "%s\n%s\n\n", opts.Title, strings.Repeat("=", len(opts.Title)))
	}
	written := 0
	for _, ref := range refs {
		if ref.RemoteURL == "" {
			log.Warn("need-id-refs without remote url",
				zap.String("file", ref.FilePath), zap.Int("line", ref.Line()))
			continue
		}
		for _, id := range ref.NeedIDs {
			fmt.Fprintf(&b, ".. needextend:: %s\n   :%s: %s\n\n", id, field, ref.RemoteURL)
			written++
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, fmt.Errorf("failed to write needextend: %w", err)
	}
	log.Info("needextend written", zap.Int("directives", written))
	return written, nil
}

func checkRef(c analyse.MarkedContent) error {
	var problems []string
	if c.FilePath == "" {
		problems = append(problems, "filepath is required")
	}
	if c.Marker == "" {
		problems = append(problems, "marker is required for marked content of type 'need-id-refs'")
	}
	if len(c.NeedIDs) == 0 {
		problems = append(problems, "need id refs are required for marked content of type 'need-id-refs'")
	}
	if c.SourceMap.Start.Row < 0 || c.SourceMap.Start.Column < 0 ||
		c.SourceMap.End.Row < c.SourceMap.Start.Row {
		problems = append(problems, "source_map is invalid")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s:%d: %s", c.FilePath, c.Line(), strings.Join(problems, "; "))
}
