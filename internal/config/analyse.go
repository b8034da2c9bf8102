package config

import (
	"errors"
	"fmt"
	"runtime"

	"codelinks/internal/marker"
)

// AnalyseConfig controls marker extraction.
type AnalyseConfig struct {
	// Workers caps concurrent file workers (tree-sitter).
	Workers int `yaml:"workers" json:"workers,omitempty"`
	// MaxFileBytes skips files larger than this size.
	MaxFileBytes int64 `yaml:"max_file_bytes" json:"max_file_bytes,omitempty"`
	// GetOnelineNeeds extracts one-line need definitions.
	GetOnelineNeeds bool `yaml:"get_oneline_needs" json:"get_oneline_needs"`
	// GetNeedIDRefs extracts need-id references.
	GetNeedIDRefs bool `yaml:"get_need_id_refs" json:"get_need_id_refs"`
	// NeedIDRefMarkers introduce need-id references.
	NeedIDRefMarkers []string `yaml:"need_id_refs_markers" json:"need_id_refs_markers,omitempty"`
	// GetRst extracts marked reStructuredText blocks.
	GetRst bool `yaml:"get_rst" json:"get_rst"`
	// MarkedRst describes the rst block sequences.
	MarkedRst marker.RstStyle `yaml:"marked_rst" json:"marked_rst"`
	// OnelineStyle describes one-line markers.
	OnelineStyle marker.Style `yaml:"oneline_comment_style" json:"oneline_comment_style"`
	// GitRoot overrides repository detection.
	GitRoot string `yaml:"git_root" json:"git_root,omitempty"`
}

// DefaultAnalyseConfig returns defaults for marker extraction.
func DefaultAnalyseConfig() AnalyseConfig {
	workers := runtime.NumCPU()
	if workers > 20 {
		workers = 20
	}
	if workers < 4 {
		workers = 4
	}
	return AnalyseConfig{
		Workers:          workers,
		MaxFileBytes:     2 * 1024 * 1024,
		GetOnelineNeeds:  true,
		GetNeedIDRefs:    true,
		NeedIDRefMarkers: append([]string(nil), marker.DefaultRefMarkers...),
		OnelineStyle:     marker.DefaultStyle(),
		MarkedRst:        marker.DefaultRstStyle(),
	}
}

// Validate checks worker limits, the one-line style and that no marker is
// configured twice.
func (c AnalyseConfig) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("analyse.workers must be positive, got %d", c.Workers))
	}
	if c.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("analyse.max_file_bytes must not be negative, got %d", c.MaxFileBytes))
	}
	if !c.GetOnelineNeeds && !c.GetNeedIDRefs && !c.GetRst {
		errs = append(errs, errors.New("analyse: at least one of get_oneline_needs, get_need_id_refs and get_rst must be enabled"))
	}
	if c.GetOnelineNeeds {
		if err := c.OnelineStyle.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.GetRst {
		if err := c.MarkedRst.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	seen := map[string]bool{}
	claim := func(m string) {
		if seen[m] {
			errs = append(errs, fmt.Errorf("analyse: marker %q is defined multiple times", m))
		}
		seen[m] = true
	}
	if c.GetOnelineNeeds {
		seen[c.OnelineStyle.StartSequence] = true
		seen[c.OnelineStyle.EndSequence] = true
	}
	if c.GetNeedIDRefs {
		for _, m := range c.NeedIDRefMarkers {
			if m == "" {
				errs = append(errs, errors.New("analyse: need-id-refs marker must not be empty"))
				continue
			}
			claim(m)
		}
	}
	if c.GetRst {
		for _, m := range []string{c.MarkedRst.StartSequence, c.MarkedRst.EndSequence} {
			if m != "" {
				claim(m)
			}
		}
	}
	return errors.Join(errs...)
}
