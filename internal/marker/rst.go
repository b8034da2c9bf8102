package marker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRstStyle is wrapped by RstStyle.Validate errors.
var ErrInvalidRstStyle = errors.New("invalid marked rst style")

// RstStyle configures marked reStructuredText blocks.
type RstStyle struct {
	StartSequence string `yaml:"start_sequence" json:"start_sequence"`
	EndSequence   string `yaml:"end_sequence" json:"end_sequence"`
	// StripLeadingSequences are removed from the start of every line of a
	// multi-line block, after any indentation.
	StripLeadingSequences []string `yaml:"strip_leading_sequences" json:"strip_leading_sequences,omitempty"`
}

// DefaultRstStyle returns the "@rst ... @endrst" style.
func DefaultRstStyle() RstStyle {
	return RstStyle{
		StartSequence:         "@rst",
		EndSequence:           "@endrst",
		StripLeadingSequences: []string{"*"},
	}
}

// Validate checks that both sequences are set and distinct.
func (s RstStyle) Validate() error {
	var errs []string
	if s.StartSequence == "" {
		errs = append(errs, "start_sequence must not be empty")
	}
	if s.EndSequence == "" {
		errs = append(errs, "end_sequence must not be empty")
	}
	if s.StartSequence != "" && s.StartSequence == s.EndSequence {
		errs = append(errs, "start_sequence and end_sequence cannot be the same")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRstStyle, strings.Join(errs, "; "))
	}
	return nil
}

// RstBlock is the raw text between an rst start and end sequence.
type RstBlock struct {
	// Text is the block content. For a multi-line block it starts on the line
	// after the start sequence.
	Text string
	// Multiline is set when the sequences are on different lines.
	Multiline bool
	// StartRow and EndRow are the 0-based lines of the start and end
	// sequences within the searched text.
	StartRow int
	EndRow   int
	// StartIdx and EndIdx are byte offsets of Text in the searched text.
	StartIdx int
	EndIdx   int
}

// ExtractRst returns the first start sequence to the last end sequence of
// text, or nil when either is missing or the content is blank.
func ExtractRst(text string, style RstStyle) *RstBlock {
	if style.StartSequence == "" || style.EndSequence == "" {
		return nil
	}
	start := strings.Index(text, style.StartSequence)
	end := strings.LastIndex(text, style.EndSequence)
	if start == -1 || end == -1 {
		return nil
	}
	contentStart := start + len(style.StartSequence)
	if end < contentStart {
		return nil
	}
	content := text[contentStart:end]
	if strings.TrimSpace(content) == "" {
		return nil
	}

	b := &RstBlock{
		Text:     content,
		StartRow: strings.Count(text[:start], "\n"),
		EndRow:   strings.Count(text[:end], "\n"),
		StartIdx: contentStart,
		EndIdx:   end,
	}
	if nl := strings.Index(content, "\n"); nl != -1 {
		b.Multiline = true
		b.Text = content[nl+1:]
		b.StartIdx = contentStart + nl + 1
	}
	return b
}

// RemoveLeadingSequences strips the first matching sequence from the start of
// each line. Indentation before the sequence is dropped with it.
func RemoveLeadingSequences(text string, sequences []string) string {
	if len(sequences) == 0 {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		stripped := false
		for _, seq := range sequences {
			if seq != "" && strings.HasPrefix(trimmed, seq) {
				b.WriteString(trimmed[len(seq):])
				stripped = true
				break
			}
		}
		if !stripped {
			b.WriteString(line)
		}
	}
	return b.String()
}
