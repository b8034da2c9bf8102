package analyse

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ContentType distinguishes the kinds of marked content.
type ContentType string

const (
	TypeNeed       ContentType = "need"
	TypeNeedIDRefs ContentType = "need-id-refs"
	TypeRst        ContentType = "rst"
)

// ContentFileName is the analysis output written into the output directory.
const ContentFileName = "marked_content.json"

// WarningsFileName is the warnings output, relative to the output directory.
var WarningsFileName = filepath.Join("warnings", "codelinks_warnings.json")

// Position is a 0-based row and byte column.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// SourceMap locates marked content in its file.
type SourceMap struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// MarkedContent is a need definition or a need-id reference found in a comment.
type MarkedContent struct {
	FilePath  string    `json:"filepath"`
	RemoteURL string    `json:"remote_url,omitempty"`
	SourceMap SourceMap `json:"source_map"`
	// TaggedScope names the declaration the comment belongs to.
	TaggedScope string      `json:"tagged_scope,omitempty"`
	Type        ContentType `json:"type"`

	// need-id-refs
	Marker  string   `json:"marker,omitempty"`
	NeedIDs []string `json:"need_ids,omitempty"`

	// need
	Need map[string]any `json:"need,omitempty"`

	// rst
	Rst string `json:"rst,omitempty"`
}

// NeedID returns the id of a need entry, or "".
func (m MarkedContent) NeedID() string {
	id, _ := m.Need["id"].(string)
	return id
}

// Line returns the 1-based line of the content.
func (m MarkedContent) Line() int {
	return m.SourceMap.Start.Row + 1
}

// Warning reports a marker that could not be resolved.
type Warning struct {
	FilePath string      `json:"file_path"`
	Line     int         `json:"lineno"`
	Msg      string      `json:"msg"`
	Type     ContentType `json:"type"`
	SubType  string      `json:"sub_type"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s (%s)", w.FilePath, w.Line, w.Msg, w.SubType)
}

// WriteJSON writes the marked content as an indented JSON array.
func (r *Result) WriteJSON(w io.Writer) error {
	contents := r.Contents
	if contents == nil {
		contents = []MarkedContent{}
	}
	return writeIndented(w, contents)
}

// WriteWarnings writes the warnings as an indented JSON array.
func (r *Result) WriteWarnings(w io.Writer) error {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	return writeIndented(w, warnings)
}

// Dump writes marked_content.json and the warnings file below outdir.
func (r *Result) Dump(outdir string) (string, error) {
	contentPath := filepath.Join(outdir, ContentFileName)
	if err := writeFile(contentPath, r.WriteJSON); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(outdir, WarningsFileName), r.WriteWarnings); err != nil {
		return "", err
	}
	return contentPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ReadJSON decodes marked content written by WriteJSON.
func ReadJSON(r io.Reader) ([]MarkedContent, error) {
	var contents []MarkedContent
	if err := json.NewDecoder(r).Decode(&contents); err != nil {
		return nil, fmt.Errorf("failed to decode marked content: %w", err)
	}
	return contents, nil
}

// LoadWarnings reads the warnings file below outdir. A missing file yields nil.
func LoadWarnings(outdir string) ([]Warning, error) {
	data, err := os.ReadFile(filepath.Join(outdir, WarningsFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var warnings []Warning
	if err := json.Unmarshal(data, &warnings); err != nil {
		return nil, fmt.Errorf("failed to decode warnings: %w", err)
	}
	return warnings, nil
}
