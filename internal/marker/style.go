// Package marker parses traceability markers embedded in source comments.
//
// A one-line marker looks like
//
//	@Data processing function, process_func, impl, [REQ_002]
//
// and is turned into a Need whose fields are described by a Style.
package marker

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType is the value type of a need field.
type FieldType string

const (
	FieldString FieldType = "str"
	FieldList   FieldType = "list[str]"
)

// Escape is the character used to take delimiters and brackets literally.
const Escape = '\\'

// ErrInvalidStyle is wrapped by every error returned from Style.Validate.
var ErrInvalidStyle = errors.New("invalid oneline comment style")

// requiredFieldNames must be present in every style.
var requiredFieldNames = []string{"title", "id", "type"}

// Field describes one positional field of a one-line marker.
type Field struct {
	Name string    `yaml:"name" json:"name"`
	Type FieldType `yaml:"type,omitempty" json:"type,omitempty"`
	// Default is a string for FieldString and a []string for FieldList.
	// A nil Default makes the field mandatory.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
}

func (f Field) fieldType() FieldType {
	if f.Type == "" {
		return FieldString
	}
	return f.Type
}

// defaultValue normalises Default to string or []string.
// ok is false when the field has no default.
func (f Field) defaultValue() (value any, ok bool, err error) {
	if f.Default == nil {
		return nil, false, nil
	}
	switch f.fieldType() {
	case FieldString:
		s, isStr := f.Default.(string)
		if !isStr {
			return nil, true, fmt.Errorf("field %q: default %v is not of type 'string'", f.Name, f.Default)
		}
		return s, true, nil
	case FieldList:
		switch d := f.Default.(type) {
		case []string:
			return append([]string{}, d...), true, nil
		case []any:
			out := make([]string, 0, len(d))
			for _, item := range d {
				s, isStr := item.(string)
				if !isStr {
					return nil, true, fmt.Errorf("field %q: default item %v is not of type 'string'", f.Name, item)
				}
				out = append(out, s)
			}
			return out, true, nil
		default:
			return nil, true, fmt.Errorf("field %q: default %v is not of type 'array'", f.Name, f.Default)
		}
	}
	return nil, true, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
}

// Style configures how one-line markers are recognised and split.
type Style struct {
	StartSequence  string  `yaml:"start_sequence" json:"start_sequence"`
	EndSequence    string  `yaml:"end_sequence" json:"end_sequence"`
	FieldSplitChar string  `yaml:"field_split_char" json:"field_split_char"`
	Fields         []Field `yaml:"needs_fields" json:"needs_fields"`
}

// DefaultStyle returns the "@title, id, type, [links]" style terminated by a newline.
func DefaultStyle() Style {
	return Style{
		StartSequence:  "@",
		EndSequence:    "\n",
		FieldSplitChar: ",",
		Fields: []Field{
			{Name: "title"},
			{Name: "id"},
			{Name: "type", Default: "impl"},
			{Name: "links", Type: FieldList, Default: []string{}},
		},
	}
}

// Validate reports every problem with the style, joined into one error.
func (s Style) Validate() error {
	var errs []error
	if s.StartSequence == "" {
		errs = append(errs, fmt.Errorf("%w: start_sequence must not be empty", ErrInvalidStyle))
	}
	if s.EndSequence == "" {
		errs = append(errs, fmt.Errorf("%w: end_sequence must not be empty", ErrInvalidStyle))
	}
	if s.StartSequence != "" && s.StartSequence == s.EndSequence {
		errs = append(errs, fmt.Errorf("%w: start_sequence and end_sequence cannot be the same", ErrInvalidStyle))
	}
	if len([]rune(s.FieldSplitChar)) != 1 {
		errs = append(errs, fmt.Errorf("%w: field_split_char must be a single character", ErrInvalidStyle))
	}

	seen := make(map[string]bool, len(s.Fields))
	var missing []string
	for _, name := range requiredFieldNames {
		found := false
		for _, f := range s.Fields {
			if f.Name == name {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: missing required fields: [%s]", ErrInvalidStyle, strings.Join(missing, ", ")))
	}

	sawDefault := false
	for _, f := range s.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("%w: field without a name", ErrInvalidStyle))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("%w: field %q is defined multiple times", ErrInvalidStyle, f.Name))
		}
		seen[f.Name] = true

		switch f.fieldType() {
		case FieldString, FieldList:
		default:
			errs = append(errs, fmt.Errorf("%w: field %q: type %q is not one of [str, list[str]]", ErrInvalidStyle, f.Name, f.Type))
			continue
		}
		_, hasDefault, err := f.defaultValue()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidStyle, err))
		}
		if hasDefault {
			sawDefault = true
		} else if sawDefault {
			errs = append(errs, fmt.Errorf("%w: required field %q follows a field with a default", ErrInvalidStyle, f.Name))
		}
	}
	return errors.Join(errs...)
}

// requiredCount is the number of leading fields without a default.
func (s Style) requiredCount() int {
	n := 0
	for _, f := range s.Fields {
		if f.Default == nil {
			n++
		}
	}
	return n
}

// listPositions returns the 1-based positions of list fields.
func (s Style) listPositions() map[int]bool {
	pos := make(map[int]bool)
	for i, f := range s.Fields {
		if f.fieldType() == FieldList {
			pos[i+1] = true
		}
	}
	return pos
}
