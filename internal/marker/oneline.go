package marker

import (
	"fmt"
	"strings"
)

// WarningSubType classifies a malformed one-line marker.
type WarningSubType string

const (
	TooManyFields                   WarningSubType = "too_many_fields"
	TooFewFields                    WarningSubType = "too_few_fields"
	MissingSquareBrackets           WarningSubType = "missing_square_brackets"
	NotStartOrEndWithSquareBrackets WarningSubType = "not_start_or_end_with_square_brackets"
	NewlineInField                  WarningSubType = "newline_in_field"
)

// Warning describes why a line that contains a marker could not be turned into a need.
type Warning struct {
	SubType WarningSubType
	Msg     string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.SubType, w.Msg)
}

// Need is a resolved one-line marker.
type Need struct {
	// Fields maps a field name to a string or a []string.
	Fields map[string]any
	// StartColumn is the byte offset right after the start sequence.
	StartColumn int
	// EndColumn is the byte offset of the end sequence.
	EndColumn int
}

// ID returns the "id" field.
func (n *Need) ID() string {
	s, _ := n.Fields["id"].(string)
	return s
}

// Title returns the "title" field.
func (n *Need) Title() string {
	s, _ := n.Fields["title"].(string)
	return s
}

// Links returns the "links" field, or nil.
func (n *Need) Links() []string {
	l, _ := n.Fields["links"].([]string)
	return l
}

// Parse resolves a one-line marker inside line.
//
// It returns (nil, nil) when line carries no marker, a Need on success and a
// Warning when the marker is present but malformed.
func Parse(line string, style Style) (*Need, *Warning) {
	startIdx := strings.Index(line, style.StartSequence)
	endIdx := strings.LastIndex(line, style.EndSequence)
	if startIdx == -1 || endIdx == -1 {
		return nil, nil
	}
	startIdx += len(style.StartSequence)
	if endIdx < startIdx {
		return nil, nil
	}
	body := line[startIdx:endIdx]

	minFields := style.requiredCount()
	maxFields := len(style.Fields)

	raw := SplitFields(body, style.FieldSplitChar, style.listPositions())
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = strings.Trim(v, " ")
	}

	if len(values) < minFields {
		return nil, &Warning{
			SubType: TooFewFields,
			Msg:     fmt.Sprintf("%d given fields. They shall be more than %d", len(values), minFields),
		}
	}
	if len(values) > maxFields {
		return nil, &Warning{
			SubType: TooManyFields,
			Msg:     fmt.Sprintf("%d given fields. They shall be less than %d", len(values), maxFields),
		}
	}

	resolved := make(map[string]any, len(style.Fields))
	for idx, field := range style.Fields {
		if idx >= len(values) {
			def, ok, _ := field.defaultValue()
			if ok && def != nil {
				resolved[field.Name] = def
			}
			continue
		}
		value := values[idx]
		if strings.Contains(value, "\n") {
			return nil, &Warning{
				SubType: NewlineInField,
				Msg:     fmt.Sprintf("Field %s has newline character. It is not allowed", field.Name),
			}
		}
		switch field.fieldType() {
		case FieldString:
			resolved[field.Name] = value
		case FieldList:
			items, w := parseList(field, value)
			if w != nil {
				return nil, w
			}
			resolved[field.Name] = items
		}
	}

	return &Need{Fields: resolved, StartColumn: startIdx, EndColumn: endIdx}, nil
}

func parseList(field Field, value string) ([]string, *Warning) {
	open := strings.Index(value, "[")
	closing := strings.LastIndex(value, "]")
	if open == -1 || closing == -1 {
		return nil, &Warning{
			SubType: MissingSquareBrackets,
			Msg:     fmt.Sprintf("Field %s with 'type': '%s' must be given with '[]' brackets", field.Name, FieldList),
		}
	}
	if open != 0 || closing != len(value)-1 {
		return nil, &Warning{
			SubType: NotStartOrEndWithSquareBrackets,
			Msg:     fmt.Sprintf("Field %s with 'type': '%s' must start with '[' and end with ']'", field.Name, FieldList),
		}
	}
	inner := value[open+1 : closing]
	if strings.TrimSpace(inner) == "" {
		return []string{}, nil
	}
	parts := SplitFields(inner, ",", nil)
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = strings.TrimSpace(p)
	}
	return items, nil
}

// SplitFields splits s by delim.
//
// In string fields a backslash makes the following delimiter, bracket or
// backslash literal; before any other character it is kept as is. In list
// fields (1-based positions in listPositions) backslashes are not special and
// delimiters between '[' and ']' do not split.
func SplitFields(s, delim string, listPositions map[int]bool) []string {
	d := []rune(delim)
	var delimRune rune
	if len(d) > 0 {
		delimRune = d[0]
	}

	var (
		fields          []string
		field           strings.Builder
		leadingEscape   bool
		expectCloseList bool
	)
	for _, ch := range s {
		inList := listPositions[len(fields)+1]

		if leadingEscape {
			if ch != delimRune && ch != '[' && ch != ']' && ch != Escape {
				field.WriteRune(Escape)
			}
			field.WriteRune(ch)
			leadingEscape = false
			continue
		}
		if ch == Escape && !inList {
			leadingEscape = true
			continue
		}
		if ch == delimRune {
			if inList && expectCloseList {
				field.WriteRune(ch)
			} else {
				fields = append(fields, field.String())
				field.Reset()
			}
			continue
		}
		if inList {
			switch ch {
			case '[':
				expectCloseList = true
			case ']':
				expectCloseList = false
			}
		}
		field.WriteRune(ch)
	}
	return append(fields, field.String())
}
