package marker

import "strings"

// DefaultRefMarkers are the prefixes that introduce need-id references.
var DefaultRefMarkers = []string{"@need-ids:"}

// Ref is a list of need ids referenced from a single line.
type Ref struct {
	Marker      string
	NeedIDs     []string
	StartColumn int
	EndColumn   int
}

// ParseRefs finds every need-id reference marker on line. Ids after the marker
// are separated by commas or whitespace. StartColumn is the index right after
// the marker and EndColumn adds the length of the trimmed id list to it.
func ParseRefs(line string, markers []string) []Ref {
	var refs []Ref
	for _, m := range markers {
		if m == "" {
			continue
		}
		idx := strings.Index(line, m)
		if idx == -1 {
			continue
		}
		start := idx + len(m)
		trimmed := strings.TrimSpace(line[start:])
		refs = append(refs, Ref{
			Marker:      m,
			NeedIDs:     strings.Fields(strings.ReplaceAll(trimmed, ",", " ")),
			StartColumn: start,
			EndColumn:   start + len(trimmed),
		})
	}
	return refs
}
