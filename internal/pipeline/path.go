// Package pipeline implements the encryption pipeline: given a schema name
// and a JSON payload, it walks every PII path the schema declares and
// replaces each matching string leaf with its encrypted token form.
package pipeline

import "strings"

// segmentKind distinguishes a named object-field descent from an
// array-element fan-out, the two segment kinds the PII path grammar
// produces.
type segmentKind int

const (
	segmentKey segmentKind = iota
	segmentArrayItem
)

// segment is one step of a parsed PII path.
type segment struct {
	kind segmentKind
	key  string // only meaningful when kind == segmentKey
}

// parsePath splits a dot-notation PII path (e.g. "accounts[].number") into
// its segment list. A key ending in "[]" becomes two segments: Key(name)
// followed by ArrayItem.
func parsePath(path string) []segment {
	if path == "" {
		return nil
	}

	parts := strings.Split(path, ".")
	segments := make([]segment, 0, len(parts)+1)

	for _, part := range parts {
		if part == "[]" {
			segments = append(segments, segment{kind: segmentArrayItem})
			continue
		}

		if strings.HasSuffix(part, "[]") {
			key := strings.TrimSuffix(part, "[]")
			segments = append(segments, segment{kind: segmentKey, key: key})
			segments = append(segments, segment{kind: segmentArrayItem})
			continue
		}

		segments = append(segments, segment{kind: segmentKey, key: part})
	}

	return segments
}
