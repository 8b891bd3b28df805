package segment

import (
	"regexp"
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// Splitter splits an annotated paragraph string into an ordered sequence
// of sentence strings. Implementations must treat an inline reference
// marker (<xref ...>...</xref>) as atomic: no sentence boundary may fall
// inside one.
type Splitter interface {
	Split(text string) []string
}

var markerSpan = regexp.MustCompile(`<xref[^>]*>.*?</xref>`)

// UAX29 segments text at Unicode sentence boundaries (UAX #29). Markers
// are masked before segmentation so punctuation inside a marker (e.g.
// "Fig. 1") cannot open a boundary; the resulting offsets slice the
// original string, so marker bytes pass through untouched.
type UAX29 struct{}

func (UAX29) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	masked := maskMarkers(text)
	var out []string
	offset := 0
	seg := sentences.FromString(masked)
	for seg.Next() {
		v := seg.Value()
		raw := text[offset : offset+len(v)]
		offset += len(v)
		if s := strings.TrimSpace(raw); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// maskMarkers overwrites each marker span with a same-length run of
// letters. Byte length is preserved so segment offsets in the masked
// string map 1:1 onto the original.
func maskMarkers(text string) string {
	return markerSpan.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat("x", len(m))
	})
}
