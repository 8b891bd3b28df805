package article

import "regexp"

// Cross-reference types carried on the ref-type attribute of a marker.
const (
	RefTypeFigure   = "fig"
	RefTypeTable    = "table"
	RefTypeCitation = "bibr"
)

// CitationPlaceholder replaces a whole citation marker, inner text
// included, in the redacted rendering of a sentence.
const CitationPlaceholder = "citation"

// The marker grammar is the textual protocol binding the encoder, the
// segmenter and the extractor: exactly
//
//	<xref ref-type="TYPE" rid="ID">DISPLAY</xref>
//
// with that attribute order and quoting. Both attributes are always
// written, as empty strings when the source node lacks them.
var (
	markerOpen     = regexp.MustCompile(`<xref ref-type="([^"]*)" rid="([^"]*)">`)
	markerTag      = regexp.MustCompile(`</?xref[^>]*>`)
	citationMarker = regexp.MustCompile(`<xref ref-type="bibr"[^>]*>.*?</xref>`)
)

// EncodeMarker renders one cross-reference as an inline marker.
func EncodeMarker(refType, rid, display string) string {
	return `<xref ref-type="` + refType + `" rid="` + rid + `">` + display + `</xref>`
}

// DisplayText strips marker decoration from an annotated sentence,
// keeping inner text and every other character verbatim.
func DisplayText(annotated string) string {
	return markerTag.ReplaceAllString(annotated, "")
}

// RedactCitations replaces each citation marker, inner text included,
// with the placeholder token, then strips the remaining figure and
// table markers to their inner text.
func RedactCitations(annotated string) string {
	out := citationMarker.ReplaceAllString(annotated, CitationPlaceholder)
	return markerTag.ReplaceAllString(out, "")
}

// MarkerRefs are the referenced ids found in one annotated sentence, in
// order of appearance. Duplicates are kept.
type MarkerRefs struct {
	Figures   []string
	Tables    []string
	Citations []string
}

// ScanMarkers reads the ref-type and rid of every marker occurrence.
// Markers with an unknown or empty ref-type are ignored; a missing rid
// scans as the empty string rather than failing.
func ScanMarkers(annotated string) MarkerRefs {
	var refs MarkerRefs
	for _, m := range markerOpen.FindAllStringSubmatch(annotated, -1) {
		switch m[1] {
		case RefTypeFigure:
			refs.Figures = append(refs.Figures, m[2])
		case RefTypeTable:
			refs.Tables = append(refs.Tables, m[2])
		case RefTypeCitation:
			refs.Citations = append(refs.Citations, m[2])
		}
	}
	return refs
}
