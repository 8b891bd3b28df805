package article

import (
	"context"
	"sync"

	"github.com/jmertens/pmcminer/internal/nlp"
)

// Sentence is one sentence-level record produced by the structural
// walker: the sentence text in two renderings, its position within its
// paragraph and within the document scope, the section context it was
// found under, and the figures, tables and citations it refers to.
// All fields are fixed at construction.
type Sentence struct {
	Text                   string `json:"text"`
	CitationRedactedText   string `json:"citation_redacted_text"`
	InParagraphIndex       int    `json:"in_paragraph_index"`
	ParagraphSentenceCount int    `json:"paragraph_sentence_count"`
	IndexInDocument        int    `json:"index_in_document"`
	Section                string `json:"section"`
	Subsection             string `json:"subsection"`

	FigureIDs   []string `json:"figure_ids,omitempty"`
	TableIDs    []string `json:"table_ids,omitempty"`
	CitationIDs []string `json:"citation_ids,omitempty"`

	RefersFigure   bool `json:"refers_figure"`
	RefersTable    bool `json:"refers_table"`
	RefersCitation bool `json:"refers_citation"`

	annOnce sync.Once
	ann     nlp.Annotation
	annErr  error
}

// newSentence builds a record from one already-segmented annotated
// sentence string. The three derivations (display text, redacted text,
// referenced ids) are each pure functions of that string.
func newSentence(annotated string, inParagraph, total, inDocument int, section, subsection string) *Sentence {
	refs := ScanMarkers(annotated)
	return &Sentence{
		Text:                   DisplayText(annotated),
		CitationRedactedText:   RedactCitations(annotated),
		InParagraphIndex:       inParagraph,
		ParagraphSentenceCount: total,
		IndexInDocument:        inDocument,
		Section:                section,
		Subsection:             subsection,
		FigureIDs:              refs.Figures,
		TableIDs:               refs.Tables,
		CitationIDs:            refs.Citations,
		RefersFigure:           len(refs.Figures) > 0,
		RefersTable:            len(refs.Tables) > 0,
		RefersCitation:         len(refs.Citations) > 0,
	}
}

// Annotation computes the NLP annotation for the display text on first
// use and caches it for the sentence's lifetime. The analyzer is only
// consulted once; callers after the first get the cached result, so
// concurrent first access is safe.
func (s *Sentence) Annotation(ctx context.Context, an nlp.Analyzer) (nlp.Annotation, error) {
	s.annOnce.Do(func() {
		s.ann, s.annErr = an.Annotate(ctx, s.Text)
	})
	return s.ann, s.annErr
}
