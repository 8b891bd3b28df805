// Package score rates sentences for likely study-population /
// demographics content using shallow dependency-parse signals: numerals
// attached via the nummod relation to anchor nouns such as "patient" or
// "female".
package score

import (
	"strings"

	"github.com/jmertens/pmcminer/internal/nlp"
)

// Nummod is the dependency relation linking a numeral token to the
// noun or adjective it quantifies.
const Nummod = "nummod"

// demoSuffix matches "Demographics" and "demographics" section titles
// regardless of the leading letter's case.
const demoSuffix = "emographics"

const sectionBonus = 5

// Anchors are the lemmas whose presence makes a sentence a candidate
// for demographic scoring.
var Anchors = map[string]struct{}{
	"patient":    {},
	"age":        {},
	"aged":       {},
	"male":       {},
	"female":     {},
	"subject":    {},
	"individual": {},
}

// Exclusions are numeral lemmas too generic to be informative alone.
var Exclusions = map[string]struct{}{
	"±":   {},
	"1":   {},
	"®":   {},
	"one": {},
}

// HasAnchor reports whether any lemma belongs to the anchor set. Cheap
// pre-filter to run before the full scorer.
func HasAnchor(lemmas []string) bool {
	for _, l := range lemmas {
		if _, ok := Anchors[l]; ok {
			return true
		}
	}
	return false
}

// NummodIndices returns the candidate positions of an annotation: the
// incoming relation is nummod, the lemma is not excluded, and a
// following token exists to anchor on.
func NummodIndices(ann nlp.Annotation) []int {
	n := len(ann.Dependencies)
	if len(ann.Lemmas) < n {
		n = len(ann.Lemmas)
	}
	var indices []int
	for i := 0; i < n; i++ {
		if ann.Dependencies[i] != Nummod {
			continue
		}
		if _, excluded := Exclusions[ann.Lemmas[i]]; excluded {
			continue
		}
		if i >= len(ann.Lemmas)-1 {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

// Demographic computes the fixed-weight relevance score.
//
// For each candidate position the anchor is the lemma that follows the
// numeral. Anchors outside the keyword table contribute one point.
// Anchors in the table contribute their base weight while the
// per-sentence occurrence counter stays below the cap; the counter is
// read before it is incremented, so the first occurrence of a capped
// anchor scores and only later occurrences are gated. This mirrors the
// reference scorer exactly, including that read-before-increment order.
//
// A flat bonus applies when the section or subsection title names a
// demographics section.
func Demographic(ann nlp.Annotation, section, subsection string, t Tables) int {
	score := 0
	if strings.Contains(section, demoSuffix) || strings.Contains(subsection, demoSuffix) {
		score += sectionBonus
	}

	seen := make(map[string]int)
	for _, i := range NummodIndices(ann) {
		anchor := ann.Lemmas[i+1]
		kw, ok := t.Keywords[anchor]
		if !ok {
			score++
			continue
		}
		if seen[anchor] < kw.Cap {
			score += kw.Base
		}
		seen[anchor]++
	}
	return score
}

// DemographicWeighted computes the corpus-frequency-weighted score.
// Candidate selection and capping match Demographic, but both the
// one-point contribution and the base weight scale by
// 1 + count(numeralLemma)/10, where numCounts maps numeral lemmas to
// their corpus-wide occurrence counts (missing lemmas count as 0). The
// section bonus does not apply under this policy.
func DemographicWeighted(ann nlp.Annotation, numCounts map[string]int, t Tables) float64 {
	var score float64
	seen := make(map[string]int)
	for _, i := range NummodIndices(ann) {
		mult := 1 + float64(numCounts[ann.Lemmas[i]])/10.0
		anchor := ann.Lemmas[i+1]
		kw, ok := t.Keywords[anchor]
		if !ok {
			score += mult
			continue
		}
		if seen[anchor] < kw.Cap {
			score += mult * float64(kw.Base)
		}
		seen[anchor]++
	}
	return score
}
