package article

import (
	"strings"

	"github.com/jmertens/pmcminer/internal/doctree"
)

// Sentinel titles carried by the walker until a real title is captured
// along the traversal path.
const (
	DefaultSection    = "No Section"
	DefaultSubsection = "No Sub-section"
)

// Abstract returns the sentence records of the article's abstract. Only
// the first abstract node in the document is processed; later ones are
// typically editorial summaries and are ignored. The document-scope
// sentence index starts at 0 independently of FullText.
func (a *Article) Abstract() []*Sentence {
	node := doctree.First(a.root, "abstract")
	if node == nil {
		return nil
	}
	c := &cursor{article: a}
	c.walk([]*doctree.Node{node}, DefaultSection, DefaultSubsection)
	return c.out
}

// FullText returns the sentence records of the article body in document
// order, with its own document-scope sentence index starting at 0.
func (a *Article) FullText() []*Sentence {
	node := doctree.First(a.root, "body")
	if node == nil {
		return nil
	}
	c := &cursor{article: a}
	c.walk([]*doctree.Node{node}, DefaultSection, DefaultSubsection)
	return c.out
}

// cursor threads the document-scope sentence counter and the output
// through the recursive walk. Section state deliberately does not live
// here: titles are carried by value so a capture is visible to later
// siblings and to descendants, but never propagates back up.
type cursor struct {
	article *Article
	index   int
	out     []*Sentence
}

func (c *cursor) walk(nodes []*doctree.Node, section, subsection string) {
	for _, n := range nodes {
		switch n.Kind {
		case "p":
			annotated := encodeParagraph(n.Children)
			sentences := c.article.split.Split(annotated)
			for i, raw := range sentences {
				c.out = append(c.out, newSentence(raw, i, len(sentences), c.index, section, subsection))
				c.index++
			}
		case "sec", "body", "abstract":
			c.walk(n.Children, section, subsection)
		case "title":
			// First-write-wins, two titles per path: the first title
			// captured becomes the section, the second the subsection,
			// and any deeper title is dropped.
			if section == DefaultSection {
				section = strings.TrimSpace(n.Text())
			} else if subsection == DefaultSubsection {
				subsection = strings.TrimSpace(n.Text())
			}
		case "fig", "table-wrap":
			// Floats contribute nothing to sentence extraction.
		default:
			c.walk(n.Children, section, subsection)
		}
	}
}

// encodeParagraph flattens a paragraph's children into one annotated
// string: plain text verbatim, cross-references as inline markers,
// embedded floats elided, anything else recursed into.
func encodeParagraph(nodes []*doctree.Node) string {
	var b strings.Builder
	encodeInto(&b, nodes)
	return b.String()
}

func encodeInto(b *strings.Builder, nodes []*doctree.Node) {
	for _, n := range nodes {
		switch n.Kind {
		case doctree.TextKind:
			b.WriteString(n.Data)
		case "xref":
			b.WriteString(EncodeMarker(n.Attr("ref-type"), n.Attr("rid"), n.Text()))
		case "fig", "table-wrap":
			// Elided entirely, nested text included.
		default:
			encodeInto(b, n.Children)
		}
	}
}
