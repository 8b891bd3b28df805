// Package article turns a parsed JATS/NXML (or HTML) article tree into
// metadata records and ordered, section-aware sentence records.
package article

import (
	"io"
	"strings"

	"github.com/jmertens/pmcminer/internal/doctree"
	"github.com/jmertens/pmcminer/internal/segment"
)

// Defaults returned by the metadata accessors when the document lacks
// the corresponding node. Accessors never fail; they degrade to these.
const (
	NoTitle     = "No Title Found"
	NoJournal   = "No Journal Name Found"
	NoDay       = "No Publication Day Found"
	NoMonth     = "No Publication Month Found"
	NoYear      = "No Publication Year Found"
	NoPMCID     = "No PMC ID Found"
	NoPubmedID  = "No Pubmed ID Found"
	NoVolume    = "No Volume Found"
	NoFirstPage = "No First Page Found"
	NoLastPage  = "No Last Page Found"
)

// Article wraps a fully parsed document tree. All accessors read the
// tree synchronously; nothing is mutated after construction.
type Article struct {
	root  *doctree.Node
	split segment.Splitter
}

// New wraps an already-parsed tree with the default sentence splitter.
func New(root *doctree.Node) *Article {
	return &Article{root: root, split: segment.UAX29{}}
}

// Parse reads a JATS/NXML article document.
func Parse(r io.Reader) (*Article, error) {
	root, err := doctree.ParseXML(r)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// ParseHTML reads an HTML rendering of an article.
func ParseHTML(r io.Reader) (*Article, error) {
	root, err := doctree.FromHTML(r)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// WithSplitter overrides the sentence splitter used by the walker.
func (a *Article) WithSplitter(s segment.Splitter) *Article {
	a.split = s
	return a
}

// Author is one article contributor.
type Author struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// Figure is one float figure: identity and caption only, not the image.
type Figure struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	Caption         string `json:"caption"`
	GraphicLocation string `json:"graphic_location,omitempty"`
}

// Table is one float table: identity and caption only, not the cells.
type Table struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Caption string `json:"caption"`
}

// Reference is one entry of the article's reference list.
type Reference struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PublicationDate is the article's publication date, field by field.
// Fields keep their accessor defaults when absent.
type PublicationDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Title returns the article title.
func (a *Article) Title() string {
	if tg := doctree.First(a.root, "title-group"); tg != nil {
		if t := doctree.First(tg, "article-title"); t != nil {
			return strings.TrimSpace(t.Text())
		}
	}
	return NoTitle
}

// Journal returns the journal name.
func (a *Article) Journal() string {
	return a.firstText("journal-title", NoJournal)
}

// Volume returns the journal volume.
func (a *Article) Volume() string {
	return a.firstText("volume", NoVolume)
}

// FirstPage returns the article's first page number in the journal.
func (a *Article) FirstPage() string {
	return a.firstText("fpage", NoFirstPage)
}

// LastPage returns the article's last page number in the journal.
func (a *Article) LastPage() string {
	return a.firstText("lpage", NoLastPage)
}

// PMCID returns the PubMed Central id.
func (a *Article) PMCID() string {
	return a.articleID("pmc", NoPMCID)
}

// PubmedID returns the PubMed id.
func (a *Article) PubmedID() string {
	return a.articleID("pmid", NoPubmedID)
}

// AbstractText returns the abstract as flat text, all structure ignored.
func (a *Article) AbstractText() string {
	if n := doctree.First(a.root, "abstract"); n != nil {
		return strings.TrimSpace(n.Text())
	}
	return ""
}

// FullTextText returns the body as flat text. No distinction is made
// between headings, paragraphs, figures or tables.
func (a *Article) FullTextText() string {
	if n := doctree.First(a.root, "body"); n != nil {
		return strings.TrimSpace(n.Text())
	}
	return ""
}

// PublicationDate returns the first publication date in the document.
func (a *Article) PublicationDate() PublicationDate {
	date := PublicationDate{Day: NoDay, Month: NoMonth, Year: NoYear}
	for _, pd := range doctree.All(a.root, "pub-date") {
		if date.Day == NoDay {
			if ns := pd.ChildrenNamed("day"); len(ns) > 0 {
				date.Day = strings.TrimSpace(ns[0].Text())
			}
		}
		if date.Month == NoMonth {
			if ns := pd.ChildrenNamed("month"); len(ns) > 0 {
				date.Month = strings.TrimSpace(ns[0].Text())
			}
		}
		if date.Year == NoYear {
			if ns := pd.ChildrenNamed("year"); len(ns) > 0 {
				date.Year = strings.TrimSpace(ns[0].Text())
			}
		}
	}
	return date
}

// Authors returns the article contributors marked as authors. Names and
// emails come from direct child-name matching; absent parts stay empty.
func (a *Article) Authors() []Author {
	var authors []Author
	for _, cg := range doctree.All(a.root, "contrib-group") {
		for _, contrib := range cg.ChildrenNamed("contrib") {
			if contrib.Attr("contrib-type") != "author" {
				continue
			}
			var author Author
			for _, child := range contrib.Children {
				switch child.Kind {
				case "name":
					for _, part := range child.Children {
						switch part.Kind {
						case "given-names":
							author.FirstName = strings.TrimSpace(part.Text())
						case "surname":
							author.LastName = strings.TrimSpace(part.Text())
						}
					}
				case "email":
					author.Email = strings.TrimSpace(child.Text())
				}
			}
			authors = append(authors, author)
		}
	}
	return authors
}

// Figures enumerates every figure in the document, inline or float.
func (a *Article) Figures() []Figure {
	var figures []Figure
	for _, fig := range doctree.All(a.root, "fig") {
		f := Figure{ID: fig.Attr("id")}
		if n := doctree.First(fig, "label"); n != nil {
			f.Label = strings.TrimSpace(n.Text())
		}
		if n := doctree.First(fig, "caption"); n != nil {
			f.Caption = strings.TrimSpace(n.Text())
		}
		if n := doctree.First(fig, "graphic"); n != nil {
			f.GraphicLocation = n.Attr("href")
		}
		figures = append(figures, f)
	}
	return figures
}

// Tables enumerates every table wrapper in the document. Cell content
// is not captured.
func (a *Article) Tables() []Table {
	var tables []Table
	for _, wrap := range doctree.All(a.root, "table-wrap") {
		t := Table{ID: wrap.Attr("id")}
		if n := doctree.First(wrap, "label"); n != nil {
			t.Label = strings.TrimSpace(n.Text())
		}
		if n := doctree.First(wrap, "caption"); n != nil {
			t.Caption = strings.TrimSpace(n.Text())
		}
		tables = append(tables, t)
	}
	return tables
}

// References returns the entries of the article's reference list.
func (a *Article) References() []Reference {
	var refs []Reference
	for _, list := range doctree.All(a.root, "ref-list") {
		for _, ref := range list.ChildrenNamed("ref") {
			refs = append(refs, Reference{
				ID:   ref.Attr("id"),
				Text: strings.TrimSpace(ref.Text()),
			})
		}
	}
	return refs
}

func (a *Article) firstText(kind, fallback string) string {
	if n := doctree.First(a.root, kind); n != nil {
		return strings.TrimSpace(n.Text())
	}
	return fallback
}

func (a *Article) articleID(idType, fallback string) string {
	for _, n := range doctree.All(a.root, "article-id") {
		if n.Attr("pub-id-type") == idType {
			return strings.TrimSpace(n.Text())
		}
	}
	return fallback
}
