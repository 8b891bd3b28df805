package doctree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FromHTML builds an article-shaped Node tree from an HTML rendering of
// an article (e.g. an author manuscript saved as HTML). Headings h1..h6
// become nested sec/title containers, p/li/blockquote become paragraphs,
// tables become table-wrap nodes, figures and images become fig nodes,
// and same-document links become xref nodes, so the result walks the
// same way a parsed NXML tree does.
func FromHTML(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := &Node{Kind: "article"}
	if title := findTitle(doc); title != "" {
		root.Children = append(root.Children, &Node{
			Kind: "title-group",
			Children: []*Node{{
				Kind:     "article-title",
				Children: []*Node{{Kind: TextKind, Data: title}},
			}},
		})
	}

	bodyNode := &Node{Kind: "body"}
	root.Children = append(root.Children, bodyNode)

	type stackEntry struct {
		node  *Node
		level int
	}
	stack := []stackEntry{{node: bodyNode, level: 0}}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				sec := &Node{Kind: "sec"}
				sec.Children = append(sec.Children, &Node{
					Kind:     "title",
					Children: []*Node{{Kind: TextKind, Data: textContent(n)}},
				})
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, sec)
				stack = append(stack, stackEntry{node: sec, level: level})
				return
			}

			top := stack[len(stack)-1].node
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "blockquote":
				para := &Node{Kind: "p"}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					convertInline(c, para)
				}
				if len(para.Children) > 0 {
					top.Children = append(top.Children, para)
				}
				return
			case "table":
				top.Children = append(top.Children, tableWrap(n))
				return
			case "figure", "img":
				top.Children = append(top.Children, figure(n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return root, nil
}

// convertInline maps paragraph-level HTML content onto tree nodes: text
// stays text, same-document anchors become xref nodes, embedded floats
// become fig/table-wrap nodes, everything else is flattened.
func convertInline(n *html.Node, para *Node) {
	switch {
	case n.Type == html.TextNode:
		para.Children = append(para.Children, &Node{Kind: TextKind, Data: n.Data})
	case n.Type == html.ElementNode && n.Data == "a":
		href := htmlAttr(n, "href")
		if !strings.HasPrefix(href, "#") {
			para.Children = append(para.Children, &Node{Kind: TextKind, Data: textContent(n)})
			return
		}
		xref := &Node{
			Kind: "xref",
			Attrs: []Attr{
				{Name: "ref-type", Value: htmlAttr(n, "data-ref-type")},
				{Name: "rid", Value: strings.TrimPrefix(href, "#")},
			},
			Children: []*Node{{Kind: TextKind, Data: textContent(n)}},
		}
		para.Children = append(para.Children, xref)
	case n.Type == html.ElementNode && n.Data == "table":
		para.Children = append(para.Children, tableWrap(n))
	case n.Type == html.ElementNode && (n.Data == "figure" || n.Data == "img"):
		para.Children = append(para.Children, figure(n))
	case n.Type == html.ElementNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			convertInline(c, para)
		}
	}
}

func tableWrap(n *html.Node) *Node {
	wrap := &Node{Kind: "table-wrap"}
	if id := htmlAttr(n, "id"); id != "" {
		wrap.Attrs = append(wrap.Attrs, Attr{Name: "id", Value: id})
	}
	if cap := findElement(n, "caption"); cap != nil {
		wrap.Children = append(wrap.Children, &Node{
			Kind:     "caption",
			Children: []*Node{{Kind: TextKind, Data: textContent(cap)}},
		})
	}
	return wrap
}

func figure(n *html.Node) *Node {
	fig := &Node{Kind: "fig"}
	if id := htmlAttr(n, "id"); id != "" {
		fig.Attrs = append(fig.Attrs, Attr{Name: "id", Value: id})
	}
	img := n
	if n.Data != "img" {
		img = findElement(n, "img")
	}
	if img != nil {
		if src := htmlAttr(img, "src"); src != "" {
			fig.Children = append(fig.Children, &Node{
				Kind:  "graphic",
				Attrs: []Attr{{Name: "xlink:href", Value: src}},
			})
		}
	}
	if cap := findElement(n, "figcaption"); cap != nil {
		fig.Children = append(fig.Children, &Node{
			Kind:     "caption",
			Children: []*Node{{Kind: TextKind, Data: textContent(cap)}},
		})
	}
	return fig
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func htmlAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	return findElement(n, "body")
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
