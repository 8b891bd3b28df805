package doctree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParseXML builds a Node tree from an XML document such as a JATS/NXML
// article. Parsing is non-strict: undeclared entities fall back to the
// HTML entity table and mismatched markup does not abort the parse.
// Element kinds are the local tag names; namespace prefixes are kept on
// attribute names (e.g. "xlink:href").
func ParseXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	root := &Node{Kind: "#document"}
	stack := []*Node{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Kind: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == "xmlns" || a.Name.Space == "xmlns" {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: attrName(a.Name), Value: a.Value})
			}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			top := stack[len(stack)-1]
			top.Children = append(top.Children, &Node{Kind: TextKind, Data: string(t)})
		}
	}

	if len(root.Children) == 0 {
		return nil, fmt.Errorf("parse xml: no content")
	}
	return root, nil
}

// attrName keeps a readable prefix:local form for namespaced attributes.
// When the decoder has resolved the prefix to a namespace URI, only the
// local name is kept; Node.Attr matches either form.
func attrName(name xml.Name) string {
	if name.Space == "" || strings.ContainsAny(name.Space, "/.") {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
