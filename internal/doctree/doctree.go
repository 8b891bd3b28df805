package doctree

import "strings"

// TextKind is the node kind used for character data.
const TextKind = "#text"

// Attr is a single name/value attribute on an element node.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of a parsed document tree. Element nodes carry a kind
// name, attributes and children; character data lives in TextKind nodes
// with the text in Data.
type Node struct {
	Kind     string
	Data     string
	Attrs    []Attr
	Children []*Node
}

// Attr returns the value of the named attribute, or "" when absent. A
// bare name also matches its prefixed form (e.g. "href" matches
// "xlink:href").
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name || strings.HasSuffix(a.Name, ":"+name) {
			return a.Value
		}
	}
	return ""
}

// Text returns the concatenated character data of this node and all of
// its descendants, in document order.
func (n *Node) Text() string {
	var b strings.Builder
	var collect func(*Node)
	collect = func(n *Node) {
		if n.Kind == TextKind {
			b.WriteString(n.Data)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

// ChildrenNamed returns the direct children with the given kind.
func (n *Node) ChildrenNamed(kind string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first node of the given kind in a depth-first walk
// of n (including n itself), or nil.
func First(n *Node, kind string) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == kind {
		return n
	}
	for _, c := range n.Children {
		if found := First(c, kind); found != nil {
			return found
		}
	}
	return nil
}

// All returns every node of the given kind in document order.
func All(n *Node, kind string) []*Node {
	var out []*Node
	if n == nil {
		return out
	}
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == kind {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}
