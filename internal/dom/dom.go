// Package dom wraps golang.org/x/net/html with the small set of tree
// operations the site runtime performs: attribute access, class checks,
// id lookup, and text-node surgery.
package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse builds a document tree from r.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseString builds a document tree from raw markup.
func ParseString(markup string) (*html.Node, error) {
	return html.Parse(strings.NewReader(markup))
}

// Render serialises the tree back to markup.
func Render(node *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Walk visits every element node in document order. Returning false from the
// visitor stops the walk.
func Walk(root *html.Node, visit func(*html.Node) bool) {
	if root == nil {
		return
	}
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if !visit(n) {
				return false
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if !rec(child) {
				return false
			}
		}
		return true
	}
	rec(root)
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, name, value string) {
	for i, attr := range n.Attr {
		if attr.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the named attribute when present.
func RemoveAttr(n *html.Node, name string) {
	for i, attr := range n.Attr {
		if attr.Key == name {
			n.Attr = append(n.Attr[:i:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the element's class list contains name.
func HasClass(n *html.Node, name string) bool {
	classes, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, class := range strings.Fields(classes) {
		if class == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the element's class list when missing.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	classes, _ := Attr(n, "class")
	if classes == "" {
		SetAttr(n, "class", name)
		return
	}
	SetAttr(n, "class", classes+" "+name)
}

// ByID finds the element with the given id attribute.
func ByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if val, ok := Attr(n, "id"); ok && val == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindElement returns the first element with the given tag name.
func FindElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// Text concatenates the direct text-node children of n.
func Text(n *html.Node) string {
	var buf strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			buf.WriteString(child.Data)
		}
	}
	return buf.String()
}

// DeepText concatenates every text node under n.
func DeepText(n *html.Node) string {
	var buf strings.Builder
	var rec func(*html.Node)
	rec = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			rec(child)
		}
	}
	rec(n)
	return buf.String()
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// AppendFragment parses markup and appends the resulting nodes as children of
// container. The fragment is parsed in the context of the container element.
func AppendFragment(container *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		container.AppendChild(node)
	}
	return nil
}

// TextNode builds a detached text node.
func TextNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
