package html

import (
	"fmt"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Parse builds a Document from HTML source. Missing <html>, <head> and
// <body> elements are synthesized as an HTML5 parser would.
func Parse(src string) (*Document, error) {
	return parse(strings.NewReader(src))
}

// ParseReader is Parse for an input stream. contentType is the declared
// content type (it may be empty) and is used to pick the character decoder.
func ParseReader(r io.Reader, contentType string) (*Document, error) {
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("unable to detect input encoding: %w", err)
	}
	return parse(decoded)
}

func parse(r io.Reader) (*Document, error) {
	root, err := nethtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := NewDocument()
	b := &treeBuilder{doc: doc}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		b.convert(c, doc.Root)
	}
	return doc, nil
}

type treeBuilder struct {
	doc *Document
}

// convert copies src into parent. <style> and <script> contents are moved
// into the document's Stylesheets and Scripts and kept out of the tree.
func (b *treeBuilder) convert(src *nethtml.Node, parent *Node) {
	switch src.Type {
	case nethtml.TextNode:
		if src.Data == "" {
			return
		}
		typ := TextNode
		if src.Parent != nil && src.Parent.Namespace != "" {
			typ = CDATANode
		}
		parent.AddChild(&Node{Type: typ, Text: src.Data})
	case nethtml.ElementNode:
		switch src.Data {
		case "style":
			b.doc.Stylesheets = append(b.doc.Stylesheets, textOf(src))
			return
		case "script":
			if isJavaScript(src) {
				b.doc.Scripts = append(b.doc.Scripts, textOf(src))
			}
			return
		}
		node := &Node{
			Type:     ElementNode,
			TagName:  src.Data,
			Children: make([]*Node, 0),
		}
		if len(src.Attr) > 0 {
			node.Attributes = make(map[string]string, len(src.Attr))
			for _, a := range src.Attr {
				node.Attributes[a.Key] = a.Val
			}
		}
		parent.AddChild(node)
		for c := src.FirstChild; c != nil; c = c.NextSibling {
			b.convert(c, node)
		}
	}
	// comments, doctypes and raw nodes carry no content for box construction
}

func textOf(n *nethtml.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func isJavaScript(n *nethtml.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "type" {
			t := strings.ToLower(strings.TrimSpace(a.Val))
			return t == "" || t == "text/javascript" || t == "application/javascript" || t == "module"
		}
	}
	return true
}
