package html

import "strings"

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	// CDATANode holds character data from foreign (SVG/MathML) content.
	// Box construction treats it exactly like text.
	CDATANode
)

// documentTag names the synthetic node that owns the document element.
const documentTag = "document"

type Document struct {
	Root        *Node
	Stylesheets []string // CSS from <style> elements, in document order
	Scripts     []string // JavaScript from <script> elements, in document order
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  documentTag,
			Children: make([]*Node, 0),
		},
		Stylesheets: make([]string, 0),
		Scripts:     make([]string, 0),
	}
}

// DocumentElement returns the first element child of the document root
// (normally <html>), or nil for an empty document.
func (d *Document) DocumentElement() *Node {
	for _, c := range d.Root.Children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// Body returns the <body> element, or nil when there is none.
func (d *Document) Body() *Node {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	return root.FindFirst("body")
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// IsCharacterData reports whether n carries text (text or CDATA).
func (n *Node) IsCharacterData() bool {
	return n != nil && (n.Type == TextNode || n.Type == CDATANode)
}

// IsDocument reports whether n is the synthetic node owning the document
// element.
func (n *Node) IsDocument() bool {
	return n != nil && n.Parent == nil && n.Type == ElementNode && n.TagName == documentTag
}

// IsTopLevel reports whether n is the document element, i.e. its parent is
// the synthetic document node.
func (n *Node) IsTopLevel() bool {
	return n.Parent.IsDocument()
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child. Adjacent text
// nodes are not merged.
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(&Node{Type: TextNode, Text: text})
}

// FindFirst returns the first descendant element (depth-first, pre-order)
// with the given tag name, including n itself.
func (n *Node) FindFirst(tag string) *Node {
	if n.Type == ElementNode && n.TagName == tag {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindFirst(tag); found != nil {
			return found
		}
	}
	return nil
}

// TextContent returns the concatenated character data of n and its
// descendants.
func (n *Node) TextContent() string {
	if n.IsCharacterData() {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// PreviousElementSibling returns the closest preceding sibling element.
func (n *Node) PreviousElementSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	var prev *Node
	for _, c := range n.Parent.Children {
		if c == n {
			return prev
		}
		if c.Type == ElementNode {
			prev = c
		}
	}
	return nil
}

// Describe returns a short "tag#id.class" label used in dumps and logs.
func (n *Node) Describe() string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case TextNode, CDATANode:
		return "#text"
	}
	var sb strings.Builder
	sb.WriteString(n.TagName)
	if id, ok := n.GetAttribute("id"); ok && id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	}
	if class, ok := n.GetAttribute("class"); ok {
		for _, c := range strings.Fields(class) {
			sb.WriteByte('.')
			sb.WriteString(c)
		}
	}
	return sb.String()
}
