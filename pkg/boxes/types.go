// Package boxes turns a styled document tree into the box tree consumed by
// layout: block boxes, table boxes, anonymous wrappers and inline fragments.
package boxes

import (
	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// Kind is the variant of a block-level box.
type Kind int

const (
	KindBlock Kind = iota
	KindTable
	KindTableSection
	KindTableRow
	KindTableCell
	KindAnonymousBlock
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindTable:
		return "table"
	case KindTableSection:
		return "section"
	case KindTableRow:
		return "row"
	case KindTableCell:
		return "cell"
	case KindAnonymousBlock:
		return "anon-block"
	}
	return "unknown"
}

// ContentType says what a block box holds. It is decided exactly once,
// when the box's children are resolved.
type ContentType int

const (
	ContentEmpty ContentType = iota
	ContentInline
	ContentBlock
)

func (c ContentType) String() string {
	switch c {
	case ContentInline:
		return "inline"
	case ContentBlock:
		return "block"
	}
	return "empty"
}

// SectionRole marks the repeated header and footer groups of a table.
type SectionRole int

const (
	SectionBody SectionRole = iota
	SectionHeader
	SectionFooter
)

// Styleable is an item of a content list: an *InlineFragment or a *BlockBox.
type Styleable interface {
	GetStyle() *css.Style
	GetElement() *html.Node
	styleable()
}

// InlineFragment is a piece of inline content. An inline element whose
// content is split by block boxes, table boxes or generated content owns
// several fragments; StartsHere and EndsHere mark the first and the last.
type InlineFragment struct {
	Text     string
	Style    *css.Style
	Element  *html.Node // nil for anonymous text
	TextNode *html.Node
	Pseudo   string // "before" or "after" for generated content

	StartsHere bool
	EndsHere   bool

	// RemovableWhitespace is set by whitespace stripping when the fragment
	// holds nothing but collapsible whitespace.
	RemovableWhitespace bool

	// Reopened fragments continue an inline element in an anonymous block
	// after a block box interrupted it.
	Reopened bool

	// Dynamic is set when Text is a placeholder for a function that can
	// only be evaluated during layout.
	Dynamic *DynamicContent
}

func (f *InlineFragment) GetStyle() *css.Style   { return f.Style }
func (f *InlineFragment) GetElement() *html.Node { return f.Element }
func (f *InlineFragment) styleable()             {}

// DynamicContent is a content function deferred to layout time.
type DynamicContent struct {
	Function ContentFunction
	Call     *css.Function
}

// TableColumn is a column or column group registered on a table.
type TableColumn struct {
	Element *html.Node
	Style   *css.Style
	Span    int
	Group   *TableColumn // enclosing column group, if any
}

// FloatedBoxData marks a floated box.
type FloatedBoxData struct {
	Side css.FloatType
}

// BlockBox is a block-level or atomic inline-level box.
type BlockBox struct {
	Kind      Kind
	Style     *css.Style
	Element   *html.Node
	Pseudo    string
	Anonymous bool

	ContentType ContentType
	Children    []*BlockBox // ContentBlock
	Inline      []Styleable // ContentInline

	Floated *FloatedBoxData

	// List items record the list-item counter at the time they were built.
	ListCounter int

	// Tables
	Columns        []*TableColumn
	MarginAreaRoot bool

	// Sections
	Section SectionRole

	// Rows of a margin area table get their height from the page.
	HeightOverride int

	// OpenInlines are the inline elements an anonymous block reopens.
	OpenInlines []*InlineFragment

	// FromCaptionedTable marks the anonymous wrapper holding a table and
	// its captions.
	FromCaptionedTable bool
}

func (b *BlockBox) GetStyle() *css.Style   { return b.Style }
func (b *BlockBox) GetElement() *html.Node { return b.Element }
func (b *BlockBox) styleable()             {}

// IsListItem reports whether the box was generated by a display: list-item
// element.
func (b *BlockBox) IsListItem() bool {
	return b.Style.GetDisplay() == css.DisplayListItem
}

// IsHeader reports a table's repeated header group.
func (b *BlockBox) IsHeader() bool { return b.Kind == KindTableSection && b.Section == SectionHeader }

// IsFooter reports a table's repeated footer group.
func (b *BlockBox) IsFooter() bool { return b.Kind == KindTableSection && b.Section == SectionFooter }

// AddChild appends a block child.
func (b *BlockBox) AddChild(child *BlockBox) {
	b.Children = append(b.Children, child)
}

func (b *BlockBox) setInlineContent(content []Styleable) {
	b.Inline = content
	b.ContentType = ContentInline
}

// Clone returns a deep copy of the box and its content.
func (b *BlockBox) Clone() *BlockBox {
	c := *b
	c.Children = make([]*BlockBox, len(b.Children))
	for i, child := range b.Children {
		c.Children[i] = child.Clone()
	}
	if b.Inline != nil {
		c.Inline = make([]Styleable, len(b.Inline))
		for i, item := range b.Inline {
			switch v := item.(type) {
			case *InlineFragment:
				f := *v
				c.Inline[i] = &f
			case *BlockBox:
				c.Inline[i] = v.Clone()
			}
		}
	}
	if b.OpenInlines != nil {
		c.OpenInlines = make([]*InlineFragment, len(b.OpenInlines))
		for i, f := range b.OpenInlines {
			cp := *f
			c.OpenInlines[i] = &cp
		}
	}
	c.Columns = append([]*TableColumn(nil), b.Columns...)
	if b.Floated != nil {
		fd := *b.Floated
		c.Floated = &fd
	}
	return &c
}

// Walk visits the box and its descendants depth first, including
// inline-level boxes in inline content. Returning false stops the descent
// into that box.
func (b *BlockBox) Walk(fn func(*BlockBox) bool) {
	if !fn(b) {
		return
	}
	for _, child := range b.Children {
		child.Walk(fn)
	}
	for _, item := range b.Inline {
		if child, ok := item.(*BlockBox); ok {
			child.Walk(fn)
		}
	}
}

// Fragments returns the inline fragments of the box's own inline content.
func (b *BlockBox) Fragments() []*InlineFragment {
	var frags []*InlineFragment
	for _, item := range b.Inline {
		if f, ok := item.(*InlineFragment); ok {
			frags = append(frags, f)
		}
	}
	return frags
}

// childBoxInfo accumulates facts about a content list while it is
// collected.
type childBoxInfo struct {
	containsBlockLevelContent bool
	containsTableContent      bool
	layoutRunningBlocks       bool
}
