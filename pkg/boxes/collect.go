package boxes

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"boxtree/pkg/counters"
	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// collect appends the content of el to out in document order: generated
// ::before content, element and text children, then ::after content.
// Inline elements are flattened into fragments of their own, so the
// content of an inline element sits directly in the list of its nearest
// block ancestor. blockParent is nil while collecting an inline element.
func (b *Builder) collect(ctx context.Context, blockParent *BlockBox, el *html.Node, style *css.Style, out *[]Styleable, info *childBoxInfo, inline bool) error {
	b.counters.Push()
	defer b.counters.Pop()

	var items []Styleable
	b.insertGeneratedContent(el, style, "before", &items, info)

	children := el.Children
	for i := 0; i < len(children); i++ {
		if err := checkContext(ctx); err != nil {
			return err
		}
		child := children[i]

		if child.IsCharacterData() {
			// adjacent character data reads as one run of text
			var sb strings.Builder
			sb.WriteString(child.Text)
			for i+1 < len(children) && children[i+1].IsCharacterData() {
				i++
				sb.WriteString(children[i].Text)
			}
			items = append(items, b.newTextFragment(sb.String(), el, style, child))
			continue
		}
		if !child.IsElement() {
			continue
		}

		cs := b.styles.Style(child)
		if cs == nil || cs.GetDisplay() == css.DisplayNone {
			continue
		}
		b.counters.Apply(cs)

		switch display := cs.GetDisplay(); {
		case display == css.DisplayTableColumn || display == css.DisplayTableColumnGroup:
			if blockParent == nil || b.table == nil {
				b.log.Debug("table column outside a table", zap.String("element", child.Describe()))
				continue
			}
			if err := b.addColumnOrColumnGroup(ctx, b.table, child, cs); err != nil {
				return err
			}
		case cs.IsInline():
			if err := b.collect(ctx, nil, child, cs, &items, info, true); err != nil {
				return err
			}
		default:
			box, err := b.createChildBlockBox(ctx, child, cs, info)
			if err != nil {
				return err
			}
			items = append(items, box)
		}
	}

	b.insertGeneratedContent(el, style, "after", &items, info)

	if inline {
		items = markInlineBoundaries(items, el, style)
	}
	*out = append(*out, items...)
	return nil
}

// newTextFragment wraps text of el. Text of an inline element belongs to
// that element; text of any other box gets an anonymous inline.
func (b *Builder) newTextFragment(text string, el *html.Node, style *css.Style, node *html.Node) *InlineFragment {
	f := &InlineFragment{TextNode: node}
	if style.IsInline() && !el.IsTopLevel() {
		f.Style = style
		f.Element = el
	} else {
		f.Style = style.CreateAnonymousStyle(css.DisplayInline)
		f.StartsHere = true
		f.EndsHere = true
	}
	f.Text = b.transformText(text, f.Style.GetTextTransform())
	return f
}

// markInlineBoundaries flags the first and last fragment of inline element
// el. When its content starts or ends with something other than its own
// text, an empty fragment is added to carry the flag.
func markInlineBoundaries(items []Styleable, el *html.Node, style *css.Style) []Styleable {
	own := func(s Styleable) *InlineFragment {
		f, ok := s.(*InlineFragment)
		if ok && f.Element == el && f.Pseudo == "" {
			return f
		}
		return nil
	}
	if len(items) == 0 {
		return []Styleable{&InlineFragment{Style: style, Element: el, StartsHere: true, EndsHere: true}}
	}
	if f := own(items[0]); f != nil {
		f.StartsHere = true
	} else {
		items = append([]Styleable{&InlineFragment{Style: style, Element: el, StartsHere: true}}, items...)
	}
	if f := own(items[len(items)-1]); f != nil {
		f.EndsHere = true
	} else {
		items = append(items, &InlineFragment{Style: style, Element: el, EndsHere: true})
	}
	return items
}

func (b *Builder) createChildBlockBox(ctx context.Context, el *html.Node, style *css.Style, info *childBoxInfo) (*BlockBox, error) {
	box := b.newBlockBox(style, info, false)
	box.Element = el
	if box.IsListItem() {
		box.ListCounter = b.counters.Value(counters.ListItem)
	}
	if err := b.CreateChildren(ctx, box); err != nil {
		return nil, err
	}
	if box.Kind == KindTable {
		var err error
		if box, err = b.reorderTableContent(ctx, box); err != nil {
			return nil, err
		}
	}
	if !style.IsLaidOutInInlineContext() {
		info.containsBlockLevelContent = true
	}
	if name, ok := style.RunningName(); ok {
		b.running.Add(name, box)
		b.log.Debug("running element", zap.String("name", name), zap.String("element", el.Describe()))
	}
	return box, nil
}

// addColumnOrColumnGroup registers a column, or the columns of a column
// group, on table. A group without column children counts as one column.
func (b *Builder) addColumnOrColumnGroup(ctx context.Context, table *BlockBox, el *html.Node, style *css.Style) error {
	if style.GetDisplay() == css.DisplayTableColumn {
		table.Columns = append(table.Columns, newTableColumn(el, style, nil))
		return nil
	}
	group := newTableColumn(el, style, nil)
	found := false
	for _, child := range el.Children {
		if err := checkContext(ctx); err != nil {
			return err
		}
		if !child.IsElement() {
			continue
		}
		cs := b.styles.Style(child)
		if cs != nil && cs.GetDisplay() == css.DisplayTableColumn {
			found = true
			table.Columns = append(table.Columns, newTableColumn(child, cs, group))
		}
	}
	if !found {
		table.Columns = append(table.Columns, group)
	}
	return nil
}

func newTableColumn(el *html.Node, style *css.Style, group *TableColumn) *TableColumn {
	span := 1
	if v, ok := el.GetAttribute("span"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			span = n
		}
	}
	return &TableColumn{Element: el, Style: style, Span: span, Group: group}
}

// isNestingTableContent reports the displays whose children are table
// structure rather than flow content.
func isNestingTableContent(d css.DisplayType) bool {
	switch d {
	case css.DisplayTable, css.DisplayInlineTable, css.DisplayTableRow:
		return true
	}
	return d.IsTableSection()
}
