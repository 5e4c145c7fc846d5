package boxes

import (
	"context"

	"go.uber.org/zap"

	"boxtree/pkg/css"
)

// MarginDirection is the axis margin boxes are laid out along.
type MarginDirection int

const (
	// MarginHorizontal puts the boxes in one row (top and bottom edges).
	MarginHorizontal MarginDirection = iota
	// MarginVertical gives each box its own row (left and right edges).
	MarginVertical
)

// PageSide is one edge of the page.
type PageSide string

const (
	SideTop    PageSide = "top"
	SideBottom PageSide = "bottom"
	SideLeft   PageSide = "left"
	SideRight  PageSide = "right"
)

// MarginBoxNames returns the margin boxes along side and their direction.
func MarginBoxNames(side PageSide) ([]css.MarginBoxName, MarginDirection) {
	switch side {
	case SideBottom:
		return css.BottomMarginBoxes, MarginHorizontal
	case SideLeft:
		return css.LeftMarginBoxes, MarginVertical
	case SideRight:
		return css.RightMarginBoxes, MarginVertical
	}
	return css.TopMarginBoxes, MarginHorizontal
}

// MarginArea describes one edge of one page.
type MarginArea struct {
	Page      *css.PageInfo
	Number    int // 1-based page number, used by element()
	Names     []css.MarginBoxName
	Height    int // extent of the area along its direction
	Direction MarginDirection
}

// BuildMarginTable builds the anonymous table holding the margin boxes of
// area. It returns nil when the page declares none of the names or no box
// survives.
func (b *Builder) BuildMarginTable(ctx context.Context, area MarginArea) (*BlockBox, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if !area.Page.HasAny(area.Names) {
		return nil, nil
	}
	pageStyle := area.Page.Style

	table := &BlockBox{
		Kind: KindTable,
		Style: pageStyle.Derive(map[string]string{
			"display": string(css.DisplayTable),
			"width":   "100%",
		}),
		Element:        b.root,
		Anonymous:      true,
		MarginAreaRoot: true,
		ContentType:    ContentBlock,
	}
	section := &BlockBox{
		Kind:        KindTableSection,
		Style:       pageStyle.CreateAnonymousStyle(css.DisplayTableRowGroup),
		Element:     b.root,
		Anonymous:   true,
		ContentType: ContentBlock,
	}
	table.AddChild(section)

	newRow := func() *BlockBox {
		row := &BlockBox{
			Kind:           KindTableRow,
			Style:          pageStyle.CreateAnonymousStyle(css.DisplayTableRow),
			Element:        b.root,
			Anonymous:      true,
			ContentType:    ContentBlock,
			HeightOverride: area.Height,
		}
		section.AddChild(row)
		return row
	}

	var row *BlockBox
	if area.Direction == MarginHorizontal {
		row = newRow()
	}
	alwaysCreate := len(area.Names) > 1 && area.Direction == MarginHorizontal
	cells := 0
	for _, name := range area.Names {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		style := area.Page.MarginBoxStyle(name, alwaysCreate)
		if style == nil {
			continue
		}
		cell, err := b.createMarginBox(ctx, style, alwaysCreate, area.Number)
		if err != nil {
			return nil, err
		}
		if cell == nil {
			b.log.Debug("margin box omitted", zap.String("name", string(name)))
			continue
		}
		if area.Direction == MarginVertical {
			row = newRow()
		}
		row.AddChild(cell)
		cells++
	}
	if cells == 0 {
		return nil, nil
	}

	if area.Direction == MarginVertical {
		apportionRowHeights(section.Children, area.Height)
	}
	return table, nil
}

// apportionRowHeights splits height evenly; the remainder goes one unit at a
// time to the earliest rows.
func apportionRowHeights(rows []*BlockBox, height int) {
	each := height / len(rows)
	for _, r := range rows {
		r.HeightOverride = each
	}
	for i := 0; i < height-each*len(rows); i++ {
		rows[i].HeightOverride++
	}
}

// createMarginBox builds one margin box cell, or returns nil when the box
// is not generated.
func (b *Builder) createMarginBox(ctx context.Context, style *css.Style, alwaysCreate bool, page int) (*BlockBox, error) {
	switch style.GetDisplay() {
	case css.DisplayTableCell:
	case css.DisplayNone:
		if !alwaysCreate {
			return nil, nil
		}
		fallthrough
	default:
		style = style.With(map[string]string{"display": string(css.DisplayTableCell)})
	}
	content := style.GetContent()
	hasContent := !content.IsNone() && !content.IsNormal()
	if !hasContent && style.IsAutoWidth() && !alwaysCreate {
		return nil, nil
	}

	cell := &BlockBox{Kind: KindTableCell, Style: style, Element: b.root}
	if !hasContent {
		return cell, nil
	}

	info := &childBoxInfo{layoutRunningBlocks: true}
	var items []Styleable
	b.evaluateContent(contentRequest{
		element: b.root,
		style:   style,
		items:   content.Items,
		mode:    marginBoxMode,
		page:    page,
	}, &items, info)

	anon := style.CreateAnonymousStyle(css.DisplayInline)
	for _, item := range items {
		if f, ok := item.(*InlineFragment); ok {
			f.Element = nil
			f.Style = anon
			f.Text = b.transformText(f.Text, anon.GetTextTransform())
		}
	}
	items = stripAllWhitespace(items)
	if len(items) == 0 && style.IsAutoWidth() && !alwaysCreate {
		return nil, nil
	}
	if err := b.resolveChildTableContent(ctx, cell, items, info, css.DisplayTableCell); err != nil {
		return nil, err
	}
	return cell, nil
}
