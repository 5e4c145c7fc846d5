package boxes

import (
	"context"

	"go.uber.org/zap"

	"boxtree/pkg/css"
)

// reorderTableContent puts a table's sections in rendering order: the first
// header group, the bodies in source order, then the first footer group.
// Further header and footer groups are plain bodies. When the table has
// captions, it returns an anonymous block holding the top captions, the
// table and the bottom captions; a floated table moves its float to that
// wrapper.
func (b *Builder) reorderTableContent(ctx context.Context, table *BlockBox) (*BlockBox, error) {
	var (
		topCaptions, bottomCaptions, bodies []*BlockBox
		header, footer                      *BlockBox
	)
	for _, child := range table.Children {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		switch display := child.Style.GetDisplay(); {
		case display == css.DisplayTableCaption:
			if child.Style.GetCaptionSide() == css.CaptionBottom {
				bottomCaptions = append(bottomCaptions, child)
			} else {
				topCaptions = append(topCaptions, child)
			}
		case display == css.DisplayTableHeaderGroup && header == nil:
			header = child
		case display == css.DisplayTableFooterGroup && footer == nil:
			footer = child
		default:
			if child.Kind == KindTableSection {
				child.Section = SectionBody
			}
			bodies = append(bodies, child)
		}
	}

	children := make([]*BlockBox, 0, len(bodies)+2)
	if header != nil {
		header.Section = SectionHeader
		children = append(children, header)
	}
	children = append(children, bodies...)
	if footer != nil {
		footer.Section = SectionFooter
		children = append(children, footer)
	}
	table.Children = children
	if len(children) == 0 {
		table.ContentType = ContentEmpty
	}
	if len(topCaptions) == 0 && len(bottomCaptions) == 0 {
		return table, nil
	}

	// the wrapper of an inline table stays inline-level
	display := css.DisplayBlock
	if table.Style.GetDisplay() == css.DisplayInlineTable {
		display = css.DisplayInlineBlock
	}
	var style *css.Style
	floated := table.Style.IsFloated()
	if floated {
		style = table.Style.Derive(map[string]string{
			"display": string(css.DisplayBlock),
			"float":   string(table.Style.GetFloat()),
		})
	} else {
		style = table.Style.CreateAnonymousStyle(display)
	}
	wrapper := &BlockBox{
		Kind:               KindBlock,
		Style:              style,
		Element:            table.Element,
		Anonymous:          true,
		FromCaptionedTable: true,
		ContentType:        ContentBlock,
	}
	if display == css.DisplayInlineBlock {
		table.Style = table.Style.With(map[string]string{"display": string(css.DisplayTable)})
	}
	wrapper.Children = append(wrapper.Children, topCaptions...)
	wrapper.AddChild(table)
	wrapper.Children = append(wrapper.Children, bottomCaptions...)

	if floated {
		wrapper.Floated = &FloatedBoxData{Side: table.Style.GetFloat()}
		table.Floated = nil
		table.Style = table.Style.With(map[string]string{"float": string(css.FloatNone)})
		b.log.Debug("float moved to caption wrapper", zap.String("element", table.Element.Describe()))
	}
	return wrapper, nil
}
