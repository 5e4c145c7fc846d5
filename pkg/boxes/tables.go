package boxes

import (
	"context"

	"boxtree/pkg/css"
)

// nextTableNestingLevel is the display a child of d must have, or "" when
// d does not constrain its children.
func nextTableNestingLevel(d css.DisplayType) css.DisplayType {
	switch {
	case d == css.DisplayTable || d == css.DisplayInlineTable:
		return css.DisplayTableRowGroup
	case d.IsTableSection():
		return css.DisplayTableRow
	case d == css.DisplayTableRow:
		return css.DisplayTableCell
	}
	return ""
}

// previousTableNestingLevel is the display of the box that must wrap a box
// of display d.
func previousTableNestingLevel(d css.DisplayType) css.DisplayType {
	switch {
	case d == css.DisplayTableCell:
		return css.DisplayTableRow
	case d == css.DisplayTableRow:
		return css.DisplayTableRowGroup
	case d.IsTableSection() || d == css.DisplayTableCaption:
		return css.DisplayTable
	}
	return ""
}

// isProperTableNesting reports whether a child of display child may sit
// directly in a parent of display parent.
func isProperTableNesting(parent, child css.DisplayType) bool {
	switch {
	case parent == css.DisplayTable || parent == css.DisplayInlineTable:
		return child.IsTableSection() || child == css.DisplayTableCaption
	case parent.IsTableSection():
		return child == css.DisplayTableRow
	case parent == css.DisplayTableRow:
		return child == css.DisplayTableCell
	}
	return false
}

// matchesTableLevel reports whether a box of display d is grouped at
// level target. Captions group with row groups.
func matchesTableLevel(target, d css.DisplayType) bool {
	if target == css.DisplayTableRowGroup {
		return d.IsTableSection() || d == css.DisplayTableCaption
	}
	return target == d
}

func isAllProperTableNesting(parent css.DisplayType, children []Styleable) bool {
	for _, child := range children {
		if _, ok := child.(*BlockBox); !ok {
			return false
		}
		if !isProperTableNesting(parent, child.GetStyle().GetDisplay()) {
			return false
		}
	}
	return true
}

// containsOrphanedTableContent reports rows, sections or captions that
// ended up in an anonymous cell.
func containsOrphanedTableContent(children []Styleable) bool {
	for _, child := range children {
		d := child.GetStyle().GetDisplay()
		if d == css.DisplayTableRow || d.IsTableSection() || d == css.DisplayTableCaption {
			return true
		}
	}
	return false
}

func lookForBlockContent(children []Styleable) *childBoxInfo {
	info := &childBoxInfo{}
	for _, child := range children {
		if !child.GetStyle().IsLaidOutInInlineContext() {
			info.containsBlockLevelContent = true
			break
		}
	}
	return info
}

// resolveTableContent attaches the children of a table, section or row,
// wrapping each run of children that cannot sit there in an anonymous box
// of the required display.
func (b *Builder) resolveTableContent(ctx context.Context, parent *BlockBox, children []Styleable, info *childBoxInfo) error {
	display := parent.Style.GetDisplay()
	next := nextTableNestingLevel(display)

	if next == "" && parent.Anonymous && containsOrphanedTableContent(children) {
		return b.resolveChildTableContent(ctx, parent, children, info, css.DisplayTableCell)
	}
	if next == "" || isAllProperTableNesting(display, children) {
		if parent.Anonymous {
			rebalanceInlineContent(children)
		}
		return b.resolveChildren(ctx, parent, children, info)
	}

	var wrapped, pending []Styleable
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		box, err := b.createAnonymousTableContent(ctx, parent, parent.Style, next, pending)
		if err != nil {
			return err
		}
		wrapped = append(wrapped, box)
		pending = nil
		return nil
	}
	for _, child := range children {
		if err := checkContext(ctx); err != nil {
			return err
		}
		if _, ok := child.(*BlockBox); ok && isProperTableNesting(display, child.GetStyle().GetDisplay()) {
			if err := flush(); err != nil {
				return err
			}
			wrapped = append(wrapped, child)
			continue
		}
		pending = append(pending, child)
	}
	if err := flush(); err != nil {
		return err
	}
	info.containsBlockLevelContent = true
	return b.resolveChildren(ctx, parent, wrapped, info)
}

// resolveChildTableContent wraps table parts found outside a table. Runs
// of target boxes are wrapped in the level above, then the result is
// grouped again one level up until whole anonymous tables remain.
func (b *Builder) resolveChildTableContent(ctx context.Context, parent *BlockBox, children []Styleable, info *childBoxInfo, target css.DisplayType) error {
	nextUp := previousTableNestingLevel(target)

	var wrapped, pending []Styleable
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		source := pending[0].GetStyle().Parent()
		if source == nil {
			source = parent.Style
		}
		box, err := b.createAnonymousTableContent(ctx, parent, source, nextUp, pending)
		if err != nil {
			return err
		}
		wrapped = append(wrapped, box)
		pending = nil
		return nil
	}
	for _, child := range children {
		if err := checkContext(ctx); err != nil {
			return err
		}
		if _, ok := child.(*BlockBox); ok && matchesTableLevel(target, child.GetStyle().GetDisplay()) {
			pending = append(pending, child)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		wrapped = append(wrapped, child)
	}
	if err := flush(); err != nil {
		return err
	}

	if nextUp == css.DisplayTable {
		rebalanceInlineContent(wrapped)
		info.containsBlockLevelContent = true
		return b.resolveChildren(ctx, parent, wrapped, info)
	}
	return b.resolveChildTableContent(ctx, parent, wrapped, info, nextUp)
}

// createAnonymousTableContent builds an anonymous box of display next
// around children. source is the style the box inherits from; an anonymous
// table inside an inline becomes an inline table.
func (b *Builder) createAnonymousTableContent(ctx context.Context, parent *BlockBox, source *css.Style, next css.DisplayType, children []Styleable) (*BlockBox, error) {
	nested := lookForBlockContent(children)
	display := next
	if next == css.DisplayTable && source.IsInline() {
		display = css.DisplayInlineTable
	}
	style := source.CreateAnonymousStyle(display)
	box := b.newBlockBox(style, nested, false)
	box.Element = parent.Element
	box.Anonymous = true

	if err := b.resolveTableContent(ctx, box, children, nested); err != nil {
		return nil, err
	}
	if next == css.DisplayTable {
		return b.reorderTableContent(ctx, box)
	}
	return box, nil
}
