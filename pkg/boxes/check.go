package boxes

import (
	"fmt"
	"slices"
)

// properChildren lists the block kinds each table kind may hold.
var properChildren = map[Kind][]Kind{
	KindTable:        {KindTableSection},
	KindTableSection: {KindTableRow},
	KindTableRow:     {KindTableCell},
}

// Check validates the structural rules of a built tree:
//   - a box holds either block children or inline content, never both
//   - block children are not inline-level, except running elements
//   - tables hold sections, sections hold rows and rows hold cells
//   - a table has at most one header group, first, and one footer group,
//     last
//   - anonymous blocks hold inline content
//   - every inline element has exactly one first and one last fragment
//     among the inline content of a block and its anonymous blocks
func Check(box *BlockBox) error {
	return check(box, box.Element.Describe())
}

func check(box *BlockBox, path string) error {
	switch box.ContentType {
	case ContentEmpty:
		if len(box.Children) > 0 || len(box.Inline) > 0 {
			return fmt.Errorf("%s: empty box has content", path)
		}
	case ContentInline:
		if len(box.Children) > 0 {
			return fmt.Errorf("%s: inline content box has block children", path)
		}
	case ContentBlock:
		if len(box.Inline) > 0 {
			return fmt.Errorf("%s: block content box has inline content", path)
		}
	}
	if box.Kind == KindAnonymousBlock && box.ContentType != ContentInline {
		return fmt.Errorf("%s: anonymous block with %s content", path, box.ContentType)
	}

	if kinds, ok := properChildren[box.Kind]; ok {
		for _, child := range box.Children {
			if !slices.Contains(kinds, child.Kind) {
				return fmt.Errorf("%s: %s cannot hold %s", path, box.Kind, child.Kind)
			}
		}
	}
	if box.Kind == KindTable {
		if err := checkSectionOrder(box, path); err != nil {
			return err
		}
	}

	for _, child := range box.Children {
		if child.Style.IsLaidOutInInlineContext() && !child.Style.IsRunning() {
			return fmt.Errorf("%s: inline-level %s among block children", path, describe(child))
		}
	}
	for _, item := range box.Inline {
		if child, ok := item.(*BlockBox); ok && !child.Style.IsLaidOutInInlineContext() {
			return fmt.Errorf("%s: block-level %s in inline content", path, describe(child))
		}
	}

	// the runs of an anonymous block are counted by its parent
	if box.Kind != KindAnonymousBlock {
		if err := checkInlineRuns(box, path); err != nil {
			return err
		}
	}

	for i, child := range box.Children {
		if err := check(child, fmt.Sprintf("%s/%d:%s", path, i, describe(child))); err != nil {
			return err
		}
	}
	for i, item := range box.Inline {
		if child, ok := item.(*BlockBox); ok {
			if err := check(child, fmt.Sprintf("%s/%d:%s", path, i, describe(child))); err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(box *BlockBox) string {
	if el := box.Element.Describe(); el != "" {
		return box.Kind.String() + " " + el
	}
	return box.Kind.String()
}

func checkSectionOrder(table *BlockBox, path string) error {
	for i, s := range table.Children {
		if s.IsHeader() && i != 0 {
			return fmt.Errorf("%s: header group at position %d", path, i)
		}
		if s.IsFooter() && i != len(table.Children)-1 {
			return fmt.Errorf("%s: footer group at position %d", path, i)
		}
	}
	return nil
}

// checkInlineRuns counts first and last fragments per element across the
// inline content of box, or across its anonymous block children.
func checkInlineRuns(box *BlockBox, path string) error {
	var frags []*InlineFragment
	switch box.ContentType {
	case ContentInline:
		frags = box.Fragments()
	case ContentBlock:
		for _, child := range box.Children {
			if child.Kind == KindAnonymousBlock {
				frags = append(frags, child.Fragments()...)
			}
		}
	}
	starts := make(map[fragmentKey]int)
	ends := make(map[fragmentKey]int)
	var order []fragmentKey
	for _, f := range frags {
		if f.Element == nil {
			continue
		}
		key := fragmentKey{f.Element, f.Pseudo}
		if _, seen := starts[key]; !seen {
			order = append(order, key)
			starts[key] = 0
		}
		if f.StartsHere {
			starts[key]++
		}
		if f.EndsHere {
			ends[key]++
		}
	}
	for _, key := range order {
		if starts[key] != 1 || ends[key] != 1 {
			name := key.element.Describe()
			if key.pseudo != "" {
				name += "::" + key.pseudo
			}
			return fmt.Errorf("%s: inline %s starts %d times and ends %d times", path, name, starts[key], ends[key])
		}
	}
	return nil
}
