package boxes

import (
	"context"

	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// resolveChildren decides the content type of owner and attaches children.
// Mixed content is split into anonymous blocks around the block-level
// children.
func (b *Builder) resolveChildren(ctx context.Context, owner *BlockBox, children []Styleable, info *childBoxInfo) error {
	if len(children) == 0 {
		owner.ContentType = ContentEmpty
		return nil
	}
	if info.containsBlockLevelContent {
		if err := b.insertAnonymousBlocks(ctx, owner, children, info.layoutRunningBlocks); err != nil {
			return err
		}
		owner.ContentType = ContentBlock
		if len(owner.Children) == 0 {
			owner.ContentType = ContentEmpty
		}
		return nil
	}
	children = stripInlineContent(children)
	if len(children) == 0 {
		owner.ContentType = ContentEmpty
		return nil
	}
	owner.setInlineContent(children)
	return nil
}

// isInlineLevel reports whether item belongs in an inline run. Running
// elements copied into margin boxes are laid out as blocks.
func isInlineLevel(item Styleable, layoutRunningBlocks bool) bool {
	s := item.GetStyle()
	return s.IsLaidOutInInlineContext() && !(layoutRunningBlocks && s.IsRunning())
}

// insertAnonymousBlocks wraps every run of inline-level children of parent
// in an anonymous block. Inline elements still open when a block child
// interrupts them are reopened at the start of the next anonymous block.
func (b *Builder) insertAnonymousBlocks(ctx context.Context, parent *BlockBox, children []Styleable, layoutRunningBlocks bool) error {
	var (
		run   []Styleable
		open  []*InlineFragment
		saved []*InlineFragment
	)
	for _, child := range children {
		if err := checkContext(ctx); err != nil {
			return err
		}
		if isInlineLevel(child, layoutRunningBlocks) {
			run = append(run, child)
			if f, ok := child.(*InlineFragment); ok {
				if f.StartsHere {
					open = append(open, f)
				}
				if f.EndsHere && len(open) > 0 {
					open = open[:len(open)-1]
				}
			}
			continue
		}
		if len(run) > 0 {
			createAnonymousBlock(parent, run, saved)
			run = nil
			saved = append([]*InlineFragment(nil), open...)
		}
		parent.AddChild(child.(*BlockBox))
	}
	createAnonymousBlock(parent, run, saved)
	return nil
}

// createAnonymousBlock adds an anonymous block holding run to parent,
// unless whitespace stripping leaves no text. reopen lists the inline
// elements the run continues; each gets an empty fragment at the start.
func createAnonymousBlock(parent *BlockBox, run []Styleable, reopen []*InlineFragment) {
	if len(run) == 0 {
		return
	}
	if len(reopen) > 0 {
		prefix := make([]Styleable, 0, len(reopen)+len(run))
		for _, f := range reopen {
			prefix = append(prefix, &InlineFragment{
				Style:    f.Style,
				Element:  f.Element,
				Pseudo:   f.Pseudo,
				Reopened: true,
			})
		}
		run = append(prefix, run...)
	}
	run = stripInlineContent(run)
	if emptyRun(run) {
		return
	}
	anon := &BlockBox{
		Kind:        KindAnonymousBlock,
		Style:       parent.Style.CreateAnonymousStyle(css.DisplayBlock),
		Element:     parent.Element,
		Anonymous:   true,
		OpenInlines: reopen,
	}
	anon.setInlineContent(run)
	parent.AddChild(anon)
}

// emptyRun reports a stripped run with no text left. Runs holding the first
// or last fragment of an element are kept so that the element still starts
// and ends once; the elements open across a dropped run are reopened by the
// next one.
func emptyRun(run []Styleable) bool {
	for _, item := range run {
		f, ok := item.(*InlineFragment)
		if !ok || f.Text != "" || f.Dynamic != nil || f.StartsHere || f.EndsHere {
			return false
		}
	}
	return true
}

type fragmentKey struct {
	element *html.Node
	pseudo  string
}

// rebalanceInlineContent re-marks the first and last fragment of every
// element in content after table wrapping moved some of its fragments
// elsewhere. Anonymous fragments are left alone.
func rebalanceInlineContent(content []Styleable) {
	seen := make(map[fragmentKey]bool)
	for _, item := range content {
		f, ok := item.(*InlineFragment)
		if !ok || f.Element == nil || f.Reopened {
			continue
		}
		key := fragmentKey{f.Element, f.Pseudo}
		f.StartsHere = !seen[key]
		seen[key] = true
	}
	clear(seen)
	for i := len(content) - 1; i >= 0; i-- {
		f, ok := content[i].(*InlineFragment)
		if !ok || f.Element == nil || f.Reopened {
			continue
		}
		key := fragmentKey{f.Element, f.Pseudo}
		f.EndsHere = !seen[key]
		seen[key] = true
	}
}
