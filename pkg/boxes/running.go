package boxes

import (
	"slices"
	"strings"

	"boxtree/pkg/css"
)

// RunningPosition selects which running element of a name a page shows.
type RunningPosition string

const (
	RunningFirst       RunningPosition = "first"
	RunningStart       RunningPosition = "start"
	RunningLast        RunningPosition = "last"
	RunningFirstExcept RunningPosition = "first-except"
)

// ParseRunningPosition parses the second argument of element().
func ParseRunningPosition(s string) (RunningPosition, bool) {
	switch p := RunningPosition(strings.ToLower(strings.TrimSpace(s))); p {
	case RunningFirst, RunningStart, RunningLast, RunningFirstExcept:
		return p, true
	}
	return "", false
}

type runningEntry struct {
	box  *BlockBox
	page int
}

// RunningBlocks records the elements taken out of the flow with
// position: running(name), in document order. Every entry starts on page 1;
// layout moves it with Place once the element's static position is known.
type RunningBlocks struct {
	entries map[string][]*runningEntry
}

func NewRunningBlocks() *RunningBlocks {
	return &RunningBlocks{entries: make(map[string][]*runningEntry)}
}

func (r *RunningBlocks) Add(name string, box *BlockBox) {
	r.entries[name] = append(r.entries[name], &runningEntry{box: box, page: 1})
}

// Place records the page box was placed on. It reports false for a box
// that is not registered.
func (r *RunningBlocks) Place(box *BlockBox, page int) bool {
	for _, list := range r.entries {
		for _, e := range list {
			if e.box == box {
				e.page = page
				return true
			}
		}
	}
	return false
}

// Names returns the registered names, sorted.
func (r *RunningBlocks) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the running element of name a margin box on page shows:
//   - start: the last one placed before the page
//   - first: the first one on the page, else as start
//   - last: the last one placed on or before the page
//   - first-except: nothing when one is on the page, else as start
func (r *RunningBlocks) Lookup(name string, page int, pos RunningPosition) *BlockBox {
	list := r.entries[name]
	switch pos {
	case RunningFirst:
		for _, e := range list {
			if e.page == page {
				return e.box
			}
		}
	case RunningLast:
		var found *BlockBox
		for _, e := range list {
			if e.page > page {
				break
			}
			found = e.box
		}
		return found
	case RunningFirstExcept:
		for _, e := range list {
			if e.page == page {
				return nil
			}
		}
	}
	var found *BlockBox
	for _, e := range list {
		if e.page >= page {
			break
		}
		found = e.box
	}
	return found
}

// runningElement evaluates element(name[, position]) for a margin box. The
// result is a copy, so the same running element can appear on many pages.
func (b *Builder) runningElement(fn *css.Function, page int) *BlockBox {
	if len(fn.Args) == 0 || fn.Args[0].Kind != css.IdentValue {
		return nil
	}
	pos := RunningFirst
	if len(fn.Args) > 1 {
		p, ok := ParseRunningPosition(fn.Args[1].Text)
		if !ok {
			return nil
		}
		pos = p
	}
	box := b.running.Lookup(fn.Args[0].Text, page, pos)
	if box == nil {
		return nil
	}
	return box.Clone()
}
