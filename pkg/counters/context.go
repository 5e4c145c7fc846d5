// Package counters tracks CSS counter scopes during a document-order walk
// and formats counter values.
package counters

import "boxtree/pkg/css"

// ListItem is the counter list items increment implicitly.
const ListItem = "list-item"

// frame holds the counters instantiated by the children of one element.
type frame struct {
	values map[string]int
	order  []string
}

func (f *frame) set(name string, value int) {
	if _, ok := f.values[name]; !ok {
		f.order = append(f.order, name)
	}
	f.values[name] = value
}

// Context is a stack of counter scopes. The builder pushes a frame before
// visiting an element's children and pops it afterwards; an element's own
// counter-reset is applied to the frame of its parent, so the new counter
// is visible to its following siblings as well as its descendants.
type Context struct {
	frames []*frame
}

// NewContext returns a context with a root frame.
func NewContext() *Context {
	c := &Context{}
	c.Push()
	return c
}

func (c *Context) Push() {
	c.frames = append(c.frames, &frame{values: make(map[string]int)})
}

// Pop discards the innermost frame. The root frame is never removed.
func (c *Context) Pop() {
	if len(c.frames) > 1 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

// Depth is the number of frames, including the root.
func (c *Context) Depth() int { return len(c.frames) }

func (c *Context) top() *frame { return c.frames[len(c.frames)-1] }

// Reset instantiates name in the current scope.
func (c *Context) Reset(name string, value int) {
	c.top().set(name, value)
}

// Increment adds value to the innermost instance of name. A counter that is
// not in scope is created in the current scope as if reset to 0.
func (c *Context) Increment(name string, value int) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i].values[name]; ok {
			c.frames[i].values[name] = v + value
			return
		}
	}
	c.top().set(name, value)
}

// Apply performs the counter-reset and counter-increment of style, plus
// the implicit list-item increment of list items.
func (c *Context) Apply(style *css.Style) {
	if style == nil {
		return
	}
	for _, r := range style.GetCounterResets() {
		c.Reset(r.Name, r.Value)
	}
	incs := style.GetCounterIncrements()
	listItem := style.GetDisplay() == css.DisplayListItem
	for _, inc := range incs {
		if inc.Name == ListItem {
			listItem = false
		}
		c.Increment(inc.Name, inc.Value)
	}
	if listItem {
		c.Increment(ListItem, 1)
	}
}

// Value returns the innermost value of name, or 0 when it is not in scope.
func (c *Context) Value(name string) int {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i].values[name]; ok {
			return v
		}
	}
	return 0
}

// Values returns every instance of name in scope, outermost first. A
// counter not in scope yields a single 0.
func (c *Context) Values(name string) []int {
	var vals []int
	for _, f := range c.frames {
		if v, ok := f.values[name]; ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return []int{0}
	}
	return vals
}

// Names lists the counters in scope, outermost scope first.
func (c *Context) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range c.frames {
		for _, n := range f.order {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
