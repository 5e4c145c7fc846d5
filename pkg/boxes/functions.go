package boxes

import (
	"errors"
	"strings"

	"go.uber.org/multierr"

	"boxtree/pkg/counters"
	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// EvalContext is what a content function may look at when it runs.
type EvalContext struct {
	Element   *html.Node // element whose content is being generated
	Root      *html.Node // document element, for id lookups
	Page      int        // current page, 0 while the page is not known
	PageCount int

	// PageOf returns the page an element was placed on. It is nil until
	// layout has paginated the document.
	PageOf func(*html.Node) int
}

// ContentFunction evaluates one functional content value.
type ContentFunction interface {
	// Static functions are evaluated while boxes are built. Others get a
	// placeholder that layout replaces.
	Static() bool
	Evaluate(ec EvalContext, fn *css.Function) (string, error)
	Placeholder(fn *css.Function) string
}

// FunctionFactory finds the ContentFunction for a call, or returns nil.
type FunctionFactory interface {
	Lookup(fn *css.Function) ContentFunction
}

type chain []FunctionFactory

func (c chain) Lookup(fn *css.Function) ContentFunction {
	for _, f := range c {
		if cf := f.Lookup(fn); cf != nil {
			return cf
		}
	}
	return nil
}

// ChainFactories consults factories in order. Nil entries are skipped.
func ChainFactories(factories ...FunctionFactory) FunctionFactory {
	var c chain
	for _, f := range factories {
		if f != nil {
			c = append(c, f)
		}
	}
	return c
}

// FactoryFunc adapts a function to a FunctionFactory.
type FactoryFunc func(fn *css.Function) ContentFunction

func (f FactoryFunc) Lookup(fn *css.Function) ContentFunction { return f(fn) }

// BuiltinFunctions knows counter(page), counter(pages), target-counter(),
// target-text() and leader().
func BuiltinFunctions() FunctionFactory {
	return FactoryFunc(func(fn *css.Function) ContentFunction {
		switch fn.Name {
		case "counter":
			if isPageCounter(fn) {
				return pageCounterFunction{}
			}
		case "target-counter":
			return targetCounterFunction{}
		case "target-text":
			return targetTextFunction{}
		case "leader":
			return leaderFunction{}
		}
		return nil
	})
}

// counterStyle returns the list style argument at index i.
func counterStyle(fn *css.Function, i int) string {
	if len(fn.Args) > i {
		return fn.Args[i].Text
	}
	return "decimal"
}

// pageCounterFunction is counter(page) and counter(pages).
type pageCounterFunction struct{}

func (pageCounterFunction) Static() bool { return false }

func (pageCounterFunction) Evaluate(ec EvalContext, fn *css.Function) (string, error) {
	v := ec.Page
	if fn.Args[0].Text == "pages" {
		v = ec.PageCount
	}
	return counters.Format(v, counterStyle(fn, 1)), nil
}

func (pageCounterFunction) Placeholder(*css.Function) string { return "999" }

var errNoTarget = errors.New("target element not found")

// target finds the element a target-*() function points at. The first
// argument is a url or an attr() naming a "#id" reference.
func target(ec EvalContext, fn *css.Function) (*html.Node, error) {
	if len(fn.Args) == 0 {
		return nil, errNoTarget
	}
	var ref string
	switch arg := fn.Args[0]; arg.Kind {
	case css.URLValue, css.StringValue:
		ref = arg.Text
	case css.FunctionValue:
		if arg.Func.Name == "attr" {
			ref = attrValue(ec.Element, arg.Func)
		}
	}
	id, ok := strings.CutPrefix(ref, "#")
	if !ok || id == "" || ec.Root == nil {
		return nil, errNoTarget
	}
	if n := findByID(ec.Root, id); n != nil {
		return n, nil
	}
	return nil, errNoTarget
}

func findByID(n *html.Node, id string) *html.Node {
	if n.IsElement() {
		if v, ok := n.GetAttribute("id"); ok && v == id {
			return n
		}
	}
	for _, c := range n.Children {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// targetCounterFunction is target-counter(<ref>, page[, style]). Only the
// page counter is supported; it needs pagination.
type targetCounterFunction struct{}

func (targetCounterFunction) Static() bool { return false }

func (targetCounterFunction) Evaluate(ec EvalContext, fn *css.Function) (string, error) {
	el, err := target(ec, fn)
	if err != nil {
		return "", err
	}
	if ec.PageOf == nil {
		return "", errors.New("target-counter: pages are not known yet")
	}
	return counters.Format(ec.PageOf(el), counterStyle(fn, 2)), nil
}

func (targetCounterFunction) Placeholder(*css.Function) string { return "999" }

// targetTextFunction is target-text(<ref>[, content]).
type targetTextFunction struct{}

func (targetTextFunction) Static() bool { return true }

func (targetTextFunction) Evaluate(ec EvalContext, fn *css.Function) (string, error) {
	el, err := target(ec, fn)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(el.TextContent()), " "), nil
}

func (targetTextFunction) Placeholder(*css.Function) string { return "" }

// leaderFunction is leader(dotted | solid | space | <string>). Layout
// repeats the pattern to fill the line.
type leaderFunction struct{}

func (leaderFunction) Static() bool { return false }

func (l leaderFunction) Evaluate(_ EvalContext, fn *css.Function) (string, error) {
	return l.Placeholder(fn), nil
}

func (leaderFunction) Placeholder(fn *css.Function) string {
	if len(fn.Args) == 0 {
		return "."
	}
	switch arg := fn.Args[0]; {
	case arg.Kind == css.StringValue:
		return arg.Text
	case arg.Text == "solid":
		return "_"
	case arg.Text == "space":
		return " "
	}
	return "."
}

// Reevaluate replaces the placeholder text of a dynamic fragment.
func (f *InlineFragment) Reevaluate(ec EvalContext) error {
	if f.Dynamic == nil {
		return nil
	}
	if ec.Element == nil {
		ec.Element = f.Element
	}
	text, err := f.Dynamic.Function.Evaluate(ec, f.Dynamic.Call)
	if err != nil {
		return err
	}
	f.Text = text
	return nil
}

// ResolveDynamic re-evaluates every dynamic fragment under box. Fragments
// whose function fails keep their placeholder; the errors are joined.
func ResolveDynamic(box *BlockBox, ec EvalContext) error {
	var err error
	box.Walk(func(b *BlockBox) bool {
		for _, f := range b.Fragments() {
			err = multierr.Append(err, f.Reevaluate(ec))
		}
		return true
	})
	return err
}
