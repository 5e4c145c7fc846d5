package boxes

import (
	"strings"

	"go.uber.org/zap"

	"boxtree/pkg/counters"
	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// contentMode selects which content items are meaningful.
type contentMode int

const (
	documentMode contentMode = iota
	marginBoxMode
)

// insertGeneratedContent appends the ::before or ::after content of el.
func (b *Builder) insertGeneratedContent(el *html.Node, style *css.Style, pseudo string, out *[]Styleable, info *childBoxInfo) {
	ps := b.styles.PseudoStyle(el, pseudo)
	if ps == nil {
		return
	}
	content := ps.GetContent()
	if content.IsNone() || content.IsNormal() {
		return
	}
	switch display := ps.GetDisplay(); {
	case display == css.DisplayNone:
		return
	case display == css.DisplayTableColumn || display == css.DisplayTableColumnGroup:
		return
	case display == css.DisplayTable || display == css.DisplayTableRow || display.IsTableSection():
		ps = style.CreateAnonymousStyle(css.DisplayBlock)
	}
	b.counters.Apply(ps)

	var items []Styleable
	childInfo := &childBoxInfo{}
	b.evaluateContent(contentRequest{
		element: el,
		pseudo:  pseudo,
		style:   ps,
		items:   content.Items,
		mode:    documentMode,
	}, &items, childInfo)
	*out = append(*out, b.wrapGeneratedContent(el, pseudo, ps, items, info)...)
}

// wrapGeneratedContent styles generated fragments. Inline pseudo-elements
// contribute the fragments directly; any other display gets a box holding
// them as inline content.
func (b *Builder) wrapGeneratedContent(el *html.Node, pseudo string, style *css.Style, items []Styleable, info *childBoxInfo) []Styleable {
	if style.IsInline() {
		var frags []*InlineFragment
		for _, item := range items {
			if f, ok := item.(*InlineFragment); ok {
				f.Style = style
				f.Text = b.transformText(f.Text, style.GetTextTransform())
				f.StartsHere, f.EndsHere = false, false
				frags = append(frags, f)
			}
		}
		// the fragments of one pseudo-element form a single inline box
		if len(frags) > 0 {
			frags[0].StartsHere = true
			frags[len(frags)-1].EndsHere = true
		}
		return items
	}

	anon := style.CreateAnonymousStyle(css.DisplayInline)
	for _, item := range items {
		if f, ok := item.(*InlineFragment); ok {
			f.Element = nil
			f.Style = anon
			f.Text = b.transformText(f.Text, anon.GetTextTransform())
		}
	}
	box := b.newBlockBox(style, info, true)
	box.Element = el
	box.Pseudo = pseudo
	if len(items) > 0 {
		box.setInlineContent(items)
	}
	if !style.IsLaidOutInInlineContext() {
		info.containsBlockLevelContent = true
	}
	return []Styleable{box}
}

type contentRequest struct {
	element *html.Node
	pseudo  string
	style   *css.Style
	items   []css.Value
	mode    contentMode
	page    int // margin boxes only
}

// evaluateContent turns content items into fragments, and in margin box
// mode into copies of running elements as well.
func (b *Builder) evaluateContent(req contentRequest, out *[]Styleable, info *childBoxInfo) {
	for _, v := range req.items {
		var (
			text    string
			ok      bool
			dynamic *DynamicContent
		)
		switch v.Kind {
		case css.StringValue:
			text, ok = v.Text, true
		case css.IdentValue:
			text, ok = b.quote(v.Text, req.style)
		case css.FunctionValue:
			fn := v.Func
			if fn.Malformed {
				b.log.Debug("malformed content function", zap.String("function", fn.Name))
				continue
			}
			if req.mode == marginBoxMode && fn.Name == "element" {
				if box := b.runningElement(fn, req.page); box != nil {
					*out = append(*out, box)
					info.containsBlockLevelContent = true
				}
				continue
			}
			text, ok, dynamic = b.evaluateFunction(req, fn)
		}
		if !ok {
			continue
		}
		*out = append(*out, &InlineFragment{
			Text:       text,
			Element:    req.element,
			Pseudo:     req.pseudo,
			StartsHere: true,
			EndsHere:   true,
			Dynamic:    dynamic,
		})
	}
}

// quote handles the quote keywords; other identifiers produce nothing.
// The nesting depth is shared by the whole document.
func (b *Builder) quote(keyword string, style *css.Style) (string, bool) {
	pairs, none := style.GetQuotes()
	switch strings.ToLower(keyword) {
	case "open-quote":
		q := quoteLevel(pairs, b.quoteDepth)
		b.quoteDepth++
		return q.Open, !none
	case "close-quote":
		if b.quoteDepth == 0 {
			return "", false
		}
		b.quoteDepth--
		return quoteLevel(pairs, b.quoteDepth).Close, !none
	case "no-open-quote":
		b.quoteDepth++
	case "no-close-quote":
		if b.quoteDepth > 0 {
			b.quoteDepth--
		}
	}
	return "", false
}

// quoteLevel picks the pair for depth; levels deeper than the list reuse
// the last pair.
func quoteLevel(pairs []css.QuotePair, depth int) css.QuotePair {
	if len(pairs) == 0 {
		return css.QuotePair{}
	}
	return pairs[min(depth, len(pairs)-1)]
}

// evaluateFunction evaluates attr(), counter() and counters() in document
// mode and everything else through the function factory.
// Calls with the wrong number or kind of arguments produce nothing.
func (b *Builder) evaluateFunction(req contentRequest, fn *css.Function) (string, bool, *DynamicContent) {
	if !validArguments(fn) {
		b.log.Debug("malformed content function", zap.String("function", fn.Name), zap.Int("args", len(fn.Args)))
		return "", false, nil
	}
	if req.mode == documentMode {
		switch fn.Name {
		case "attr":
			return attrValue(req.element, fn), true, nil
		case "counter":
			if !isPageCounter(fn) {
				return b.counter(fn), true, nil
			}
		case "counters":
			return b.nestedCounters(fn), true, nil
		}
	}

	cf := b.functions.Lookup(fn)
	if cf == nil {
		b.log.Debug("unknown content function", zap.String("function", fn.Name))
		return "", false, nil
	}
	if !cf.Static() {
		return cf.Placeholder(fn), true, &DynamicContent{Function: cf, Call: fn}
	}
	text, err := cf.Evaluate(b.evalContext(req), fn)
	if err != nil {
		b.log.Debug("content function failed", zap.String("function", fn.Name), zap.Error(err))
		return "", false, nil
	}
	return text, true, nil
}

func (b *Builder) evalContext(req contentRequest) EvalContext {
	return EvalContext{Element: req.element, Root: b.root, Page: req.page}
}

// validArguments checks the signatures of attr(name), counter(name[, style])
// and counters(name, separator[, style]). Other functions are checked by
// whoever evaluates them.
func validArguments(fn *css.Function) bool {
	args := fn.Args
	switch fn.Name {
	case "attr":
		return len(args) == 1 && args[0].Kind == css.IdentValue
	case "counter":
		return (len(args) == 1 || len(args) == 2) &&
			args[0].Kind == css.IdentValue &&
			(len(args) == 1 || args[1].Kind == css.IdentValue)
	case "counters":
		return (len(args) == 2 || len(args) == 3) &&
			args[0].Kind == css.IdentValue &&
			args[1].Kind == css.StringValue &&
			(len(args) == 2 || args[2].Kind == css.IdentValue)
	}
	return true
}

func attrValue(el *html.Node, fn *css.Function) string {
	if el == nil || len(fn.Args) == 0 {
		return ""
	}
	v, _ := el.GetAttribute(fn.Args[0].Text)
	return v
}

func isPageCounter(fn *css.Function) bool {
	if len(fn.Args) == 0 {
		return false
	}
	name := fn.Args[0].Text
	return name == "page" || name == "pages"
}

// counter evaluates counter(name[, style]).
func (b *Builder) counter(fn *css.Function) string {
	if len(fn.Args) == 0 {
		return ""
	}
	style := "decimal"
	if len(fn.Args) > 1 {
		style = fn.Args[1].Text
	}
	return counters.Format(b.counters.Value(fn.Args[0].Text), style)
}

// nestedCounters evaluates counters(name, separator[, style]).
func (b *Builder) nestedCounters(fn *css.Function) string {
	style := "decimal"
	if len(fn.Args) > 2 {
		style = fn.Args[2].Text
	}
	values := b.counters.Values(fn.Args[0].Text)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = counters.Format(v, style)
	}
	return strings.Join(parts, fn.Args[1].Text)
}
