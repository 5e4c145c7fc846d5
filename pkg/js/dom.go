package js

import (
	"strings"

	"github.com/dop251/goja"

	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// domContext holds the proxies handed to scripts. The same JS object is
// returned for the same *html.Node, so === works on elements.
type domContext struct {
	vm    *goja.Runtime
	cache map[*html.Node]goja.Value
}

func newDOMContext(vm *goja.Runtime) *domContext {
	return &domContext{vm: vm, cache: make(map[*html.Node]goja.Value)}
}

// registerDocument sets the global `document`. Scripts may read the tree
// and change attributes and text before boxes are built; structural
// changes are not offered.
func (ctx *domContext) registerDocument(doc *html.Document) {
	vm := ctx.vm
	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return ctx.proxyOrNull(getElementByID(doc.Root, call.Arguments[0].String()))
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(getElementsByTagName(doc.Root, strings.ToLower(call.Arguments[0].String())))
	})
	docObj.Set("querySelector", ctx.querySelectorFn(doc.Root, false))
	docObj.Set("querySelectorAll", ctx.querySelectorFn(doc.Root, true))
	docObj.Set("documentElement", ctx.proxyOrNull(doc.DocumentElement()))
	docObj.Set("body", ctx.proxyOrNull(doc.Body()))
	vm.Set("document", docObj)
}

func getElementByID(node *html.Node, id string) *html.Node {
	if v, ok := node.GetAttribute("id"); ok && v == id && node.IsElement() {
		return node
	}
	for _, child := range node.Children {
		if found := getElementByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func getElementsByTagName(node *html.Node, tag string) []*html.Node {
	var result []*html.Node
	walkElements(node, func(n *html.Node) bool {
		if n.TagName == tag {
			result = append(result, n)
		}
		return true
	})
	return result
}

// walkElements visits the element descendants of root in document order
// until fn returns false.
func walkElements(root *html.Node, fn func(*html.Node) bool) bool {
	for _, c := range root.Children {
		if !c.IsElement() {
			continue
		}
		if !fn(c) || !walkElements(c, fn) {
			return false
		}
	}
	return true
}

// parseSelectorGroup parses a comma separated selector list.
func (ctx *domContext) parseSelectorGroup(raw string) []css.Selector {
	var sels []css.Selector
	for _, part := range strings.Split(raw, ",") {
		sel, err := css.ParseSelector(part)
		if err != nil {
			panic(ctx.vm.NewTypeError("'%s' is not a valid selector: %v", raw, err))
		}
		sels = append(sels, sel)
	}
	return sels
}

func matchesAny(n *html.Node, sels []css.Selector) bool {
	for _, sel := range sels {
		if css.MatchesSelector(n, sel) {
			return true
		}
	}
	return false
}

// querySelectorFn implements querySelector, or querySelectorAll when all
// is set, over the descendants of root.
func (ctx *domContext) querySelectorFn(root *html.Node, all bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(ctx.vm.NewTypeError("Failed to execute 'querySelector': 1 argument required"))
		}
		sels := ctx.parseSelectorGroup(call.Arguments[0].String())
		var found []*html.Node
		walkElements(root, func(n *html.Node) bool {
			if matchesAny(n, sels) {
				found = append(found, n)
				return all
			}
			return true
		})
		if all {
			return ctx.elementArray(found)
		}
		if len(found) == 0 {
			return goja.Null()
		}
		return ctx.elementProxy(found[0])
	}
}

func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		vals[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(vals...)
}

func (ctx *domContext) proxyOrNull(node *html.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	return ctx.elementProxy(node)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject wrapping an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	return v
}

// elementAccessor implements goja.DynamicObject to intercept property access
// on DOM element proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "id", "className", "textContent",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "parentElement", "previousElementSibling", "childElementCount",
	"querySelector", "querySelectorAll", "matches", "closest",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	switch key {
	case "tagName", "nodeName":
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "id":
		id, _ := e.node.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := e.node.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.node.TextContent())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.node.GetAttribute(call.Arguments[0].String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := e.node.GetAttribute(call.Arguments[0].String())
			return vm.ToValue(ok)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				return goja.Undefined()
			}
			e.setAttribute(call.Arguments[0].String(), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 && e.node.Attributes != nil {
				delete(e.node.Attributes, strings.ToLower(call.Arguments[0].String()))
			}
			return goja.Undefined()
		})
	case "children":
		var elChildren []*html.Node
		for _, child := range e.node.Children {
			if child.IsElement() {
				elChildren = append(elChildren, child)
			}
		}
		return e.ctx.elementArray(elChildren)
	case "childElementCount":
		count := 0
		for _, c := range e.node.Children {
			if c.IsElement() {
				count++
			}
		}
		return vm.ToValue(count)
	case "parentElement":
		if p := e.node.Parent; p != nil && !p.IsDocument() {
			return e.ctx.elementProxy(p)
		}
		return goja.Null()
	case "previousElementSibling":
		return e.ctx.proxyOrNull(e.node.PreviousElementSibling())
	case "querySelector":
		return vm.ToValue(e.ctx.querySelectorFn(e.node, false))
	case "querySelectorAll":
		return vm.ToValue(e.ctx.querySelectorFn(e.node, true))
	case "matches":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			return vm.ToValue(matchesAny(e.node, e.ctx.parseSelectorGroup(call.Arguments[0].String())))
		})
	case "closest":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			sels := e.ctx.parseSelectorGroup(call.Arguments[0].String())
			for n := e.node; n != nil && !n.IsDocument(); n = n.Parent {
				if matchesAny(n, sels) {
					return e.ctx.elementProxy(n)
				}
			}
			return goja.Null()
		})
	}
	return goja.Undefined()
}

func (e *elementAccessor) setAttribute(name, val string) {
	if e.node.Attributes == nil {
		e.node.Attributes = make(map[string]string)
	}
	e.node.Attributes[strings.ToLower(name)] = val
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.Children = nil
		e.node.AppendText(val.String())
		return true
	case "className":
		e.setAttribute("class", val.String())
		return true
	case "id":
		e.setAttribute("id", val.String())
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

// kebabToCamel converts a CSS function name such as chapter-title to the
// JS identifier chapterTitle.
func kebabToCamel(s string) string {
	var sb strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = sb.Len() > 0
			continue
		}
		if upper {
			sb.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
