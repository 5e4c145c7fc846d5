package js

import (
	"fmt"
	"strconv"

	"github.com/dop251/goja"

	"boxtree/pkg/boxes"
	"boxtree/pkg/css"
)

// scriptFunction calls a global script function for a content value. The
// element whose content is generated is `this`; the arguments are the CSS
// arguments, with attr() already resolved against that element.
type scriptFunction struct {
	engine *Engine
	name   string
	call   goja.Callable
}

func (f *scriptFunction) Static() bool { return true }

func (f *scriptFunction) Placeholder(*css.Function) string { return "" }

func (f *scriptFunction) Evaluate(ec boxes.EvalContext, fn *css.Function) (string, error) {
	this := goja.Undefined()
	if ec.Element != nil {
		this = f.engine.dom.elementProxy(ec.Element)
	}
	args := make([]goja.Value, 0, len(fn.Args))
	for _, a := range fn.Args {
		args = append(args, f.argument(ec, a))
	}

	res, err := f.call(this, args...)
	if err != nil {
		return "", fmt.Errorf("%s(): %w", f.name, err)
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return "", nil
	}
	return res.String(), nil
}

func (f *scriptFunction) argument(ec boxes.EvalContext, a css.Value) goja.Value {
	vm := f.engine.vm
	switch a.Kind {
	case css.NumberValue:
		if n, err := strconv.ParseFloat(a.Text, 64); err == nil {
			return vm.ToValue(n)
		}
		return vm.ToValue(a.Text)
	case css.FunctionValue:
		if a.Func.Name == "attr" && len(a.Func.Args) > 0 && ec.Element != nil {
			if v, ok := ec.Element.GetAttribute(a.Func.Args[0].Text); ok {
				return vm.ToValue(v)
			}
			return vm.ToValue("")
		}
		return goja.Undefined()
	}
	return vm.ToValue(a.Text)
}
