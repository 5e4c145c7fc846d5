// Package js runs document scripts on goja and exposes the functions they
// define to generated content, so that content: chapter-title() calls the
// script function chapterTitle.
package js

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"boxtree/pkg/boxes"
	"boxtree/pkg/css"
	"boxtree/pkg/html"
)

// ErrInterrupted is returned when a script is stopped by its context.
var ErrInterrupted = errors.New("script interrupted")

// Engine executes JavaScript against an HTML document's DOM. An Engine
// wraps a single goja runtime and must only be used from one goroutine.
type Engine struct {
	vm  *goja.Runtime
	log *zap.Logger
	dom *domContext

	// globals of a runtime no script has touched; content cannot call them
	builtins *goja.Object
}

type Option func(*Engine)

// WithLogger routes console output and script errors to log.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log.Named("js") }
}

// New creates a new JS engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	e := &Engine{
		vm:       goja.New(),
		log:      zap.NewNop(),
		builtins: goja.New().GlobalObject(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dom = newDOMContext(e.vm)

	c := &consoleAPI{log: e.log}
	c.register(e.vm)
	return e
}

// Execute binds document to doc and runs its scripts in document order.
// A failing script does not stop the ones after it; all errors are
// returned together. Cancelling ctx interrupts the running script.
func (e *Engine) Execute(ctx context.Context, doc *html.Document) error {
	e.dom.registerDocument(doc)

	var errs error
	for i, script := range doc.Scripts {
		err := e.Run(ctx, fmt.Sprintf("script %d", i), script)
		if errors.Is(err, ErrInterrupted) {
			return multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Run executes one script.
func (e *Engine) Run(ctx context.Context, name, src string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", name, ErrInterrupted, err)
	}
	e.vm.ClearInterrupt()
	stop := context.AfterFunc(ctx, func() { e.vm.Interrupt(ctx.Err()) })
	defer stop()

	_, err := e.vm.RunScript(name, src)
	if err == nil {
		return nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%s: %w: %v", name, ErrInterrupted, interrupted.Value())
	}
	e.log.Warn("script failed", zap.String("script", name), zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// Lookup makes the engine a boxes.FunctionFactory: a content function
// named foo-bar resolves to the global script function fooBar. Functions
// of the JavaScript runtime itself are not reachable.
func (e *Engine) Lookup(fn *css.Function) boxes.ContentFunction {
	name := kebabToCamel(fn.Name)
	if e.builtins.Get(name) != nil {
		return nil
	}
	v := e.vm.Get(name)
	if v == nil {
		return nil
	}
	call, ok := goja.AssertFunction(v)
	if !ok {
		return nil
	}
	return &scriptFunction{engine: e, name: name, call: call}
}
