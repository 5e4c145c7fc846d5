package js

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleAPI implements console.log, console.warn, and console.error on
// top of the engine's logger.
type consoleAPI struct {
	log *zap.Logger
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.logFn(zapcore.InfoLevel))
	console.Set("info", c.logFn(zapcore.InfoLevel))
	console.Set("debug", c.logFn(zapcore.DebugLevel))
	console.Set("warn", c.logFn(zapcore.WarnLevel))
	console.Set("error", c.logFn(zapcore.ErrorLevel))
	vm.Set("console", console)
}

func (c *consoleAPI) logFn(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if ce := c.log.Check(level, formatArgs(call.Arguments)); ce != nil {
			ce.Write(zap.String("source", "console"))
		}
		return goja.Undefined()
	}
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
