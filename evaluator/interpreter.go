// Package evaluator implements the Beauty tree-walking interpreter.
package evaluator

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexisbouchez/beautygo/ast"
	"github.com/alexisbouchez/beautygo/object"
	"github.com/alexisbouchez/beautygo/parser"
)

// Interpreter owns the global scope, the package registry and the host
// streams used by io.
type Interpreter struct {
	Global *object.Scope

	out    io.Writer
	in     *bufio.Reader
	logger *slog.Logger

	packages map[string]*packageEntry
	loadPath []string
	line     int
	frames   []*Env
}

type packageEntry struct {
	source any
	value  object.Object
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets the writer used by io.out and io.trimOut.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithInput sets the reader used by io.in and io.charIn.
func WithInput(r io.Reader) Option {
	return func(in *Interpreter) { in.in = bufio.NewReader(r) }
}

// WithLogger sets the logger for package and loader diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// New creates an interpreter with the globals and native packages installed.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		Global:   object.NewScope(nil),
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		packages: make(map[string]*packageEntry),
		line:     1,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.installGlobals()
	in.installPackages()
	return in
}

// Env is the evaluation context: the active scope, the origin scope of the
// source being evaluated, and for deferred reads the reader's scope.
type Env struct {
	in       *Interpreter
	scope    *object.Scope
	origin   *object.Scope
	fallback *object.Scope
}

// NewEnv creates an environment whose active and origin scope is scope.
func (in *Interpreter) NewEnv(scope *object.Scope) *Env {
	return &Env{in: in, scope: scope, origin: scope}
}

// Scope returns the active scope.
func (e *Env) Scope() *object.Scope { return e.scope }

func (e *Env) child() *Env {
	return e.with(object.NewScope(e.scope))
}

func (e *Env) with(scope *object.Scope) *Env {
	return &Env{in: e.in, scope: scope, origin: e.origin, fallback: e.fallback}
}

func (e *Env) lookup(name string) (*object.Variable, bool) {
	if v, ok := e.scope.Lookup(name); ok {
		return v, true
	}
	if e.origin != nil {
		if v, ok := e.origin.Lookup(name); ok {
			return v, true
		}
	}
	if e.fallback != nil {
		return e.fallback.Lookup(name)
	}
	return nil, false
}

// Line returns the current line counter.
func (in *Interpreter) Line() int { return in.line }

// NextLine advances the line counter. The REPL calls it once per input.
func (in *Interpreter) NextLine() { in.line++ }

// NewFileScope creates a child of the global scope seeded with @file, @dir
// and an empty package object. An empty path seeds the working directory.
func (in *Interpreter) NewFileScope(path string) *object.Scope {
	scope := object.NewScope(in.Global)
	dir, _ := os.Getwd()
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		dir = filepath.Dir(path)
	}
	defineConst(scope, "@file", &object.String{Value: path})
	defineConst(scope, "@dir", &object.String{Value: dir})
	scope.Define("package", object.NewHash())
	return scope
}

func defineConst(scope *object.Scope, name string, val object.Object) {
	v := object.NewVariable(name, object.TagConst)
	v.Set(val)
	scope.Declare(v)
}

// Run evaluates src as the file at path in a fresh file scope.
func (in *Interpreter) Run(src, path string) (object.Object, error) {
	return in.EvalInScope(src, in.NewFileScope(path))
}

// EvalInScope evaluates src with scope as both the active and origin scope.
func (in *Interpreter) EvalInScope(src string, scope *object.Scope) (object.Object, error) {
	program, err := in.parse(src)
	if err != nil {
		return nil, err
	}
	result := Eval(program, in.NewEnv(scope))
	if errObj, ok := result.(*object.Error); ok {
		return nil, errObj.At(in.line)
	}
	return result, nil
}

func (in *Interpreter) parse(src string) (*ast.Program, *object.Error) {
	program, errs := parser.ParseString(src)
	if len(errs) > 0 {
		return nil, object.NewError(object.SyntaxError, "%s", errs[0]).At(in.line)
	}
	return program, nil
}

// ExposePackage registers pkg under name for order. The first registration
// wins unless override is set. pkg is converted with FromNative when it is
// first ordered; a func(*Interpreter) any is called to build it.
func (in *Interpreter) ExposePackage(name string, override bool, pkg any) bool {
	if _, exists := in.packages[name]; exists && !override {
		in.logger.Debug("package already registered", "name", name)
		return false
	}
	in.packages[name] = &packageEntry{source: pkg}
	in.logger.Debug("package registered", "name", name, "override", override)
	return true
}

func (in *Interpreter) resolvePackage(name string) (object.Object, bool) {
	entry, ok := in.packages[name]
	if !ok {
		return nil, false
	}
	if entry.value == nil {
		src := entry.source
		if build, ok := src.(func(*Interpreter) any); ok {
			src = build(in)
		}
		entry.value = FromNative(src, nil)
	}
	in.logger.Debug("package resolved", "name", name)
	return entry.value, true
}

func (in *Interpreter) pushFrame(env *Env) { in.frames = append(in.frames, env) }

func (in *Interpreter) popFrame() { in.frames = in.frames[:len(in.frames)-1] }

// caller returns the environment of the innermost native call.
func (in *Interpreter) caller() *Env {
	if len(in.frames) == 0 {
		return in.NewEnv(in.Global)
	}
	return in.frames[len(in.frames)-1]
}

func (in *Interpreter) callerDir() string {
	if v, ok := in.caller().lookup("@dir"); ok {
		if s, ok := v.Get(nil).(*object.String); ok {
			return s.Value
		}
	}
	dir, _ := os.Getwd()
	return dir
}
