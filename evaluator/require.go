package evaluator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexisbouchez/beautygo/object"
)

// SourceExt is appended to ordered names that have no extension.
const SourceExt = ".beau"

// WithLoadPath adds directories searched by order after the caller's @dir.
func WithLoadPath(dirs ...string) Option {
	return func(in *Interpreter) { in.loadPath = append(in.loadPath, dirs...) }
}

// order resolves a registered package by name, or loads a source file and
// returns its package object. Files are evaluated on every order.
func (in *Interpreter) order(args ...any) (any, error) {
	name := argString(args, 0)
	if pkg, ok := in.resolvePackage(name); ok {
		return pkg, nil
	}

	if filepath.Ext(name) == "" {
		name += SourceExt
	}
	fullPath, err := in.findFile(name)
	if err != nil {
		return nil, fmt.Errorf("order: cannot load %s: %w", name, err)
	}
	return in.loadFile(fullPath)
}

func (in *Interpreter) findFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	dirs := append([]string{in.callerDir()}, in.loadPath...)
	for _, dir := range dirs {
		fullPath := filepath.Join(dir, filename)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", os.ErrNotExist
}

// loadFile evaluates a source file in a fresh file scope and returns the
// value left in its package binding.
func (in *Interpreter) loadFile(path string) (object.Object, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	in.logger.Debug("loading file", "path", path)

	program, perr := in.parse(string(content))
	if perr != nil {
		return nil, perr
	}

	scope := in.NewFileScope(path)
	result := Eval(program, in.NewEnv(scope))
	if errObj, ok := result.(*object.Error); ok {
		return nil, errObj
	}

	pkg, ok := scope.LookupLocal("package")
	if !ok {
		return nil, errors.New("order: package binding was deleted")
	}
	return pkg.Get(scope), nil
}
