package evaluator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// fsPackage builds the fs package. Relative paths resolve against the
// @dir of the calling source.
func (in *Interpreter) fsPackage() map[string]any {
	resolve := func(args []any) (string, error) {
		if len(args) < 1 {
			return "", errors.New("wrong number of arguments (given 0, expected 1)")
		}
		name, ok := args[0].(string)
		if !ok {
			return "", fmt.Errorf("expected a path string, got %T", args[0])
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(in.callerDir(), name)
		}
		return name, nil
	}

	return map[string]any{
		"read": func(args ...any) (any, error) {
			name, err := resolve(args)
			if err != nil {
				return nil, err
			}
			content, err := os.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			return string(content), nil
		},
		"write": func(args ...any) (any, error) {
			name, err := resolve(args)
			if err != nil {
				return nil, err
			}
			data := argString(args, 1)
			if err := os.WriteFile(name, []byte(data), 0644); err != nil {
				return nil, fmt.Errorf("write %s: %w", name, err)
			}
			return len(data), nil
		},
		"exists?": func(args ...any) (any, error) {
			name, err := resolve(args)
			if err != nil {
				return nil, err
			}
			_, err = os.Stat(name)
			if errors.Is(err, fs.ErrNotExist) {
				return false, nil
			}
			if err != nil {
				return nil, err
			}
			return true, nil
		},
		"directory?": func(args ...any) (any, error) {
			name, err := resolve(args)
			if err != nil {
				return nil, err
			}
			info, err := os.Stat(name)
			if err != nil {
				return false, nil
			}
			return info.IsDir(), nil
		},
		"list": func(args ...any) (any, error) {
			name, err := resolve(args)
			if err != nil {
				return nil, err
			}
			entries, err := os.ReadDir(name)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", name, err)
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name()
			}
			sort.Strings(names)
			return names, nil
		},
		"remove": func(args ...any) (any, error) {
			name, err := resolve(args)
			if err != nil {
				return nil, err
			}
			if err := os.Remove(name); err != nil {
				return nil, fmt.Errorf("remove %s: %w", name, err)
			}
			return nil, nil
		},
	}
}
