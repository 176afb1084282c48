package evaluator

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// regexMatchTimeout bounds a single match; exceeding it is a NativeError.
const regexMatchTimeout = 2 * time.Second

// regexCache is keyed by pattern text and never evicts.
var (
	regexCacheMutex sync.Mutex
	regexCache      = make(map[string]*regexp2.Regexp)
)

// compileRegex compiles pattern once per process.
func compileRegex(name, pattern string) (*regexp2.Regexp, error) {
	regexCacheMutex.Lock()
	defer regexCacheMutex.Unlock()

	if re, ok := regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, hostError(name, "invalid pattern %q: %v", pattern, err)
	}
	re.MatchTimeout = regexMatchTimeout
	regexCache[pattern] = re
	return re, nil
}

func regexPackage() map[string]any {
	return map[string]any{
		"test": func(args ...any) (any, error) {
			re, err := compileRegex("regex.test", argString(args, 0))
			if err != nil {
				return nil, err
			}
			return re.MatchString(argString(args, 1))
		},
		// match returns the whole match followed by its groups, or null.
		"match": func(args ...any) (any, error) {
			re, err := compileRegex("regex.match", argString(args, 0))
			if err != nil {
				return nil, err
			}
			m, err := re.FindStringMatch(argString(args, 1))
			if err != nil || m == nil {
				return nil, err
			}
			groups := m.Groups()
			out := make([]any, len(groups))
			for i, g := range groups {
				if len(g.Captures) == 0 {
					continue
				}
				out[i] = g.String()
			}
			return out, nil
		},
		"matchAll": func(args ...any) (any, error) {
			re, err := compileRegex("regex.matchAll", argString(args, 0))
			if err != nil {
				return nil, err
			}
			out := []any{}
			m, err := re.FindStringMatch(argString(args, 1))
			for m != nil && err == nil {
				out = append(out, m.String())
				m, err = re.FindNextMatch(m)
			}
			return out, err
		},
		"replace": func(args ...any) (any, error) {
			re, err := compileRegex("regex.replace", argString(args, 0))
			if err != nil {
				return nil, err
			}
			return re.Replace(argString(args, 1), argString(args, 2), -1, -1)
		},
		"split": func(args ...any) (any, error) {
			re, err := compileRegex("regex.split", argString(args, 0))
			if err != nil {
				return nil, err
			}
			return splitRegex(re, argString(args, 1))
		},
	}
}

func splitRegex(re *regexp2.Regexp, s string) ([]any, error) {
	runes := []rune(s)
	var out []any
	last := 0
	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		if m.Length > 0 || m.Index > last {
			out = append(out, string(runes[last:m.Index]))
			last = m.Index + m.Length
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	return append(out, string(runes[last:])), nil
}
