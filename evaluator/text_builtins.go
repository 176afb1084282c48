package evaluator

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// localeArg parses an optional BCP 47 tag, defaulting to English.
func localeArg(name string, args []any, i int) (language.Tag, error) {
	loc := argString(args, i)
	if loc == "" {
		return language.English, nil
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return language.Und, hostError(name, "%v", err)
	}
	return tag, nil
}

func formatNumber(tag language.Tag, v float64) string {
	p := message.NewPrinter(tag)
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%v", v)
}

func caser(name string, mk func(language.Tag, ...cases.Option) cases.Caser) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		tag, err := localeArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		return mk(tag).String(argString(args, 0)), nil
	}
}

func textPackage() map[string]any {
	return map[string]any{
		// format renders a number with the grouping of a locale.
		"format": func(args ...any) (any, error) {
			tag, err := localeArg("text.format", args, 1)
			if err != nil {
				return nil, err
			}
			return formatNumber(tag, argNumber(args, 0, math.NaN())), nil
		},
		"upper": caser("text.upper", cases.Upper),
		"lower": caser("text.lower", cases.Lower),
		"title": caser("text.title", cases.Title),
	}
}
