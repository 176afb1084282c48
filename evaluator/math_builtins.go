package evaluator

import (
	"math"
	"math/rand"
)

// pi from Machin's formula.
var machinPi = 4 * ((4 * math.Atan(1.0/5)) - math.Atan(1.0/239))

func unaryMath(fn func(float64) float64) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		return fn(argNumber(args, 0, math.NaN())), nil
	}
}

func mathPackage() map[string]any {
	return map[string]any{
		"pi":    machinPi,
		"tan":   unaryMath(math.Tan),
		"atan":  unaryMath(math.Atan),
		"floor": unaryMath(math.Floor),
		"ceil":  unaryMath(math.Ceil),
		"sqrt":  unaryMath(math.Sqrt),
		"abs":   unaryMath(math.Abs),
		"round": unaryMath(math.Round),
		// random returns an integer in [min, max], defaulting to [0, 10].
		"random": func(args ...any) (any, error) {
			lo := argNumber(args, 0, 0)
			hi := argNumber(args, 1, 10)
			return math.Floor(rand.Float64()*(hi-lo+1) + lo), nil
		},
		"max": func(args ...any) (any, error) {
			return foldNumbers(args, math.Inf(-1), math.Max), nil
		},
		"min": func(args ...any) (any, error) {
			return foldNumbers(args, math.Inf(1), math.Min), nil
		},
	}
}

func foldNumbers(args []any, start float64, fn func(a, b float64) float64) float64 {
	acc := start
	for i := range args {
		acc = fn(acc, argNumber(args, i, math.NaN()))
	}
	return acc
}
