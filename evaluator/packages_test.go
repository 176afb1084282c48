package evaluator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexisbouchez/beautygo/object"
)

func stringResult(t *testing.T, result object.Object) string {
	t.Helper()
	s, ok := result.(*object.String)
	if !ok {
		t.Fatalf("expected a string, got %s (%s)", result.Type(), result.Inspect())
	}
	return s.Value
}

func TestMathPackage(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"const m = order('math')\nm.floor(2.7)", "2"},
		{"order('math').ceil(2.1)", "3"},
		{"order('math').sqrt(16)", "4"},
		{"order('math').abs(-3)", "3"},
		{"order('math').max(1, 5, 3)", "5"},
		{"order('math').min(4, -2)", "-2"},
		{"order('math').pi > 3.14 && order('math').pi < 3.15", "true"},
	})

	result := testEval(t, `
const m = order('math')
any ok = true
for i of 1..50 {
  number r = m.random(1, 3)
  if r < 1 || r > 3 { ok = false }
}
ok
`)
	if result != object.TRUE {
		t.Errorf("random left its bounds")
	}
}

func TestJSONPackage(t *testing.T) {
	runEvalCases(t, []evalCase{
		{`order('json').parse('{"b": 2, "a": [1, true, null]}')`, `{b: 2, a: [1, true, null]}`},
		{`order('json').parse('"x"')`, `"x"`},
		{`order('json').parse('{"k": {"n": 1.5}}').k.n`, "1.5"},
	})

	tests := []struct {
		input    string
		expected string
	}{
		{"order('json').stringify({b: 1, a: 'x', f: fn() { return 1 }})", `{"b":1,"a":"x"}`},
		{"order('json').stringify([1, 2.5, null, 'q'])", `[1,2.5,null,"q"]`},
		{"order('json').stringify([1], 2)", "[\n  1\n]"},
		{"const j = order('json')\nj.stringify(j.parse('{\"z\":1,\"a\":{\"b\":[]}}'))", `{"z":1,"a":{"b":[]}}`},
	}
	for _, tt := range tests {
		if got := stringResult(t, testEval(t, tt.input)); got != tt.expected {
			t.Errorf("eval %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}

	if err := testEvalError(t, "order('json').parse('{\"a\": 1} x')"); err.Kind != object.NativeError {
		t.Errorf("expected NativeError, got %s", err.Kind)
	}
}

func TestYAMLPackage(t *testing.T) {
	runEvalCases(t, []evalCase{
		{`order('yaml').parse('name: x\nitems: [a, b]\nn: 3')`, `{name: "x", items: ["a", "b"], n: 3}`},
		{`order('yaml').parse('')`, "null"},
	})

	got := stringResult(t, testEval(t, "order('yaml').stringify({name: 'x', n: 2})"))
	if got != "name: x\nn: 2\n" {
		t.Errorf("unexpected yaml %q", got)
	}
}

func TestRegexPackage(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"order('regex').test('^a', 'abc')", "true"},
		{"order('regex').test('^b', 'abc')", "false"},
		{"order('regex').replace('[0-9]+', 'a1b22', '#')", `"a#b#"`},
		{"order('regex').split(',', 'a,b,,c')", `["a", "b", "", "c"]`},
		{"order('regex').match('(\\\\w+)@(\\\\w+)', 'me@host')", `["me@host", "me", "host"]`},
		{"order('regex').match('z', 'abc')", "null"},
		{"order('regex').matchAll('[0-9]', 'a1b2')", `["1", "2"]`},
	})

	if err := testEvalError(t, "order('regex').test('(', 'x')"); err.Kind != object.NativeError {
		t.Errorf("expected NativeError, got %s", err.Kind)
	}
}

func TestCompiledRegexHasMatchTimeout(t *testing.T) {
	for _, pattern := range []string{"^a", "(a+)+$"} {
		re, err := compileRegex("test", pattern)
		if err != nil {
			t.Fatalf("compile %q: %v", pattern, err)
		}
		if re.MatchTimeout != regexMatchTimeout {
			t.Errorf("pattern %q: expected timeout %v, got %v", pattern, regexMatchTimeout, re.MatchTimeout)
		}
	}
}

func TestTextPackage(t *testing.T) {
	runEvalCases(t, []evalCase{
		{"order('text').title('hello world')", `"Hello World"`},
		{"order('text').format(1000000, 'de')", `"1.000.000"`},
		{"order('text').format(1000000)", `"1,000,000"`},
		{"order('text').lower('ABC')", `"abc"`},
	})
}

func TestFSPackage(t *testing.T) {
	dir := t.TempDir()
	interp := New(WithOutput(&bytes.Buffer{}))

	result, err := interp.Run(`
const fs = order('fs')
number n = fs.write('a.txt', 'hello')
[n, fs.read('a.txt'), fs.exists?('a.txt'), fs.directory?('.'), fs.list('.')]
`, filepath.Join(dir, "main.beau"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `[5, "hello", true, true, ["a.txt"]]`
	if result.Inspect() != expected {
		t.Errorf("expected %s, got %s", expected, result.Inspect())
	}

	if _, err := os.Stat(filepath.Join(dir, "a.txt")); err != nil {
		t.Errorf("file was not written relative to @dir: %v", err)
	}

	result, err = interp.Run("const fs = order('fs')\nfs.remove('a.txt')\nfs.exists?('a.txt')", filepath.Join(dir, "main.beau"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != object.FALSE {
		t.Errorf("expected the file to be removed, got %s", result.Inspect())
	}
}

func TestOrderLoadsSourceFiles(t *testing.T) {
	dir := t.TempDir()
	lib := "package.greet = fn(name) { return 'hi ' + name }\npackage.file = @file\n"
	if err := os.WriteFile(filepath.Join(dir, "lib.beau"), []byte(lib), 0644); err != nil {
		t.Fatal(err)
	}

	interp := New(WithOutput(&bytes.Buffer{}))
	result, err := interp.Run("const lib = order('lib')\nlib.greet('bo')", filepath.Join(dir, "main.beau"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inspect() != `"hi bo"` {
		t.Errorf("expected \"hi bo\", got %s", result.Inspect())
	}

	result, err = interp.Run("order('lib.beau').file", filepath.Join(dir, "main.beau"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stringResult(t, result); got != filepath.Join(dir, "lib.beau") {
		t.Errorf("expected @file of the loaded source, got %q", got)
	}
}

func TestOrderSearchesLoadPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "util.beau"), []byte("package.answer = 42\n"), 0644); err != nil {
		t.Fatal(err)
	}

	interp := New(WithOutput(&bytes.Buffer{}), WithLoadPath(dir))
	result, err := interp.Run("order('util').answer", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inspect() != "42" {
		t.Errorf("expected 42, got %s", result.Inspect())
	}

	if err := testEvalError(t, "order('no_such_module')"); err.Kind != object.NativeError {
		t.Errorf("expected NativeError, got %s", err.Kind)
	}
}

func hostPackage() map[string]any {
	return map[string]any{
		"apply": func(args ...any) (any, error) {
			fn, ok := args[0].(object.HostFunc)
			if !ok {
				return nil, errors.New("apply: expected a function")
			}
			return fn(args[1:]...)
		},
		"fail": func(args ...any) (any, error) {
			return nil, errors.New("nope")
		},
		"boom": func(args ...any) (any, error) {
			panic("host exploded")
		},
		"pair": func(args ...any) (any, error) {
			return map[string]any{"left": args[0], "right": args[1]}, nil
		},
	}
}

func TestNativeInterop(t *testing.T) {
	newInterp := func() *Interpreter {
		interp := New(WithOutput(&bytes.Buffer{}))
		interp.ExposePackage("host", false, hostPackage())
		return interp
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"const h = order('host')\nh.apply(fn(x) { return x + 1 }, 41)", "42"},
		{"const h = order('host')\nh.pair('a', [1])", `{left: "a", right: [1]}`},
		{"const h = order('host')\nh.apply(h.pair, 1, 2).right", "2"},
		{"const h = order('host')\ntry { h.fail() } catch (e) { e.kind }", `"NativeError"`},
	}
	for _, tt := range tests {
		result, err := newInterp().Run(tt.input, "")
		if err != nil {
			t.Fatalf("eval %q: %v", tt.input, err)
		}
		if result.Inspect() != tt.expected {
			t.Errorf("eval %q: expected %s, got %s", tt.input, tt.expected, result.Inspect())
		}
	}

	errTests := []struct {
		input string
		kind  object.ErrorKind
	}{
		{"order('host').fail()", object.NativeError},
		{"order('host').boom()", object.NativeError},
		{"order('host').apply(fn(x) { throw 'inner' }, 1)", object.UserThrow},
	}
	for _, tt := range errTests {
		_, err := newInterp().Run(tt.input, "")
		var errObj *object.Error
		if !errors.As(err, &errObj) {
			t.Fatalf("eval %q: expected a language error, got %v", tt.input, err)
		}
		if errObj.Kind != tt.kind {
			t.Errorf("eval %q: expected %s, got %s", tt.input, tt.kind, errObj.Kind)
		}
	}
}

func TestExposePackage(t *testing.T) {
	interp := New(WithOutput(&bytes.Buffer{}))

	if !interp.ExposePackage("cfg", false, map[string]any{"v": 1}) {
		t.Fatal("first registration was rejected")
	}
	if interp.ExposePackage("cfg", false, map[string]any{"v": 2}) {
		t.Error("second registration replaced the first")
	}
	result, err := interp.Run("order('cfg').v", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inspect() != "1" {
		t.Errorf("expected 1, got %s", result.Inspect())
	}

	interp.ExposePackage("cfg", true, func(*Interpreter) any { return map[string]any{"v": 3} })
	result, err = interp.Run("order('cfg').v", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inspect() != "3" {
		t.Errorf("expected 3 after override, got %s", result.Inspect())
	}
}

func TestFromNative(t *testing.T) {
	tests := []struct {
		in       any
		expected string
	}{
		{nil, "null"},
		{3, "3"},
		{uint8(7), "7"},
		{float32(1.5), "1.5"},
		{"s", `"s"`},
		{[]int{1, 2}, "[1, 2]"},
		{[]any{"a", true}, `["a", true]`},
		{map[string]any{"b": 1, "a": "x"}, `{a: "x", b: 1}`},
		{map[string]int{"k": 2}, "{k: 2}"},
		{errors.New("bad"), `{message: "bad"}`},
	}

	for _, tt := range tests {
		got := FromNative(tt.in, nil).Inspect()
		if got != tt.expected {
			t.Errorf("FromNative(%#v): expected %s, got %s", tt.in, tt.expected, got)
		}
	}
}

func TestToNativeKeepsFirstDuplicateKey(t *testing.T) {
	h := object.NewHash()
	h.Attach("k", assigned("k", &object.Number{Value: 1}))
	h.Attach("k", assigned("k", &object.Number{Value: 2}))
	h.Attach("s", assigned("s", &object.String{Value: "v"}))

	native, err := ToNative(h, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := native.(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", native)
	}
	if m["k"] != 1.0 || m["s"] != "v" {
		t.Errorf("unexpected conversion %v", m)
	}
}

func TestToNativeRejectsCycles(t *testing.T) {
	arr := &object.Array{}
	arr.Elements = append(arr.Elements, arr)

	h := object.NewHash()
	h.Set("self", h)

	shared := &object.Array{Elements: []object.Object{&object.Number{Value: 1}}}
	twice := &object.Array{Elements: []object.Object{shared, shared}}

	tests := []struct {
		obj      object.Object
		circular bool
	}{
		{arr, true},
		{h, true},
		{&object.Array{Elements: []object.Object{h}}, true},
		{twice, false},
	}

	for _, tt := range tests {
		_, err := ToNative(tt.obj, nil)
		if got := errors.Is(err, errCircular); got != tt.circular {
			t.Errorf("ToNative(%s): expected circular=%v, got err=%v", tt.obj.Inspect(), tt.circular, err)
		}
	}
}

func TestJSONSkipsShadowedDuplicateKey(t *testing.T) {
	h := object.NewHash()
	h.Attach("k", assigned("k", &object.NativeFunction{Name: "k"}))
	h.Attach("n", assigned("n", &object.Number{Value: 1}))
	h.Attach("k", assigned("k", &object.Number{Value: 2}))

	data, err := jsonValue{h}.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"n":1}` {
		t.Errorf("expected the shadowed key to be dropped, got %s", data)
	}

	node, err := valueToYAML(h, visiting{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(node.Content) != 2 || node.Content[0].Value != "n" {
		t.Errorf("expected only n in the yaml mapping, got %d nodes", len(node.Content))
	}
}

func TestCyclicValues(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	interp.ExposePackage("host", false, hostPackage())

	_, err := interp.Run("any o = {a: 1}\no.me = o\nio.out(o)\nany l = [1]\nl.add(l)\nio.out(l)", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "{a: 1, me: [Circular]}\n[1, [Circular]]\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}

	errTests := []string{
		"any o = {}\no.me = o\norder('json').stringify(o)",
		"any o = {}\no.me = o\norder('yaml').stringify(o)",
		"any l = []\nl.add(l)\norder('host').pair(l, 1)",
	}
	for _, input := range errTests {
		_, err := interp.Run(input, "")
		var errObj *object.Error
		if !errors.As(err, &errObj) {
			t.Fatalf("eval %q: expected a language error, got %v", input, err)
		}
		if errObj.Kind != object.NativeError || !strings.Contains(errObj.Message, "circular structure") {
			t.Errorf("eval %q: unexpected error %s: %s", input, errObj.Kind, errObj.Message)
		}
	}
}
