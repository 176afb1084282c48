// Package repl implements a Read-Eval-Print Loop for Beauty.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alexisbouchez/beautygo/evaluator"
	"github.com/alexisbouchez/beautygo/object"
)

const (
	PROMPT          = "b> "
	CONTINUE_PROMPT = ".. "
)

// replFile is the @file value of the REPL scope.
const replFile = "@special_repl@"

// LineReader supplies input lines. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL evaluates inputs in one persistent scope.
type REPL struct {
	interp   *evaluator.Interpreter
	scope    *object.Scope
	out      io.Writer
	errOut   io.Writer
	config   Config
	commands map[string]command
}

type command struct {
	help string
	run  func(r *REPL, args []string) (exit bool)
}

// New creates a REPL around interp. Results go to out, errors to errOut.
func New(interp *evaluator.Interpreter, out, errOut io.Writer, config Config) *REPL {
	scope := interp.NewFileScope("")
	file := object.NewVariable("@file", object.TagConst)
	file.Set(&object.String{Value: replFile})
	scope.Declare(file)

	r := &REPL{
		interp: interp,
		scope:  scope,
		out:    out,
		errOut: errOut,
		config: config,
	}
	r.commands = map[string]command{
		"exit": {help: "leave the REPL", run: func(*REPL, []string) bool { return true }},
		"help": {help: "list REPL keywords", run: (*REPL).printHelp},
	}
	return r
}

// Run reads inputs from lr until EOF or .exit.
func (r *REPL) Run(lr LineReader) error {
	if r.config.Banner != "" {
		fmt.Fprintln(r.out, r.config.Banner)
	}

	for {
		input, err := readInput(lr, r.config.Prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		lr.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if r.Handle(input) {
			return nil
		}
	}
}

// readInput prompts until the collected lines form a complete input.
func readInput(lr LineReader, prompt string) (string, error) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = CONTINUE_PROMPT
		}
		line, err := lr.Prompt(p)
		if err != nil {
			if b.Len() > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if isCompleteInput(b.String()) {
			return b.String(), nil
		}
	}
}

// Handle processes one complete input and advances the line counter. It
// reports whether the REPL should exit.
func (r *REPL) Handle(input string) (exit bool) {
	defer r.interp.NextLine()

	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, ".") {
		fields := strings.Fields(trimmed[1:])
		name := ""
		if len(fields) > 0 {
			name = fields[0]
		}
		cmd, ok := r.commands[name]
		if !ok {
			err := object.NewError(object.REPLCommandNotFound, "REPL keyword ('%s') not found.", trimmed[1:])
			fmt.Fprintln(r.errOut, err.At(r.interp.Line()).Error())
			return false
		}
		return cmd.run(r, fields[1:])
	}

	result, err := r.interp.EvalInScope(input, r.scope)
	if err != nil {
		fmt.Fprintln(r.errOut, err.Error())
		return false
	}
	fmt.Fprintln(r.out, "=> "+result.Inspect())
	return false
}

func (r *REPL) printHelp(_ []string) bool {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.out, ".%-6s %s\n", name, r.commands[name].help)
	}
	return false
}

// isCompleteInput checks if the input has balanced delimiters and no open
// string literal.
func isCompleteInput(input string) bool {
	openParens := 0
	openBrackets := 0
	openBraces := 0
	inString := false
	inComment := false
	stringDelim := byte(0)

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inComment {
			if ch == '\n' {
				inComment = false
			}
			continue
		}
		if inString {
			if ch == '\\' {
				i++
				continue
			}
			if ch == stringDelim {
				inString = false
			}
			continue
		}

		switch ch {
		case '#':
			inComment = true
		case '/':
			if i+1 < len(input) && input[i+1] == '/' {
				inComment = true
			}
		case '"', '\'':
			inString = true
			stringDelim = ch
		case '(':
			openParens++
		case ')':
			openParens--
		case '[':
			openBrackets++
		case ']':
			openBrackets--
		case '{':
			openBraces++
		case '}':
			openBraces--
		}
	}

	return openParens <= 0 && openBrackets <= 0 && openBraces <= 0 && !inString
}

// scannerReader adapts a plain io.Reader, echoing prompts to out.
type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (s *scannerReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *scannerReader) AppendHistory(string) {}

// Start runs a REPL over plain streams with the default configuration.
func Start(in io.Reader, out io.Writer) {
	interp := evaluator.New(evaluator.WithOutput(out))
	r := New(interp, out, out, DefaultConfig())
	_ = r.Run(&scannerReader{scanner: bufio.NewScanner(in), out: out})
}

// EvalString evaluates a Beauty program string and returns the result.
func EvalString(input string) (object.Object, error) {
	return evaluator.New().Run(input, "")
}
