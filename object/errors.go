package object

import "fmt"

// ErrorKind classifies a language-level error.
type ErrorKind string

const (
	UndefinedVariable   ErrorKind = "UndefinedVariable"
	TypeMismatch        ErrorKind = "TypeMismatch"
	ConstViolation      ErrorKind = "ConstViolation"
	UserThrow           ErrorKind = "UserThrow"
	NativeError         ErrorKind = "NativeError"
	RuntimeError        ErrorKind = "RuntimeError"
	SyntaxError         ErrorKind = "SyntaxError"
	REPLCommandNotFound ErrorKind = "REPLCommandNotFound"
)

// Error is a raised language error. Thrown holds the value passed to throw.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Thrown  Object
}

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func (e *Error) Type() Type      { return ERROR_OBJ }
func (e *Error) Inspect() string { return string(e.Kind) + ": " + e.Message }
func (e *Error) IsTruthy() bool  { return false }

// Error renders the two-line diagnostic printed for uncaught errors.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s\n    at line %d", e.Kind, e.Message, e.Line)
}

// At stamps the line counter onto an error that has none yet.
func (e *Error) At(line int) *Error {
	if e.Line == 0 {
		e.Line = line
	}
	return e
}
