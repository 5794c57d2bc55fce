package template

import "fmt"

// Position locates a template error within the input string.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError reports a malformed template.
type ParseError struct {
	Pos Position
	msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.msg)
}

func newParseError(pos Position, msg string) *ParseError {
	return &ParseError{Pos: pos, msg: msg}
}

func newParseErrorf(pos Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, msg: fmt.Sprintf(format, args...)}
}
