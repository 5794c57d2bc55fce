package template

// lexer scans a template string into text and placeholder segments.
// The grammar is deliberately tiny:
//
//	template    = { text | placeholder } ;
//	placeholder = "{" ident [ "." ident ] "}" ;
//	ident       = ( letter | "_" ) { letter | digit | "_" } ;
//
// A "{" always opens a placeholder and a "}" always closes one; stray braces
// in the surrounding SQL text are reported as errors with their position.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1, col: 1}
}

func (l *lexer) lex() ([]segment, error) {
	var segments []segment
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '{':
			ref, err := l.scanPlaceholder()
			if err != nil {
				return nil, err
			}
			segments = append(segments, segment{ref: ref, isRef: true})
		case '}':
			return nil, newParseError(l.position(), "unexpected '}' outside placeholder")
		default:
			segments = append(segments, segment{text: l.scanText()})
		}
	}
	return segments, nil
}

// scanText consumes literal text up to the next brace or EOF.
func (l *lexer) scanText() string {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '{' || c == '}' {
			break
		}
		l.advance()
	}
	return l.input[start:l.pos]
}

// scanPlaceholder consumes "{alias}" or "{alias.field}". The opening brace
// is at the current position.
func (l *lexer) scanPlaceholder() (Ref, error) {
	open := l.position()
	l.advance() // consume '{'

	alias, err := l.scanIdent()
	if err != nil {
		return Ref{}, err
	}

	var field string
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.advance()
		field, err = l.scanIdent()
		if err != nil {
			return Ref{}, err
		}
	}

	if l.pos >= len(l.input) {
		return Ref{}, newParseError(open, "unclosed placeholder: missing '}'")
	}
	if l.input[l.pos] != '}' {
		return Ref{}, newParseErrorf(l.position(), "unexpected %q in placeholder", l.input[l.pos])
	}
	l.advance() // consume '}'

	return Ref{Alias: alias, Field: field, Pos: open}, nil
}

func (l *lexer) scanIdent() (string, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos], l.pos > start) {
		l.advance()
	}
	if l.pos == start {
		if l.pos >= len(l.input) {
			return "", newParseError(l.position(), "unclosed placeholder: missing '}'")
		}
		return "", newParseErrorf(l.position(), "expected identifier, found %q", l.input[l.pos])
	}
	return l.input[start:l.pos], nil
}

func isIdentChar(c byte, tail bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9':
		return tail
	default:
		return false
	}
}

// advance moves past the current byte, updating line/column tracking.
// Placeholders are ASCII by grammar; multi-byte runes only occur in literal
// text, where per-byte column counts are acceptable for diagnostics.
func (l *lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}
