// Package template implements the placeholder mini-language used by field
// expressions and from-clause templates. A template is opaque SQL text
// containing zero or more placeholders of the form {alias} or {alias.field}.
// Literal braces outside a placeholder are rejected; there is no escape
// mechanism.
package template

import "strings"

// Ref is a single placeholder extracted from a template. Field is empty for
// the bare {alias} form.
type Ref struct {
	Alias string
	Field string
	Pos   Position
}

// Key returns the canonical "alias" or "alias.field" spelling of the ref.
func (r Ref) Key() string {
	if r.Field == "" {
		return r.Alias
	}
	return r.Alias + "." + r.Field
}

func (r Ref) String() string {
	return "{" + r.Key() + "}"
}

// segment is either literal text or a placeholder.
type segment struct {
	text  string
	ref   Ref
	isRef bool
}

// Template is a parsed template, ready for resolution and rendering.
type Template struct {
	raw      string
	segments []segment
}

// Parse tokenizes the input into text and placeholder segments.
func Parse(input string) (*Template, error) {
	segments, err := newLexer(input).lex()
	if err != nil {
		return nil, err
	}
	return &Template{raw: input, segments: segments}, nil
}

// Raw returns the original template text.
func (t *Template) Raw() string {
	return t.raw
}

// Refs returns every placeholder in source order. Repeated placeholders
// appear once per occurrence; callers that need a distinct set deduplicate
// by Key.
func (t *Template) Refs() []Ref {
	var refs []Ref
	for _, s := range t.segments {
		if s.isRef {
			refs = append(refs, s.ref)
		}
	}
	return refs
}

// Render substitutes every placeholder with the text returned by resolve,
// leaving the surrounding literal text untouched. The first resolver error
// aborts the rendering.
func (t *Template) Render(resolve func(Ref) (string, error)) (string, error) {
	var b strings.Builder
	b.Grow(len(t.raw))
	for _, s := range t.segments {
		if !s.isRef {
			b.WriteString(s.text)
			continue
		}
		out, err := resolve(s.ref)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}
