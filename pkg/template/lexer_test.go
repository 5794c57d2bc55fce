package template

import (
	"errors"
	"testing"
)

func TestParse_Refs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain text", "select 1", nil},
		{"single field ref", "{t1.income}", []string{"t1.income"}},
		{"ref inside function", "abs({t1.income})", []string{"t1.income"}},
		{"bare alias", "{a}", []string{"a"}},
		{"multiple refs", "abs({a.lat}-{a.lon})", []string{"a.lat", "a.lon"}},
		{"repeated ref", "{a.x}+{a.x}", []string{"a.x", "a.x"}},
		{"underscore idents", "{src_1.trip_duration}", []string{"src_1.trip_duration"}},
		{"multiline sql", "case\n    when {b.flag} then 1\nend", []string{"b.flag"}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			refs := tpl.Refs()
			if len(refs) != len(tt.want) {
				t.Fatalf("expected %d refs, got %d (%v)", len(tt.want), len(refs), refs)
			}
			for i, want := range tt.want {
				if refs[i].Key() != want {
					t.Errorf("ref %d: expected %q, got %q", i, want, refs[i].Key())
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed placeholder", "abs({t1.income"},
		{"stray closing brace", "a } b"},
		{"empty placeholder", "{}"},
		{"missing field after dot", "{a.}"},
		{"leading digit ident", "{1a.x}"},
		{"space in placeholder", "{a .x}"},
		{"double open", "{{a.x}"},
		{"bare open at end", "select {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Pos.Line < 1 || perr.Pos.Column < 1 {
				t.Errorf("error position not set: %+v", perr.Pos)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tpl, err := Parse("abs({t1.income}) - {t1.base}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := tpl.Render(func(r Ref) (string, error) {
		return "X_" + r.Field, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "abs(X_income) - X_base"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_ResolverError(t *testing.T) {
	tpl, err := Parse("{a.x}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sentinel := errors.New("unknown ref")
	_, err = tpl.Render(func(Ref) (string, error) { return "", sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("expected resolver error to propagate, got %v", err)
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("select 1,\n       {a.")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Pos.Line != 2 {
		t.Errorf("expected error on line 2, got %d", perr.Pos.Line)
	}
}
