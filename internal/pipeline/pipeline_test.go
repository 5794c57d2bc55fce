package pipeline

import (
	"testing"

	"github.com/loomworks/loom/pkg/model"
)

func buildSource(t *testing.T, schema, pname, alias string, fields ...string) *model.SourceTable {
	t.Helper()
	table := model.NewSourceTable(schema, pname, "", alias)
	err := table.Build(func(b *model.Builder) error {
		for _, f := range fields {
			if _, err := b.Source(f, ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to build source table: %v", err)
	}
	return table
}

func buildDerived(t *testing.T, schema, pname, alias string, src model.Table, exprs map[string]string) *model.DerivedTable {
	t.Helper()
	table, err := model.NewDerivedTable(schema, pname, "", alias, []model.Table{src}, "{"+src.Alias()+"}")
	if err != nil {
		t.Fatalf("failed to create derived table: %v", err)
	}
	err = table.Build(func(b *model.Builder) error {
		for name, expr := range exprs {
			if _, err := b.Derived(name, expr, ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to build derived table: %v", err)
	}
	return table
}

func TestPipeline_AddAndLookup(t *testing.T) {
	raw := buildSource(t, "main", "raw", "a", "id")
	stage := buildDerived(t, "main", "stage", "b", raw, map[string]string{"id": "{a.id}"})

	p := New("test")
	if err := p.Add(raw, stage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := p.Table("main.raw"); !ok {
		t.Error("expected main.raw to be registered")
	}

	got, err := p.Lookup("stage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != model.Table(stage) {
		t.Error("Lookup returned wrong table")
	}

	if _, err := p.Lookup("missing"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestPipeline_DuplicateTable(t *testing.T) {
	raw := buildSource(t, "main", "raw", "a", "id")

	p := New("test")
	if err := p.Add(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Add(raw); err == nil {
		t.Error("expected error for duplicate table")
	}
}

func TestPipeline_SourcesBeforeDependents(t *testing.T) {
	raw := buildSource(t, "main", "raw", "a", "id")
	stage := buildDerived(t, "main", "stage", "b", raw, map[string]string{"id": "{a.id}"})

	p := New("test")
	if err := p.Add(stage); err == nil {
		t.Error("expected error when adding a dependent before its source")
	}
}

func TestPipeline_SortAndDerived(t *testing.T) {
	raw := buildSource(t, "main", "raw", "a", "id", "vendor_id")
	stage := buildDerived(t, "main", "stage", "b", raw, map[string]string{"id": "{a.id}"})
	book := buildDerived(t, "main", "book", "c", stage, map[string]string{"id": "{b.id}"})

	p := New("test")
	if err := p.Add(raw, stage, book); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sorted, err := p.Sort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sorted) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(sorted))
	}
	pos := make(map[string]int)
	for i, tbl := range sorted {
		pos[ID(tbl)] = i
	}
	if pos["main.raw"] > pos["main.stage"] || pos["main.stage"] > pos["main.book"] {
		t.Errorf("topological order violated: %v", pos)
	}

	derived, err := p.Derived()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(derived) != 2 {
		t.Fatalf("expected 2 derived tables, got %d", len(derived))
	}
	if derived[0].PhysicalName() != "stage" || derived[1].PhysicalName() != "book" {
		t.Errorf("derived tables out of order: %s, %s", derived[0].PhysicalName(), derived[1].PhysicalName())
	}

	sources := p.Sources()
	if len(sources) != 1 || sources[0].PhysicalName() != "raw" {
		t.Errorf("expected one source table raw, got %v", sources)
	}
}

func TestPipeline_ParentsAndChildren(t *testing.T) {
	raw := buildSource(t, "main", "raw", "a", "id")
	stage := buildDerived(t, "main", "stage", "b", raw, map[string]string{"id": "{a.id}"})

	p := New("test")
	if err := p.Add(raw, stage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parents := p.Parents("main.stage")
	if len(parents) != 1 || parents[0] != "main.raw" {
		t.Errorf("expected parents [main.raw], got %v", parents)
	}
	children := p.Children("main.raw")
	if len(children) != 1 || children[0] != "main.stage" {
		t.Errorf("expected children [main.stage], got %v", children)
	}
}
