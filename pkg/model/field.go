package model

import (
	"github.com/loomworks/loom/pkg/template"
)

// Field is implemented by SourceField and DerivedField. A field belongs to
// exactly one table, fixed at creation; fields are immutable once created.
type Field interface {
	// PhysicalName is the column's actual name within the database, unique
	// within the owning table.
	PhysicalName() string
	// LogicalName is the human-readable name; defaults to the physical name.
	LogicalName() string
	// Table returns the owning table.
	Table() Table
	// Expression returns the SQL fragment that produces this field in a
	// SELECT list.
	Expression() string
	// DirectSources returns the fields this field reads one step back. A
	// source field is its own lineage leaf and returns itself.
	DirectSources() FieldSet
	// Lineage returns the transitive closure of DirectSources, terminating
	// at source fields.
	Lineage() FieldSet
	// QualifiedName renders the field as "alias.physical_name" using the
	// owning table's alias.
	QualifiedName() string
	// Describe produces a one-line human-readable summary.
	Describe() string
}

// SourceField is an already-materialized column. It stores nothing about how
// it was created and considers itself its own source.
type SourceField struct {
	pname string
	lname string
	table Table
}

func (f *SourceField) PhysicalName() string { return f.pname }
func (f *SourceField) LogicalName() string  { return f.lname }
func (f *SourceField) Table() Table         { return f.table }

// Expression returns the bare physical name; a source field needs no
// computation.
func (f *SourceField) Expression() string { return f.pname }

func (f *SourceField) DirectSources() FieldSet { return NewFieldSet(f) }
func (f *SourceField) Lineage() FieldSet       { return NewFieldSet(f) }

func (f *SourceField) QualifiedName() string {
	return f.table.Alias() + "." + f.pname
}

func (f *SourceField) Describe() string {
	return f.pname + ": " + f.lname
}

// DerivedField is computed from a SQL expression over fields of the owning
// table's registered sources. Placeholders are resolved eagerly at creation,
// so rendering can never fail afterwards.
type DerivedField struct {
	pname   string
	lname   string
	table   *DerivedTable
	tpl     *template.Template
	sources FieldSet
	byKey   map[string]Field
}

func (f *DerivedField) PhysicalName() string { return f.pname }
func (f *DerivedField) LogicalName() string  { return f.lname }
func (f *DerivedField) Table() Table         { return f.table }

// Expression substitutes every placeholder with the referenced field's
// fully-qualified name and aliases the result with the field's own physical
// name.
func (f *DerivedField) Expression() string {
	// The resolver below cannot fail: every ref was validated at creation.
	rendered, _ := f.tpl.Render(func(r template.Ref) (string, error) {
		return f.byKey[r.Key()].QualifiedName(), nil
	})
	return rendered + " AS " + f.pname
}

// Template returns the raw expression template the field was declared with.
func (f *DerivedField) Template() string { return f.tpl.Raw() }

func (f *DerivedField) DirectSources() FieldSet {
	return f.sources.Union(nil)
}

func (f *DerivedField) Lineage() FieldSet {
	lineage := NewFieldSet()
	for src := range f.sources {
		lineage = lineage.Union(src.Lineage())
	}
	return lineage
}

func (f *DerivedField) QualifiedName() string {
	return f.table.Alias() + "." + f.pname
}

func (f *DerivedField) Describe() string {
	return f.pname + ": " + f.lname
}
