package model

import (
	"fmt"
	"strings"

	"github.com/loomworks/loom/pkg/template"
)

// Table is implemented by SourceTable and DerivedTable. The interface is
// sealed: tables outside this package cannot satisfy it.
type Table interface {
	// Schema is the database schema the table lives in.
	Schema() string
	// PhysicalName is the table's actual name within the database.
	PhysicalName() string
	// LogicalName is the human-readable name; defaults to the physical name.
	LogicalName() string
	// Alias identifies the table when it participates as a source of
	// another table; defaults to the physical name.
	Alias() string
	// Ref renders the fully-qualified "schema.physical AS alias" reference.
	Ref() string
	// Field looks up a field by physical name.
	Field(name string) (Field, error)
	// Fields returns the table's fields in registration order.
	Fields() []Field
	// Describe produces a human-readable summary of the table.
	Describe() string

	base() *tableBase
}

type buildState int

const (
	stateNew buildState = iota
	stateOpen
	stateClosed
)

// tableBase carries the identity and field registry shared by both table
// kinds.
type tableBase struct {
	schema string
	pname  string
	lname  string
	alias  string
	fields map[string]Field
	order  []string
	state  buildState
}

func newTableBase(schema, pname, lname, alias string) tableBase {
	if lname == "" {
		lname = pname
	}
	if alias == "" {
		alias = pname
	}
	return tableBase{
		schema: schema,
		pname:  pname,
		lname:  lname,
		alias:  alias,
		fields: make(map[string]Field),
	}
}

func (t *tableBase) Schema() string       { return t.schema }
func (t *tableBase) PhysicalName() string { return t.pname }
func (t *tableBase) LogicalName() string  { return t.lname }
func (t *tableBase) Alias() string        { return t.alias }

func (t *tableBase) Ref() string {
	return fmt.Sprintf("%s.%s AS %s", t.schema, t.pname, t.alias)
}

func (t *tableBase) Field(name string) (Field, error) {
	f, ok := t.fields[name]
	if !ok {
		return nil, &UndefinedFieldError{Table: t.pname, Field: name}
	}
	return f, nil
}

func (t *tableBase) Fields() []Field {
	fields := make([]Field, 0, len(t.order))
	for _, name := range t.order {
		fields = append(fields, t.fields[name])
	}
	return fields
}

func (t *tableBase) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", t.lname)
	fmt.Fprintf(&b, "Schema: %s\n", t.schema)
	fmt.Fprintf(&b, "Physical Name: %s\n\n", t.pname)
	b.WriteString("Fields:\n")
	for _, name := range t.order {
		fmt.Fprintf(&b, "    - %s\n", t.fields[name].Describe())
	}
	return b.String()
}

func (t *tableBase) base() *tableBase { return t }

// addField registers a field under its physical name, preserving insertion
// order for reproducible SQL output.
func (t *tableBase) addField(f Field) error {
	name := f.PhysicalName()
	if _, exists := t.fields[name]; exists {
		return &DuplicateFieldError{Table: t.pname, Field: name}
	}
	t.fields[name] = f
	t.order = append(t.order, name)
	return nil
}

// SourceTable is a leaf table: its data is already materialized in the
// database, and its fields are their own lineage roots.
type SourceTable struct {
	tableBase
}

// NewSourceTable declares a source table. Pass empty strings to default the
// logical name and alias to the physical name.
func NewSourceTable(schema, pname, lname, alias string) *SourceTable {
	return &SourceTable{tableBase: newTableBase(schema, pname, lname, alias)}
}

// DerivedTable is computed from other tables via a CREATE TABLE AS SELECT
// statement assembled from its fields, from-clause template, and grouping
// keys.
type DerivedTable struct {
	tableBase

	sources     map[string]Table
	sourceOrder []string
	from        *template.Template
	groupBy     []Field
}

// NewDerivedTable declares a derived table over previously constructed
// sources, keyed by each source's own alias. The from-clause template uses
// {alias} placeholders, each substituted at compile time with the source's
// fully-qualified reference.
//
// Sources must already be fully constructed tables; this ordering is what
// keeps the table graph acyclic, so the lineage traversal needs no cycle
// guard.
func NewDerivedTable(schema, pname, lname, alias string, sources []Table, fromTemplate string) (*DerivedTable, error) {
	t := &DerivedTable{
		tableBase: newTableBase(schema, pname, lname, alias),
		sources:   make(map[string]Table, len(sources)),
	}

	for _, src := range sources {
		a := src.Alias()
		if _, exists := t.sources[a]; exists {
			return nil, &DuplicateAliasError{Table: pname, Alias: a}
		}
		t.sources[a] = src
		t.sourceOrder = append(t.sourceOrder, a)
	}

	from, err := template.Parse(fromTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid from template for table %s: %w", pname, err)
	}
	for _, ref := range from.Refs() {
		if ref.Field != "" {
			return nil, fmt.Errorf("from template for table %s: placeholder %s must name a source alias", pname, ref)
		}
		if _, ok := t.sources[ref.Alias]; !ok {
			return nil, &UnregisteredSourceError{Table: pname, Alias: ref.Alias}
		}
	}
	t.from = from

	return t, nil
}

// Source returns the registered source table for the given alias.
func (t *DerivedTable) Source(alias string) (Table, error) {
	src, ok := t.sources[alias]
	if !ok {
		return nil, &UnregisteredSourceError{Table: t.pname, Alias: alias}
	}
	return src, nil
}

// Sources returns the source tables in registration order.
func (t *DerivedTable) Sources() []Table {
	out := make([]Table, 0, len(t.sourceOrder))
	for _, alias := range t.sourceOrder {
		out = append(out, t.sources[alias])
	}
	return out
}

// GroupBy replaces the grouping-key set. Every key must be a field of this
// table; keys are deduplicated and kept in the given order. Grouping keys
// stay settable after the build scope closes.
func (t *DerivedTable) GroupBy(fields ...Field) error {
	keys := make([]Field, 0, len(fields))
	seen := make(map[Field]struct{}, len(fields))
	for _, f := range fields {
		if f.Table() != Table(t) {
			return &InvalidGroupingKeyError{Table: t.pname, Field: f.PhysicalName()}
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		keys = append(keys, f)
	}
	t.groupBy = keys
	return nil
}

// GroupKeys returns the current grouping keys in the order they were set.
func (t *DerivedTable) GroupKeys() []Field {
	return append([]Field(nil), t.groupBy...)
}

// resolveRefs resolves every placeholder of a parsed field-expression
// template against the table's registered sources. It returns the distinct
// direct-source set and a by-key index used for rendering.
func (t *DerivedTable) resolveRefs(tpl *template.Template) (FieldSet, map[string]Field, error) {
	set := NewFieldSet()
	byKey := make(map[string]Field)
	for _, ref := range tpl.Refs() {
		if ref.Field == "" {
			return nil, nil, fmt.Errorf("placeholder %s must reference a field as {alias.field}", ref)
		}
		src, ok := t.sources[ref.Alias]
		if !ok {
			return nil, nil, &UnregisteredSourceError{Table: t.pname, Alias: ref.Alias}
		}
		f, err := src.Field(ref.Field)
		if err != nil {
			return nil, nil, err
		}
		set.Add(f)
		byKey[ref.Key()] = f
	}
	return set, byKey, nil
}
