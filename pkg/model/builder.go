package model

import (
	"fmt"

	"github.com/loomworks/loom/pkg/template"
)

// Builder is the handle through which fields are registered on a table. It
// is returned by Begin and stays valid until End; a table's scope can be
// opened exactly once, which also makes forward references between tables
// impossible.
type Builder struct {
	table   Table
	derived *DerivedTable // nil when building a source table
	done    bool
}

func begin(t Table, derived *DerivedTable) (*Builder, error) {
	b := t.base()
	if b.state != stateNew {
		return nil, &ScopeReentryError{Table: b.pname}
	}
	b.state = stateOpen
	return &Builder{table: t, derived: derived}, nil
}

// Begin opens the table's build scope.
func (t *SourceTable) Begin() (*Builder, error) {
	return begin(t, nil)
}

// Begin opens the table's build scope.
func (t *DerivedTable) Begin() (*Builder, error) {
	return begin(t, t)
}

// Build opens the table's build scope, runs fn, and closes the scope even
// when fn fails.
func (t *SourceTable) Build(fn func(*Builder) error) error {
	b, err := t.Begin()
	if err != nil {
		return err
	}
	return b.run(fn)
}

// Build opens the table's build scope, runs fn, and closes the scope even
// when fn fails.
func (t *DerivedTable) Build(fn func(*Builder) error) error {
	b, err := t.Begin()
	if err != nil {
		return err
	}
	return b.run(fn)
}

func (b *Builder) run(fn func(*Builder) error) error {
	if err := fn(b); err != nil {
		_ = b.End()
		return err
	}
	return b.End()
}

// End closes the build scope. The table accepts no fields afterwards; there
// is no reopen.
func (b *Builder) End() error {
	if b.done {
		return &ScopeMismatchError{Table: b.table.PhysicalName()}
	}
	b.done = true
	b.table.base().state = stateClosed
	return nil
}

// Source registers a source field. Pass an empty lname to default the
// logical name to the physical name.
func (b *Builder) Source(pname, lname string) (*SourceField, error) {
	if b.done {
		return nil, &NoScopeError{Table: b.table.PhysicalName(), Field: pname}
	}
	if lname == "" {
		lname = pname
	}
	f := &SourceField{pname: pname, lname: lname, table: b.table}
	if err := b.table.base().addField(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Derived registers a derived field computed by expr, a SQL fragment with
// {alias.field} placeholders resolved against the table's registered
// sources. Resolution happens here, eagerly; the field is not registered if
// any placeholder fails to resolve.
func (b *Builder) Derived(pname, expr, lname string) (*DerivedField, error) {
	if b.done {
		return nil, &NoScopeError{Table: b.table.PhysicalName(), Field: pname}
	}
	if b.derived == nil {
		return nil, &UnresolvedReferenceError{
			Table:      b.table.PhysicalName(),
			Field:      pname,
			Expression: expr,
			Err:        fmt.Errorf("table %s is a source table and has no registered sources", b.table.PhysicalName()),
		}
	}

	f, err := b.newDerived(pname, expr, lname)
	if err != nil {
		return nil, err
	}
	if err := b.table.base().addField(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Passthrough registers a derived field that inherits the physical and
// logical name of the single field its expression references. Useful for
// plain selects and casts of an upstream field.
func (b *Builder) Passthrough(expr string) (*DerivedField, error) {
	if b.done {
		return nil, &NoScopeError{Table: b.table.PhysicalName(), Field: expr}
	}
	if b.derived == nil {
		return nil, &UnresolvedReferenceError{
			Table:      b.table.PhysicalName(),
			Expression: expr,
			Err:        fmt.Errorf("table %s is a source table and has no registered sources", b.table.PhysicalName()),
		}
	}

	tpl, err := template.Parse(expr)
	if err != nil {
		return nil, &UnresolvedReferenceError{Table: b.table.PhysicalName(), Expression: expr, Err: err}
	}
	set, _, err := b.derived.resolveRefs(tpl)
	if err != nil {
		return nil, &UnresolvedReferenceError{Table: b.table.PhysicalName(), Expression: expr, Err: err}
	}
	if set.Len() != 1 {
		return nil, &UnresolvedReferenceError{
			Table:      b.table.PhysicalName(),
			Expression: expr,
			Err:        fmt.Errorf("passthrough expression must reference exactly one field, found %d", set.Len()),
		}
	}
	src := set.Sorted()[0]
	return b.Derived(src.PhysicalName(), expr, src.LogicalName())
}

func (b *Builder) newDerived(pname, expr, lname string) (*DerivedField, error) {
	tpl, err := template.Parse(expr)
	if err != nil {
		return nil, &UnresolvedReferenceError{Table: b.table.PhysicalName(), Field: pname, Expression: expr, Err: err}
	}
	set, byKey, err := b.derived.resolveRefs(tpl)
	if err != nil {
		return nil, &UnresolvedReferenceError{Table: b.table.PhysicalName(), Field: pname, Expression: expr, Err: err}
	}
	if lname == "" {
		lname = pname
	}
	return &DerivedField{
		pname:   pname,
		lname:   lname,
		table:   b.derived,
		tpl:     tpl,
		sources: set,
		byKey:   byKey,
	}, nil
}
