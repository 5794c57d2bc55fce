package model

import "fmt"

// NoScopeError reports field construction without an open build scope.
type NoScopeError struct {
	Table string // physical name of the table whose scope already ended
	Field string // physical name of the field being created
}

func (e *NoScopeError) Error() string {
	return fmt.Sprintf("no build scope open on table %s when creating field %s", e.Table, e.Field)
}

// ScopeReentryError reports an attempt to open a build scope on a table
// whose scope was already opened. Scopes cannot be reopened.
type ScopeReentryError struct {
	Table string
}

func (e *ScopeReentryError) Error() string {
	return fmt.Sprintf("build scope already opened for table %s", e.Table)
}

// ScopeMismatchError reports closing a build scope that is not open.
type ScopeMismatchError struct {
	Table string
}

func (e *ScopeMismatchError) Error() string {
	return fmt.Sprintf("build scope for table %s is not open", e.Table)
}

// DuplicateFieldError reports a physical field name collision within a table.
type DuplicateFieldError struct {
	Table string
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %s already exists on table %s", e.Field, e.Table)
}

// UndefinedFieldError reports a lookup of a field name absent from a table.
type UndefinedFieldError struct {
	Table string
	Field string
}

func (e *UndefinedFieldError) Error() string {
	return fmt.Sprintf("field %s is not defined on table %s", e.Field, e.Table)
}

// UnregisteredSourceError reports a lookup of an alias absent from a derived
// table's source mapping.
type UnregisteredSourceError struct {
	Table string
	Alias string
}

func (e *UnregisteredSourceError) Error() string {
	return fmt.Sprintf("source %s is not registered with table %s", e.Alias, e.Table)
}

// UnresolvedReferenceError reports an expression placeholder that could not
// be resolved to a field at field-construction time. Err carries the
// underlying cause (a template parse error, UnregisteredSourceError, or
// UndefinedFieldError).
type UnresolvedReferenceError struct {
	Table      string
	Field      string
	Expression string
	Err        error
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("cannot resolve expression %q for field %s on table %s: %v",
		e.Expression, e.Field, e.Table, e.Err)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return e.Err
}

// DuplicateAliasError reports two sources of a derived table sharing an
// alias. The reference behavior silently overwrote the first source; that
// corrupts compiled SQL, so the collision is a hard error here.
type DuplicateAliasError struct {
	Table string
	Alias string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("duplicate source alias %s on table %s", e.Alias, e.Table)
}

// InvalidGroupingKeyError reports a grouping key that does not belong to the
// table being grouped.
type InvalidGroupingKeyError struct {
	Table string
	Field string
}

func (e *InvalidGroupingKeyError) Error() string {
	return fmt.Sprintf("grouping key %s does not belong to table %s", e.Field, e.Table)
}
