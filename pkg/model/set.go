package model

import (
	"sort"
	"strings"
)

// FieldSet is an unordered set of fields, used for direct sources and
// lineage results.
type FieldSet map[Field]struct{}

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Add inserts a field into the set.
func (s FieldSet) Add(f Field) {
	s[f] = struct{}{}
}

// Contains reports whether f is in the set.
func (s FieldSet) Contains(f Field) bool {
	_, ok := s[f]
	return ok
}

// Len returns the number of fields in the set.
func (s FieldSet) Len() int {
	return len(s)
}

// Union returns a new set holding every field of s and other. Neither input
// is modified.
func (s FieldSet) Union(other FieldSet) FieldSet {
	out := make(FieldSet, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

// Sorted returns the fields ordered by qualified name, for deterministic
// presentation.
func (s FieldSet) Sorted() []Field {
	fields := make([]Field, 0, len(s))
	for f := range s {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].QualifiedName() < fields[j].QualifiedName()
	})
	return fields
}

func (s FieldSet) String() string {
	names := make([]string, 0, len(s))
	for _, f := range s.Sorted() {
		names = append(names, f.QualifiedName())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
