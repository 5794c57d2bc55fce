package model

import (
	"strings"

	"github.com/loomworks/loom/pkg/template"
)

const indent = "    "

// SelectClause joins every field's expression in registration order,
// comma-separated, one per line.
func (t *DerivedTable) SelectClause() string {
	exprs := make([]string, 0, len(t.order))
	for _, f := range t.Fields() {
		exprs = append(exprs, f.Expression())
	}
	joined := strings.Join(exprs, ",\n")
	return indent + strings.ReplaceAll(joined, "\n", "\n"+indent)
}

// FromClause renders the from-clause template, substituting each {alias}
// placeholder with the source table's fully-qualified reference.
func (t *DerivedTable) FromClause() string {
	// Aliases were validated against the source mapping at construction.
	rendered, _ := t.from.Render(func(r template.Ref) (string, error) {
		return t.sources[r.Alias].Ref(), nil
	})
	return rendered
}

// GroupByClause renders the GROUP BY clause over the grouping keys, or an
// empty string when no keys are set.
func (t *DerivedTable) GroupByClause() string {
	if len(t.groupBy) == 0 {
		return ""
	}
	names := make([]string, 0, len(t.groupBy))
	for _, f := range t.groupBy {
		names = append(names, f.PhysicalName())
	}
	return "GROUP BY\n" + indent + strings.Join(names, ",\n"+indent)
}

// whereClause is a reserved slot in the statement template; filters are not
// part of the model yet.
func (t *DerivedTable) whereClause() string {
	return ""
}

// Compile assembles the full CREATE TABLE AS SELECT statement for the table.
func (t *DerivedTable) Compile() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(t.pname)
	b.WriteString(" AS\nSELECT\n")
	b.WriteString(t.SelectClause())
	b.WriteString("\nFROM\n")
	b.WriteString(indent + t.FromClause())
	if where := t.whereClause(); where != "" {
		b.WriteString("\nWHERE\n" + indent + where)
	}
	if groupBy := t.GroupByClause(); groupBy != "" {
		b.WriteString("\n" + groupBy)
	}
	b.WriteString(";")
	return b.String()
}
