// Package model is the declarative table/field graph at the heart of loom.
//
// A pipeline is described as source tables (already materialized data) and
// derived tables (computed from other tables via per-field SQL expressions).
// Fields are registered through a build scope opened with Begin or Build;
// derived-field expressions reference upstream fields with {alias.field}
// placeholders, resolved eagerly against the owning table's registered
// sources. Each derived table compiles to a single CREATE TABLE AS SELECT
// statement, and every field answers lineage queries down to its source
// roots.
//
//	raw := model.NewSourceTable("main", "raw_trips", "Raw trips", "a")
//	err := raw.Build(func(b *model.Builder) error {
//	    _, err := b.Source("income", "")
//	    return err
//	})
//
//	stage, _ := model.NewDerivedTable("main", "stage_trips", "", "b",
//	    []model.Table{raw}, "{a}")
//	err = stage.Build(func(b *model.Builder) error {
//	    _, err := b.Derived("income_abs", "abs({a.income})", "")
//	    return err
//	})
//
//	sql := stage.Compile()
//
// The model performs no I/O and never executes SQL; running the compiled
// statements against a database is the engine's job.
package model
