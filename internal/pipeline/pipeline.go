// Package pipeline maintains the registry and dependency graph of a
// pipeline's tables. Edges run from a source table to the derived tables
// reading it; because a derived table can only name already-registered
// tables as sources, the graph is acyclic by construction, and Sort verifies
// that as an internal consistency check.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/loomworks/loom/pkg/model"
)

// ID returns the graph identifier for a table: "schema.physical_name".
func ID(t model.Table) string {
	return t.Schema() + "." + t.PhysicalName()
}

// Pipeline is a named collection of tables with their dependency edges.
type Pipeline struct {
	name     string
	tables   map[string]model.Table
	order    []string            // registration order
	children map[string][]string // table -> dependents
	parents  map[string][]string // table -> dependencies
}

// New creates an empty pipeline.
func New(name string) *Pipeline {
	return &Pipeline{
		name:     name,
		tables:   make(map[string]model.Table),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Add registers tables. A derived table's sources must already be
// registered; that mirrors the construction ordering the model itself
// enforces and keeps forward references out of the graph.
func (p *Pipeline) Add(tables ...model.Table) error {
	for _, t := range tables {
		if err := p.add(t); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) add(t model.Table) error {
	id := ID(t)
	if _, exists := p.tables[id]; exists {
		return fmt.Errorf("table %s already registered in pipeline %s", id, p.name)
	}

	if dt, ok := t.(*model.DerivedTable); ok {
		for _, src := range dt.Sources() {
			srcID := ID(src)
			if _, exists := p.tables[srcID]; !exists {
				return fmt.Errorf("source %s of table %s is not registered; add sources before dependents", srcID, id)
			}
		}
	}

	p.tables[id] = t
	p.order = append(p.order, id)

	if dt, ok := t.(*model.DerivedTable); ok {
		for _, src := range dt.Sources() {
			srcID := ID(src)
			p.children[srcID] = append(p.children[srcID], id)
			p.parents[id] = append(p.parents[id], srcID)
		}
	}
	return nil
}

// Table returns a registered table by ID.
func (p *Pipeline) Table(id string) (model.Table, bool) {
	t, ok := p.tables[id]
	return t, ok
}

// Lookup finds a table by ID or bare physical name. A bare name that
// matches multiple schemas is an error.
func (p *Pipeline) Lookup(name string) (model.Table, error) {
	if t, ok := p.tables[name]; ok {
		return t, nil
	}
	var found model.Table
	for _, id := range p.order {
		t := p.tables[id]
		if t.PhysicalName() == name {
			if found != nil {
				return nil, fmt.Errorf("table name %s is ambiguous; qualify it as schema.name", name)
			}
			found = t
		}
	}
	if found == nil {
		return nil, fmt.Errorf("table %s is not registered in pipeline %s", name, p.name)
	}
	return found, nil
}

// Tables returns every table in registration order.
func (p *Pipeline) Tables() []model.Table {
	out := make([]model.Table, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.tables[id])
	}
	return out
}

// Sources returns the pipeline's source tables in registration order.
func (p *Pipeline) Sources() []*model.SourceTable {
	var out []*model.SourceTable
	for _, id := range p.order {
		if st, ok := p.tables[id].(*model.SourceTable); ok {
			out = append(out, st)
		}
	}
	return out
}

// Derived returns the pipeline's derived tables in execution order.
func (p *Pipeline) Derived() ([]*model.DerivedTable, error) {
	sorted, err := p.Sort()
	if err != nil {
		return nil, err
	}
	var out []*model.DerivedTable
	for _, t := range sorted {
		if dt, ok := t.(*model.DerivedTable); ok {
			out = append(out, dt)
		}
	}
	return out, nil
}

// Parents returns the dependencies of a table, sorted.
func (p *Pipeline) Parents(id string) []string {
	out := append([]string(nil), p.parents[id]...)
	sort.Strings(out)
	return out
}

// Children returns the dependents of a table, sorted.
func (p *Pipeline) Children(id string) []string {
	out := append([]string(nil), p.children[id]...)
	sort.Strings(out)
	return out
}

// Sort returns every table in topological order using Kahn's algorithm,
// breaking ties by registration order so output is deterministic. A cycle
// is impossible through the public API; the check guards against misuse.
func (p *Pipeline) Sort() ([]model.Table, error) {
	indegree := make(map[string]int, len(p.tables))
	for id := range p.tables {
		indegree[id] = len(p.parents[id])
	}

	index := make(map[string]int, len(p.order))
	for i, id := range p.order {
		index[id] = i
	}

	var queue []string
	for _, id := range p.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var sorted []model.Table
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool { return index[queue[i]] < index[queue[j]] })
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, p.tables[id])

		for _, child := range p.children[id] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(sorted) != len(p.tables) {
		return nil, fmt.Errorf("dependency cycle detected in pipeline %s", p.name)
	}
	return sorted, nil
}
