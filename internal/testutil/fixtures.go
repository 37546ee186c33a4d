package testutil

import (
	"fmt"
	"sort"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/morphism"
	"github.com/graphspan/splice/internal/rewrite"
	"github.com/graphspan/splice/internal/schema"
)

// Fixture schema names accepted by SchemaByName and scenario files.
const (
	SchemaGraph        = "graph"
	SchemaLabeledGraph = "labeled-graph"
	SchemaTwoColor     = "two-color"
)

// must panics on error. Fixture builders are statically correct; an
// error here is a bug in the fixture itself.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("testutil: fixture construction failed: %v", err))
	}
}

// GraphSchema builds the directed multigraph schema: vertices V, edges E,
// foreign keys src and tgt from E to V.
//
// Each call returns a fresh schema value. Instances, morphisms, and
// rules only compose over the same schema pointer, so build the schema
// once per scenario and thread it through.
func GraphSchema() *schema.Schema {
	sc := schema.New("graph")
	must(sc.AddSort("V"))
	must(sc.AddSort("E"))
	must(sc.AddHom("src", "E", "V"))
	must(sc.AddHom("tgt", "E", "V"))
	return sc
}

// LabeledGraphSchema builds the graph schema plus a label attribute on
// vertices.
func LabeledGraphSchema() *schema.Schema {
	sc := schema.New("labeled-graph")
	must(sc.AddSort("V"))
	must(sc.AddSort("E"))
	must(sc.AddHom("src", "E", "V"))
	must(sc.AddHom("tgt", "E", "V"))
	must(sc.AddAttr("label", "V"))
	return sc
}

// TwoColorSchema builds a bipartite shape: two vertex sorts A and B and
// an edge sort E whose from column lands in A and whose to column lands
// in B. Exercises columns that cross sorts.
func TwoColorSchema() *schema.Schema {
	sc := schema.New("two-color")
	must(sc.AddSort("A"))
	must(sc.AddSort("B"))
	must(sc.AddSort("E"))
	must(sc.AddHom("from", "E", "A"))
	must(sc.AddHom("to", "E", "B"))
	return sc
}

// SchemaByName resolves a fixture schema name from a scenario file.
func SchemaByName(name string) (*schema.Schema, error) {
	switch name {
	case SchemaGraph:
		return GraphSchema(), nil
	case SchemaLabeledGraph:
		return LabeledGraphSchema(), nil
	case SchemaTwoColor:
		return TwoColorSchema(), nil
	default:
		return nil, fmt.Errorf("unknown fixture schema %q (have %v)", name, SchemaNames())
	}
}

// SchemaNames lists the registered fixture schema names, sorted.
func SchemaNames() []string {
	names := []string{SchemaGraph, SchemaLabeledGraph, SchemaTwoColor}
	sort.Strings(names)
	return names
}

// DiscreteGraph builds n vertices and no edges over a graph-shaped
// schema.
func DiscreteGraph(sc *schema.Schema, n int) *instance.Instance {
	x := instance.New(sc)
	x.AddElements("V", n)
	return x
}

// PathGraph builds the path on n vertices: edge i runs i -> i+1.
func PathGraph(sc *schema.Schema, n int) *instance.Instance {
	x := DiscreteGraph(sc, n)
	for i := 1; i < n; i++ {
		AddEdge(x, i, i+1)
	}
	return x
}

// CycleGraph builds the cycle on n vertices: the path plus a closing
// edge n -> 1.
func CycleGraph(sc *schema.Schema, n int) *instance.Instance {
	x := PathGraph(sc, n)
	if n > 0 {
		AddEdge(x, n, 1)
	}
	return x
}

// AddEdge appends one edge from src to tgt and returns its index.
func AddEdge(x *instance.Instance, src, tgt int) int {
	_, e := x.AddElements("E", 1)
	must(x.SetHomValue("src", e, src))
	must(x.SetHomValue("tgt", e, tgt))
	return e
}

// LabelVertices assigns the given labels to vertices 1..len(labels).
// The instance must be over a schema with a label attribute on V.
func LabelVertices(x *instance.Instance, labels ...string) {
	for i, l := range labels {
		must(x.SetAttrValue("label", i+1, attr.NewString(l)))
	}
}

// The rule builders below target graph-shaped schemas without attribute
// columns; over LabeledGraphSchema their instances would fail validation
// with unset labels. Scenarios over the labeled schema spell their rules
// out as instance literals instead.

// DeleteVertexRule deletes one vertex: the pattern is a single vertex,
// interface and replacement are empty. Applicable only where the matched
// vertex has no incident edges.
func DeleteVertexRule(sc *schema.Schema) *rewrite.Rule {
	pattern := DiscreteGraph(sc, 1)
	iface := instance.New(sc)
	left, err := morphism.New(iface, pattern, nil)
	must(err)
	rule, err := rewrite.NewRule("delete-vertex", left, morphism.Identity(iface))
	must(err)
	return rule
}

// DeleteEdgeRule deletes one edge and keeps its endpoints.
func DeleteEdgeRule(sc *schema.Schema) *rewrite.Rule {
	pattern := DiscreteGraph(sc, 2)
	AddEdge(pattern, 1, 2)
	iface := DiscreteGraph(sc, 2)
	left, err := morphism.New(iface, pattern, map[string][]int{"V": {1, 2}, "E": {}})
	must(err)
	rule, err := rewrite.NewRule("delete-edge", left, morphism.Identity(iface))
	must(err)
	return rule
}

// AddLoopRule attaches a loop edge to the matched vertex.
func AddLoopRule(sc *schema.Schema) *rewrite.Rule {
	iface := DiscreteGraph(sc, 1)
	repl := DiscreteGraph(sc, 1)
	AddEdge(repl, 1, 1)
	right, err := morphism.New(iface, repl, map[string][]int{"V": {1}, "E": {}})
	must(err)
	rule, err := rewrite.NewRule("add-loop", morphism.Identity(iface), right)
	must(err)
	return rule
}

// MergeVerticesRule folds two matched vertices into one. No deletion is
// involved, so it is applicable at every match, including non-injective
// ones.
func MergeVerticesRule(sc *schema.Schema) *rewrite.Rule {
	iface := DiscreteGraph(sc, 2)
	repl := DiscreteGraph(sc, 1)
	right, err := morphism.New(iface, repl, map[string][]int{"V": {1, 1}, "E": {}})
	must(err)
	rule, err := rewrite.NewRule("merge-vertices", morphism.Identity(iface), right)
	must(err)
	return rule
}

// IdentityRule matches x and changes nothing.
func IdentityRule(name string, x *instance.Instance) *rewrite.Rule {
	rule, err := rewrite.Identity(name, x)
	must(err)
	return rule
}
