package morphism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/schema"
)

func makeGraphSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sc := schema.New("graph")
	require.NoError(t, sc.AddSort("V"))
	require.NoError(t, sc.AddSort("E"))
	require.NoError(t, sc.AddHom("src", "E", "V"))
	require.NoError(t, sc.AddHom("tgt", "E", "V"))
	return sc
}

func makeLabeledSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sc := makeGraphSchema(t)
	require.NoError(t, sc.AddAttr("label", "V"))
	return sc
}

// makePath builds the instance 1 -> 2 -> ... -> n.
func makePath(t *testing.T, sc *schema.Schema, n int) *instance.Instance {
	t.Helper()
	x := instance.New(sc)
	x.AddElements("V", n)
	x.AddElements("E", n-1)
	for i := 1; i < n; i++ {
		require.NoError(t, x.SetHomValue("src", i, i))
		require.NoError(t, x.SetHomValue("tgt", i, i+1))
	}
	return x
}

func TestNew_ShapeValidation(t *testing.T) {
	sc := makeGraphSchema(t)
	dom := makePath(t, sc, 2)
	codom := makePath(t, sc, 3)

	tests := []struct {
		name  string
		parts map[string][]int
	}{
		{"missing component", map[string][]int{"V": {1, 2}}},
		{"wrong length", map[string][]int{"V": {1, 2, 3}, "E": {1}}},
		{"image zero", map[string][]int{"V": {0, 2}, "E": {1}}},
		{"image beyond codom", map[string][]int{"V": {1, 4}, "E": {1}}},
		{"unknown sort", map[string][]int{"V": {1, 2}, "E": {1}, "W": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(dom, codom, tt.parts)
			assert.Error(t, err)
		})
	}

	f, err := New(dom, codom, map[string][]int{"V": {2, 3}, "E": {2}})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Apply("V", 1))
	assert.Equal(t, 2, f.Apply("E", 1))
}

func TestNew_SchemaMismatch(t *testing.T) {
	a := instance.New(makeGraphSchema(t))
	b := instance.New(makeGraphSchema(t))

	// Equal shape is not enough: instances must share the schema value.
	_, err := New(a, b, map[string][]int{"V": {}, "E": {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestNew_CopiesComponents(t *testing.T) {
	sc := makeGraphSchema(t)
	dom := makePath(t, sc, 2)
	codom := makePath(t, sc, 2)

	parts := map[string][]int{"V": {1, 2}, "E": {1}}
	f, err := New(dom, codom, parts)
	require.NoError(t, err)

	parts["V"][0] = 2
	assert.Equal(t, 1, f.Apply("V", 1))
}

func TestIdentity(t *testing.T) {
	x := makePath(t, makeGraphSchema(t), 3)
	id := Identity(x)

	assert.Same(t, x, id.Dom())
	assert.Same(t, x, id.Codom())
	for i := 1; i <= 3; i++ {
		assert.Equal(t, i, id.Apply("V", i))
	}
	assert.True(t, id.Monic())
	assert.NoError(t, id.CheckNatural())
}

func TestThen_Composition(t *testing.T) {
	sc := makeGraphSchema(t)
	a := makePath(t, sc, 2)
	b := makePath(t, sc, 3)
	c := makePath(t, sc, 4)

	f, err := New(a, b, map[string][]int{"V": {2, 3}, "E": {2}})
	require.NoError(t, err)
	g, err := New(b, c, map[string][]int{"V": {1, 2, 3}, "E": {1, 2}})
	require.NoError(t, err)

	fg, err := f.Then(g)
	require.NoError(t, err)
	assert.Same(t, a, fg.Dom())
	assert.Same(t, c, fg.Codom())
	assert.Equal(t, 2, fg.Apply("V", 1))
	assert.Equal(t, 3, fg.Apply("V", 2))
	assert.Equal(t, 2, fg.Apply("E", 1))

	// Composition in the wrong direction is rejected.
	_, err = g.Then(f)
	assert.Error(t, err)
}

func TestCheckNatural_HomViolation(t *testing.T) {
	sc := makeGraphSchema(t)
	dom := makePath(t, sc, 2)   // edge 1 -> 2
	codom := makePath(t, sc, 3) // edges 1 -> 2 -> 3

	// Edge 1 of dom is sent to edge 2 of codom, but vertex 1 is sent to
	// vertex 1: src commutes only if vertex 1 went to vertex 2.
	f, err := New(dom, codom, map[string][]int{"V": {1, 3}, "E": {2}})
	require.NoError(t, err)

	err = f.CheckNatural()
	require.Error(t, err)
	assert.True(t, IsNaturality(err))

	var ne *NaturalityError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "src", ne.Column)
	assert.Equal(t, "E", ne.Sort)
	assert.Equal(t, 1, ne.Index)
	assert.False(t, f.Natural())
}

func TestCheckNatural_AttrViolation(t *testing.T) {
	sc := makeLabeledSchema(t)

	dom := instance.New(sc)
	dom.AddElements("V", 1)
	require.NoError(t, dom.SetAttr("label", []attr.Value{attr.NewString("a")}))

	codom := instance.New(sc)
	codom.AddElements("V", 2)
	require.NoError(t, codom.SetAttr("label", []attr.Value{attr.NewString("a"), attr.NewString("b")}))

	ok, err := New(dom, codom, map[string][]int{"V": {1}, "E": {}})
	require.NoError(t, err)
	assert.NoError(t, ok.CheckNatural())

	bad, err := New(dom, codom, map[string][]int{"V": {2}, "E": {}})
	require.NoError(t, err)

	var ne *NaturalityError
	require.ErrorAs(t, bad.CheckNatural(), &ne)
	assert.Equal(t, "label", ne.Column)
	assert.Equal(t, 1, ne.Index)
}

func TestMonic(t *testing.T) {
	sc := makeGraphSchema(t)
	dom := instance.New(sc)
	dom.AddElements("V", 2)
	codom := makePath(t, sc, 2)

	inj, err := New(dom, codom, map[string][]int{"V": {1, 2}, "E": {}})
	require.NoError(t, err)
	assert.True(t, inj.Monic())

	collapse, err := New(dom, codom, map[string][]int{"V": {1, 1}, "E": {}})
	require.NoError(t, err)
	assert.False(t, collapse.Monic())
}

func TestEqual(t *testing.T) {
	sc := makeGraphSchema(t)
	dom := makePath(t, sc, 2)
	codom := makePath(t, sc, 3)

	f, err := New(dom, codom, map[string][]int{"V": {1, 2}, "E": {1}})
	require.NoError(t, err)
	g, err := New(dom, codom, map[string][]int{"V": {1, 2}, "E": {1}})
	require.NoError(t, err)
	h, err := New(dom, codom, map[string][]int{"V": {2, 3}, "E": {2}})
	require.NoError(t, err)

	assert.True(t, f.Equal(g))
	assert.False(t, f.Equal(h))
}

func TestParts_DeepCopy(t *testing.T) {
	sc := makeGraphSchema(t)
	dom := makePath(t, sc, 2)
	f, err := New(dom, dom, map[string][]int{"V": {1, 2}, "E": {1}})
	require.NoError(t, err)

	parts := f.Parts()
	parts["V"][0] = 2
	assert.Equal(t, 1, f.Apply("V", 1))
}
