package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGraphSchema(t *testing.T) *Schema {
	t.Helper()
	s := New("graph")
	require.NoError(t, s.AddSort("V"))
	require.NoError(t, s.AddSort("E"))
	require.NoError(t, s.AddHom("src", "E", "V"))
	require.NoError(t, s.AddHom("tgt", "E", "V"))
	return s
}

func TestSchema_Build(t *testing.T) {
	s := makeGraphSchema(t)

	assert.Equal(t, "graph", s.Name())
	assert.Len(t, s.Sorts(), 2)
	assert.Len(t, s.Homs(), 2)
	assert.Empty(t, s.Attrs())
	assert.True(t, s.HasSort("V"))
	assert.False(t, s.HasSort("W"))

	h, ok := s.Hom("src")
	require.True(t, ok)
	assert.Equal(t, Hom{Name: "src", Src: "E", Tgt: "V"}, h)

	_, ok = s.Hom("label")
	assert.False(t, ok)
}

func TestSchema_DuplicateSort(t *testing.T) {
	s := New("dup")
	require.NoError(t, s.AddSort("V"))
	err := s.AddSort("V")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate sort "V"`)
}

func TestSchema_DuplicateColumnAcrossKinds(t *testing.T) {
	s := New("dup")
	require.NoError(t, s.AddSort("V"))
	require.NoError(t, s.AddAttr("label", "V"))

	// A hom may not reuse an attr name and vice versa.
	err := s.AddHom("label", "V", "V")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "label"`)

	err = s.AddAttr("label", "V")
	assert.Error(t, err)
}

func TestSchema_UnknownSortReference(t *testing.T) {
	s := New("bad")
	require.NoError(t, s.AddSort("V"))

	err := s.AddHom("src", "E", "V")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown source sort "E"`)

	err = s.AddHom("out", "V", "E")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target sort "E"`)

	err = s.AddAttr("label", "E")
	assert.Error(t, err)
}

func TestSchema_EmptyNames(t *testing.T) {
	s := New("empty")
	assert.Error(t, s.AddSort(""))
	require.NoError(t, s.AddSort("V"))
	assert.Error(t, s.AddHom("", "V", "V"))
	assert.Error(t, s.AddAttr("", "V"))
}

func TestSchema_ColumnQueries(t *testing.T) {
	s := makeGraphSchema(t)
	require.NoError(t, s.AddAttr("weight", "E"))

	from := s.HomsFrom("E")
	require.Len(t, from, 2)
	assert.Equal(t, "src", from[0].Name)
	assert.Equal(t, "tgt", from[1].Name)

	into := s.HomsInto("V")
	assert.Len(t, into, 2)
	assert.Empty(t, s.HomsInto("E"))

	attrs := s.AttrsOn("E")
	require.Len(t, attrs, 1)
	assert.Equal(t, "weight", attrs[0].Name)
	assert.Empty(t, s.AttrsOn("V"))
}
