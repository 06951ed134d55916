package remoter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	l := NewList(1, 2, 3)
	require.NoError(t, l.Append(4))
	require.NoError(t, l.Set(0, 10))
	require.NoError(t, l.Remove(1))
	assert.Equal(t, []int{10, 3, 4}, l.Items())
	assert.Error(t, l.Set(5, 1))

	view := l.ReadOnlyView()
	assert.ErrorIs(t, view.Append(5), ErrReadOnly)
	assert.ErrorIs(t, view.Set(0, 1), ErrReadOnly)
	assert.ErrorIs(t, view.Remove(0), ErrReadOnly)

	require.NoError(t, l.Append(5))
	assert.Equal(t, 4, view.Len(), "views share storage")

	var seen []int
	for i, v := range view.All() {
		seen = append(seen, i*100+v)
	}
	assert.Equal(t, []int{10, 103, 204, 305}, seen)
}

func TestReadOnlyList(t *testing.T) {
	l := NewReadOnlyList("a", "b")
	assert.True(t, l.ReadOnly())
	assert.ErrorIs(t, l.Append("c"), ErrReadOnly)
	assert.Equal(t, "b", l.At(1))
	assert.Equal(t, "List[a b]", l.String())
}

func TestZeroListIsNil(t *testing.T) {
	var l List[int]
	assert.True(t, l.IsNil())
	assert.True(t, l.ReadOnly())
	assert.Zero(t, l.Len())
	assert.Nil(t, l.Items())
	assert.ErrorIs(t, l.Append(1), ErrReadOnly)

	empty := NewList[int]()
	assert.False(t, empty.IsNil())
	assert.NotNil(t, empty.Items())
}

func TestMap(t *testing.T) {
	m := NewMap[string, int]()
	require.NoError(t, m.Put("b", 1))
	require.NoError(t, m.Put("a", 2))
	require.NoError(t, m.Put("b", 3))
	assert.Equal(t, []string{"b", "a"}, m.Keys(), "insertion order is kept")

	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	require.NoError(t, m.Delete("b"))
	require.NoError(t, m.Delete("missing"))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "Map[a:2]", m.String())

	view := m.ReadOnlyView()
	assert.ErrorIs(t, view.Put("c", 1), ErrReadOnly)
	assert.ErrorIs(t, view.Delete("a"), ErrReadOnly)
	_, ok = view.Get("a")
	assert.True(t, ok)
}

func TestZeroMapIsNil(t *testing.T) {
	var m Map[string, bool]
	assert.True(t, m.IsNil())
	assert.ErrorIs(t, m.Put("x", true), ErrReadOnly)
	_, ok := m.Get("x")
	assert.False(t, ok)
	for range m.All() {
		t.Fatal("nil map has no entries")
	}
}
