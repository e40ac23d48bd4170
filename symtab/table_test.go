package symtab_test

import (
	"testing"

	"github.com/on-the-ground/modkit_go/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_PreservesDefinitionOrder(t *testing.T) {
	table := symtab.New()
	table.Set("zeta", 1)
	table.Set("alpha", 2)
	table.Set("mid", 3)
	table.Set("zeta", 4)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, table.Keys())
	v, ok := table.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, table.Len())
}

func TestTable_ShapeTracksAddAndRemoveOnly(t *testing.T) {
	table := symtab.New()
	start := table.Shape()

	table.Set("a", 1)
	afterAdd := table.Shape()
	assert.NotEqual(t, start, afterAdd)

	table.Set("a", 2)
	assert.Equal(t, afterAdd, table.Shape(), "value update must not change shape")

	assert.True(t, table.Delete("a"))
	assert.NotEqual(t, afterAdd, table.Shape())

	before := table.Shape()
	assert.False(t, table.Delete("a"))
	assert.Equal(t, before, table.Shape())
}

func TestTable_CloneSharesValuesNotMapping(t *testing.T) {
	counter := map[string]int{}
	table := symtab.New()
	table.Set("counter", counter)

	clone := table.Clone()
	clone.Set("extra", true)
	assert.False(t, table.Has("extra"))

	v, _ := clone.Get("counter")
	v.(map[string]int)["hits"] = 1
	assert.Equal(t, 1, counter["hits"])
}

func TestFromMap_UsesKeyOrder(t *testing.T) {
	table := symtab.FromMap(map[string]any{"b": 2, "a": 1}, "b", "a")
	assert.Equal(t, []string{"b", "a"}, table.Keys())
}
