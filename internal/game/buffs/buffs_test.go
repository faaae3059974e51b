package buffs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultRegistry checks the built-in table covers every category.
func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, c := range Categories {
		assert.NotEmpty(t, reg.ByCategory(c), "category %s", c)
	}

	recycler, ok := reg.Get("recycler")
	require.True(t, ok)
	assert.True(t, recycler.Effect.Passive.Recycler)

	seer, ok := reg.Get("seer")
	require.True(t, ok)
	assert.Equal(t, ActivePeekDeck, seer.Effect.Active.Kind)
	assert.Equal(t, 3, seer.Effect.Active.Count)

	for _, id := range reg.Except(CategoryVictory) {
		tpl, _ := reg.Get(id)
		assert.NotEqual(t, CategoryVictory, tpl.Category)
	}
}

func TestAtLevel(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for level := 1; level <= 3; level++ {
		sub := reg.AtLevel(level)
		require.NotEmpty(t, sub.IDs())
		for _, id := range sub.IDs() {
			tpl, ok := sub.Get(id)
			require.True(t, ok)
			assert.Equal(t, level, tpl.Level)
		}
	}
	assert.Equal(t, reg.IDs(), reg.AtLevel(0).IDs())
}

func TestLoadRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"bad category": "buffs:\n  - {id: a, level: 1, category: luck}\n",
		"bad level":    "buffs:\n  - {id: a, level: 0, category: economy}\n",
		"duplicate":    "buffs:\n  - {id: a, level: 1, category: economy}\n  - {id: a, level: 1, category: control}\n",
		"bad active":   "buffs:\n  - {id: a, level: 1, category: control, effect: {active: {kind: scry}}}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

// TestAssignmentStateIsolated verifies clones never share a state bag.
func TestAssignmentStateIsolated(t *testing.T) {
	a := Assign(Template{ID: "trader"})
	a.State.Set(KeyLastDiscardTurn, 4)

	b := a.Clone()
	b.State.Add(KeyLastDiscardTurn, 1)

	assert.Equal(t, 4, a.State.Get(KeyLastDiscardTurn))
	assert.Equal(t, 5, b.State.Get(KeyLastDiscardTurn))
	assert.Equal(t, []string{KeyLastDiscardTurn}, b.State.Keys())

	var none *Assignment
	assert.Nil(t, none.Clone())
	assert.Equal(t, "", none.ID())
	assert.Equal(t, PassiveEffect{}, none.Passive())
}
