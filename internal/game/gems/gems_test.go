package gems

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name  string
		cells []Coord
		err   error
	}{
		{"single cell", []Coord{{2, 2}}, nil},
		{"row of three", []Coord{{1, 0}, {1, 1}, {1, 2}}, nil},
		{"column unordered", []Coord{{3, 4}, {1, 4}, {2, 4}}, nil},
		{"diagonal", []Coord{{0, 0}, {1, 1}, {2, 2}}, nil},
		{"anti diagonal", []Coord{{2, 0}, {0, 2}, {1, 1}}, nil},
		{"pair", []Coord{{4, 3}, {4, 4}}, nil},
		{"empty", nil, ErrEmptySelection},
		{"too many", []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}}, ErrSelectionTooLarge},
		{"off board", []Coord{{0, 4}, {0, 5}}, ErrOutOfBounds},
		{"duplicate", []Coord{{0, 0}, {0, 0}}, ErrDuplicateCell},
		{"gap in row", []Coord{{0, 0}, {0, 2}}, ErrNotContiguous},
		{"gap in triple", []Coord{{0, 0}, {0, 1}, {0, 3}}, ErrNotContiguous},
		{"knight move", []Coord{{0, 0}, {1, 2}}, ErrNotInLine},
		{"bent line", []Coord{{0, 0}, {0, 1}, {1, 1}}, ErrNotInLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(tt.cells)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSpiralOrderCoversBoardOnce(t *testing.T) {
	order := SpiralOrder()
	require.Len(t, order, BoardSize*BoardSize)
	assert.Equal(t, Coord{Row: 2, Col: 2}, order[0])
	assert.Equal(t, Coord{Row: 1, Col: 2}, order[1])

	seen := make(map[Coord]bool)
	for _, c := range order {
		assert.True(t, c.InBounds(), "cell %v off board", c)
		assert.False(t, seen[c], "cell %v visited twice", c)
		seen[c] = true
	}

	// Callers get a copy.
	order[0] = Coord{Row: 4, Col: 4}
	assert.Equal(t, Coord{Row: 2, Col: 2}, SpiralOrder()[0])
}

func TestInventorySpendAndTotal(t *testing.T) {
	inv := Of(map[Color]int{Blue: 2, Gold: 1})
	assert.Equal(t, 3, inv.Total())

	assert.False(t, inv.Spend(Blue, 3))
	assert.Equal(t, 2, inv.Get(Blue))

	assert.True(t, inv.Spend(Blue, 2))
	assert.Equal(t, 0, inv.Get(Blue))
	assert.Equal(t, 0, inv.Get(NoColor))

	inv.Add(Red, -4)
	assert.Equal(t, 0, inv.Get(Red))
}

func TestInventoryJSON(t *testing.T) {
	inv := Of(map[Color]int{Red: 3, Pearl: 1})
	data, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"red":3,"pearl":1}`, string(data))

	var decoded Inventory
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, inv, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"purple":1}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"red":-1}`), &decoded))
}

func TestColorText(t *testing.T) {
	c, err := ParseColor(" Pearl ")
	require.NoError(t, err)
	assert.Equal(t, Pearl, c)
	assert.False(t, Pearl.IsBasic())
	assert.True(t, Red.IsBasic())

	c, err = ParseColor("")
	require.NoError(t, err)
	assert.Equal(t, NoColor, c)

	_, err = ParseColor("mauve")
	assert.Error(t, err)

	var g Gem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"g1","color":"gold"}`), &g))
	assert.Equal(t, Gem{ID: "g1", Color: Gold}, g)
}

func TestBoardCounts(t *testing.T) {
	var b Board
	assert.Equal(t, 0, b.Count())
	assert.False(t, b.HasNonGold())

	b.Set(Coord{0, 0}, Gem{ID: "a", Color: Gold})
	assert.False(t, b.HasNonGold())
	b.Set(Coord{1, 1}, Gem{ID: "b", Color: Blue})
	assert.True(t, b.HasNonGold())
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, 1, b.CountColor(Blue))

	g := b.Clear(Coord{1, 1})
	assert.Equal(t, "b", g.ID)
	assert.True(t, b.At(Coord{1, 1}).IsZero())
	assert.True(t, b.At(Coord{9, 9}).IsZero())
}
