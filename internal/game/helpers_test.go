package game

import (
	"fmt"
	"testing"

	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestReducer(t *testing.T) *Reducer {
	t.Helper()
	reg, err := buffs.Default()
	require.NoError(t, err)
	return NewReducer(zaptest.NewLogger(t), reg)
}

// blankState is an IDLE state with empty board, bag and market slots.
func blankState() *GameState {
	s := &GameState{
		MatchID:  "test",
		Mode:     ModeLocal,
		Turn:     P1,
		Phase:    rules.PhaseIdle,
		Winner:   NoPlayer,
		ResumeTo: NoPlayer,
		Pending:  newPending(),
	}
	for i, level := range rules.Levels {
		s.Market[i] = make([]cards.Card, rules.MarketSlots[level])
	}
	return s
}

var gemSeq int

func place(s *GameState, row, col int, c gems.Color) {
	gemSeq++
	s.Board.Set(gems.Coord{Row: row, Col: col}, gems.Gem{ID: fmt.Sprintf("%s-t%d", c, gemSeq), Color: c})
}

func addToBag(s *GameState, c gems.Color, n int) {
	for i := 0; i < n; i++ {
		gemSeq++
		s.Bag = append(s.Bag, gems.Gem{ID: fmt.Sprintf("%s-t%d", c, gemSeq), Color: c})
	}
}

func assignBuff(t *testing.T, s *GameState, p Player, id string) {
	t.Helper()
	reg, err := buffs.Default()
	require.NoError(t, err)
	tpl, ok := reg.Get(id)
	require.True(t, ok, "buff %s", id)
	s.Player(p).Buff = buffs.Assign(tpl)
}

func devCard(id string, level int, bonus gems.Color, points int, cost map[gems.Color]int, abilities ...cards.Ability) cards.Card {
	return cards.Card{
		ID:         id,
		TemplateID: id,
		Kind:       cards.KindDevelopment,
		Level:      level,
		Cost:       gems.Of(cost),
		Points:     points,
		Bonus:      bonus,
		BonusCount: 1,
		Abilities:  abilities,
	}
}

func cell(row, col int) gems.Coord { return gems.Coord{Row: row, Col: col} }

func apply(t *testing.T, r *Reducer, s *GameState, typ ActionType, payload any) *GameState {
	t.Helper()
	next := r.Apply(s, MustAction(typ, payload))
	require.NotNil(t, next)
	return next
}

// regularGems counts gem units that came from the fixed supply.
func regularGems(s *GameState) int {
	return s.GemTotal() - s.Players[P1].ExtraAllocation.Total() - s.Players[P2].ExtraAllocation.Total()
}
