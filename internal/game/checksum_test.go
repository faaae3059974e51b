package game

import (
	"testing"

	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChecksumIgnoresGemIDs checks representational drift in gem ids is tolerated.
func TestChecksumIgnoresGemIDs(t *testing.T) {
	a := blankState()
	b := blankState()
	a.Board.Set(cell(1, 1), gems.Gem{ID: "red-1", Color: gems.Red})
	b.Board.Set(cell(1, 1), gems.Gem{ID: "red-r9", Color: gems.Red})
	a.Toast = "only on one side"

	assert.Equal(t, Checksum(a), Checksum(b))
	assert.Len(t, Checksum(a), 64)
}

func TestChecksumTracksSyncFields(t *testing.T) {
	base := blankState()
	sum := Checksum(base)

	mutations := map[string]func(s *GameState){
		"turn":      func(s *GameState) { s.Turn = P2 },
		"phase":     func(s *GameState) { s.Phase = rules.PhaseStealAction },
		"board":     func(s *GameState) { s.Board.Set(cell(0, 0), gems.Gem{ID: "x", Color: gems.Blue}) },
		"inventory": func(s *GameState) { s.Players[P2].Inventory.Add(gems.Pearl, 1) },
		"privilege": func(s *GameState) { s.Players[P1].Privileges = 1 },
		"tableau":   func(s *GameState) { s.Players[P1].Tableau = []cards.Card{{ID: "c"}} },
		"market":    func(s *GameState) { s.Market[1][0] = cards.Card{ID: "m"} },
		"milestone": func(s *GameState) { s.Players[P1].Milestones.Six = true },
		"buff":      func(s *GameState) { s.Players[P2].Buff = buffs.Assign(buffs.Template{ID: "seer"}) },
		"turns":     func(s *GameState) { s.Players[P2].TurnsCompleted = 3 },
		"winner":    func(s *GameState) { s.Winner = P1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := base.Clone()
			mutate(s)
			assert.NotEqual(t, sum, Checksum(s))
		})
	}
	assert.Empty(t, Checksum(nil))
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := blankState()
	assignBuff(t, s, P1, "trader")
	s.Players[P1].Tableau = []cards.Card{{ID: "a", Abilities: []cards.Ability{cards.AbilityAgain}}}
	s.Bag = []gems.Gem{{ID: "g", Color: gems.Red}}
	s.Pending.Reserve = &PendingReserve{CardID: "x"}
	s.Draft = &Draft{Pools: [2][]string{{"a"}, {"b"}}}

	c := s.Clone()
	c.Players[P1].Tableau[0].Abilities[0] = cards.AbilityScroll
	c.Players[P1].Buff.State.Set("k", 1)
	c.Bag[0].Color = gems.Blue
	c.Pending.Reserve.CardID = "y"
	c.Draft.Pools[0][0] = "z"

	assert.Equal(t, cards.AbilityAgain, s.Players[P1].Tableau[0].Abilities[0])
	assert.False(t, s.Players[P1].Buff.State.Has("k"))
	assert.Equal(t, gems.Red, s.Bag[0].Color)
	assert.Equal(t, "x", s.Pending.Reserve.CardID)
	assert.Equal(t, "a", s.Draft.Pools[0][0])
}

func TestAuthorize(t *testing.T) {
	s := blankState()
	take := MustAction(ActionTakeGems, nil)

	assert.NoError(t, Authorize(s, P1, take))
	assert.ErrorIs(t, Authorize(s, P2, take), ErrNotYourTurn)
	assert.ErrorIs(t, Authorize(nil, P1, take), ErrNoState)
	assert.NoError(t, Authorize(nil, P2, MustAction(ActionInit, nil)))
	assert.NoError(t, Authorize(s, P2, MustAction(ActionForceSync, nil)))

	s.Phase = rules.PhaseDraft
	s.Draft = &Draft{Picker: P2}
	assert.NoError(t, Authorize(s, P2, MustAction(ActionSelectBuff, nil)))
	assert.ErrorIs(t, Authorize(s, P1, MustAction(ActionSelectBuff, nil)), ErrNotYourTurn)
}

func TestPeekDeck(t *testing.T) {
	s := blankState()
	for _, id := range []string{"a", "b", "c", "d"} {
		s.Decks[2] = append(s.Decks[2], devCard(id, 3, gems.Red, 0, nil))
	}

	_, err := PeekDeck(s, P1, 3)
	assert.ErrorIs(t, err, ErrNoPeek)

	assignBuff(t, s, P1, "seer")
	top, err := PeekDeck(s, P1, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].ID)

	top[0].ID = "mutated"
	assert.Equal(t, "a", s.Decks[2][0].ID)

	_, err = PeekDeck(s, P1, 4)
	assert.Error(t, err)
}
