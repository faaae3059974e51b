package game

import (
	"testing"

	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAbilityPriorityOrder buys a card carrying AGAIN, STEAL and SCROLL: the steal
// interrupts, the scroll waits in the queue and AGAIN keeps the turn.
func TestAbilityPriorityOrder(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	s.Players[P2].Inventory = gems.Of(map[gems.Color]int{gems.Green: 1, gems.Gold: 1})
	s.Market[0][0] = devCard("combo", 1, gems.Blue, 0, nil, cards.AbilityScroll, cards.AbilitySteal, cards.AbilityAgain)

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "combo"})
	require.Equal(t, rules.PhaseStealAction, next.Phase)
	assert.Equal(t, []cards.Ability{cards.AbilityScroll}, next.Pending.Abilities)
	assert.Equal(t, P1, next.Pending.AbilityNext)
	assert.Equal(t, []string{"AGAIN", "STEAL"}, next.Feedback)

	rejected := apply(t, r, next, ActionStealGem, ColorPayload{Color: gems.Gold})
	assert.NotEmpty(t, rejected.Toast)

	next = apply(t, r, next, ActionStealGem, ColorPayload{Color: gems.Green})
	assert.Empty(t, next.Toast)
	assert.Equal(t, 1, next.Players[P1].Inventory.Get(gems.Green))
	assert.Equal(t, 1, next.Players[P1].Privileges)
	assert.Equal(t, P1, next.Turn)
	assert.Equal(t, rules.PhaseIdle, next.Phase)
	assert.Equal(t, 1, next.Players[P1].TurnsCompleted)
}

func TestStealSkippedAgainstImmuneOpponent(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	assignBuff(t, s, P2, "fortress")
	s.Players[P2].Inventory = gems.Of(map[gems.Color]int{gems.Green: 2})
	s.Market[0][0] = devCard("thief", 1, gems.Blue, 0, nil, cards.AbilitySteal)

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "thief"})
	assert.Equal(t, []string{"STEAL skipped"}, next.Feedback)
	assert.Equal(t, P2, next.Turn)
}

func TestBonusGemTakesMatchingColor(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	place(s, 0, 0, gems.Red)
	place(s, 3, 3, gems.Blue)
	s.Market[0][0] = devCard("bonus", 1, gems.Red, 0, nil, cards.AbilityBonusGem)

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "bonus"})
	require.Equal(t, rules.PhaseBonusAction, next.Phase)
	assert.Equal(t, gems.Red, next.Pending.BonusColor)

	wrong := apply(t, r, next, ActionTakeBonusGem, CellPayload{Cell: cell(3, 3)})
	assert.NotEmpty(t, wrong.Toast)

	next = apply(t, r, next, ActionTakeBonusGem, CellPayload{Cell: cell(0, 0)})
	assert.Equal(t, 1, next.Players[P1].Inventory.Get(gems.Red))
	assert.Equal(t, P2, next.Turn)
	assert.Equal(t, gems.NoColor, next.Pending.BonusColor)
}

func TestDoubleBonusGem(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	assignBuff(t, s, P1, "generous_bonus")
	place(s, 0, 0, gems.Red)
	place(s, 4, 4, gems.Red)
	s.Market[0][0] = devCard("bonus", 1, gems.Red, 0, nil, cards.AbilityBonusGem)

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "bonus"})
	require.Equal(t, 2, next.Pending.BonusCount)
	next = apply(t, r, next, ActionTakeBonusGem, CellPayload{Cell: cell(0, 0)})
	assert.Equal(t, rules.PhaseBonusAction, next.Phase)
	next = apply(t, r, next, ActionTakeBonusGem, CellPayload{Cell: cell(4, 4)})
	assert.Equal(t, rules.PhaseIdle, next.Phase)
	assert.Equal(t, 2, next.Players[P1].Inventory.Get(gems.Red))
}

func TestBonusGemSkippedWhenColorMissing(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	place(s, 0, 0, gems.Blue)
	s.Market[0][0] = devCard("bonus", 1, gems.Red, 0, nil, cards.AbilityBonusGem, cards.AbilityScroll)

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "bonus"})
	assert.Equal(t, []string{"BONUS_GEM skipped", "SCROLL"}, next.Feedback)
	assert.Equal(t, 1, next.Players[P1].Privileges)
	assert.Equal(t, P2, next.Turn)
}

// TestCrownMilestoneOpensRoyalPick checks milestones fire once and resume the turn.
func TestCrownMilestoneOpensRoyalPick(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	s.RoyalCourt = []cards.Card{
		{ID: "royal-1", Kind: cards.KindRoyal, Points: 2, Bonus: gems.NoColor, Abilities: []cards.Ability{cards.AbilityScroll}},
		{ID: "royal-2", Kind: cards.KindRoyal, Points: 3, Bonus: gems.NoColor},
	}
	crowned := devCard("crowned", 2, gems.White, 1, nil)
	crowned.Crowns = 3
	s.Market[1][0] = crowned

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "crowned"})
	require.Equal(t, rules.PhaseSelectRoyal, next.Phase)
	assert.True(t, next.Players[P1].Milestones.Three)
	assert.Equal(t, P2, next.Pending.RoyalResume)
	assert.Equal(t, P1, next.Turn)

	next = apply(t, r, next, ActionSelectRoyal, CardPayload{CardID: "royal-1"})
	assert.Empty(t, next.Toast)
	assert.Equal(t, P2, next.Turn)
	assert.Equal(t, rules.PhaseIdle, next.Phase)
	assert.Equal(t, 3, next.Players[P1].Points())
	assert.Equal(t, 1, next.Players[P1].Privileges)
	assert.Len(t, next.RoyalCourt, 1)
	assert.False(t, next.Players[P1].Milestones.Six)
}

func TestForceRoyal(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()

	assert.Equal(t, "the royal court is empty", apply(t, r, s, ActionDebugForceRoyal, nil).Toast)

	s.RoyalCourt = []cards.Card{{ID: "royal-1", Kind: cards.KindRoyal, Points: 2, Bonus: gems.NoColor}}
	next := apply(t, r, s, ActionDebugForceRoyal, nil)
	require.Equal(t, rules.PhaseSelectRoyal, next.Phase)
	next = apply(t, r, next, ActionSelectRoyal, CardPayload{CardID: "royal-1"})
	assert.Equal(t, P2, next.Turn)
	assert.Equal(t, 2, next.Players[P1].Points())
}
