package cost

import (
	"testing"

	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/stretchr/testify/assert"
)

func card(level int, cost map[gems.Color]int) cards.Card {
	return cards.Card{ID: "c", Level: level, Cost: gems.Of(cost), Bonus: gems.Blue, BonusCount: 1}
}

func withBuff(p buffs.PassiveEffect) *buffs.Assignment {
	return buffs.Assign(buffs.Template{ID: "test", Effect: buffs.Effect{Passive: p}})
}

// TestCalculateExactPayment covers a purchase paid entirely in colored gems.
func TestCalculateExactPayment(t *testing.T) {
	c := card(1, map[gems.Color]int{gems.Red: 3, gems.Pearl: 1})
	inv := gems.Of(map[gems.Color]int{gems.Red: 5, gems.Pearl: 1})

	tx := Calculate(c, inv, nil, nil, false)
	assert.True(t, tx.Affordable)
	assert.Equal(t, 0, tx.GoldCost)
	assert.Equal(t, 3, tx.GemsPaid.Get(gems.Red))
	assert.Equal(t, 1, tx.GemsPaid.Get(gems.Pearl))
}

func TestCalculateGoldShortfall(t *testing.T) {
	c := card(2, map[gems.Color]int{gems.Blue: 3, gems.White: 2})
	inv := gems.Of(map[gems.Color]int{gems.Blue: 1, gems.White: 1, gems.Gold: 2})

	tx := Calculate(c, inv, nil, nil, false)
	assert.False(t, tx.Affordable)
	assert.Equal(t, 3, tx.GoldCost)

	inv.Add(gems.Gold, 1)
	tx = Calculate(c, inv, nil, nil, false)
	assert.True(t, tx.Affordable)
	assert.Equal(t, 3, tx.GemsPaid.Get(gems.Gold))
}

// TestTableauBonusSkipsPearl checks bonuses never discount pearl costs.
func TestTableauBonusSkipsPearl(t *testing.T) {
	c := card(1, map[gems.Color]int{gems.Blue: 2, gems.Pearl: 1})
	tableau := []cards.Card{
		{ID: "t1", Bonus: gems.Blue, BonusCount: 1},
		{ID: "t2", Bonus: gems.Blue, BonusCount: 2},
		{ID: "royal", Bonus: gems.NoColor},
	}

	need := Discounted(c, tableau, nil, false)
	assert.Equal(t, 0, need.Get(gems.Blue))
	assert.Equal(t, 1, need.Get(gems.Pearl))
}

func TestBuffDiscounts(t *testing.T) {
	c := card(1, map[gems.Color]int{gems.Blue: 1, gems.Red: 3, gems.Pearl: 1})

	flat := Discounted(c, nil, withBuff(buffs.PassiveEffect{DiscountAny: 1}), false)
	assert.Equal(t, 2, flat.Get(gems.Red))
	assert.Equal(t, 1, flat.Get(gems.Pearl))

	reservedOnly := withBuff(buffs.PassiveEffect{ReservedDiscount: 2})
	assert.Equal(t, 3, Discounted(c, nil, reservedOnly, false).Get(gems.Red))
	assert.Equal(t, 1, Discounted(c, nil, reservedOnly, true).Get(gems.Red))

	capped := withBuff(buffs.PassiveEffect{LevelDiscount: 1, LevelDiscountMax: 1})
	assert.Equal(t, 2, Discounted(c, nil, capped, false).Get(gems.Red))
	assert.Equal(t, 3, Discounted(card(2, map[gems.Color]int{gems.Red: 3}), nil, capped, false).Get(gems.Red))

	chosen := withBuff(buffs.PassiveEffect{ColorDiscount: 1})
	chosen.State.Set(buffs.KeyDiscountColor, int(gems.Blue))
	got := Discounted(c, nil, chosen, false)
	assert.Equal(t, 0, got.Get(gems.Blue))
	assert.Equal(t, 3, got.Get(gems.Red))
}

// TestDoubleGoldOnLevelThree checks gold counts double only against level 3 cards.
func TestDoubleGoldOnLevelThree(t *testing.T) {
	alchemist := withBuff(buffs.PassiveEffect{DoubleGoldLevel3: true})
	inv := gems.Of(map[gems.Color]int{gems.Gold: 2})

	tx := Calculate(card(3, map[gems.Color]int{gems.Black: 3}), inv, nil, alchemist, false)
	assert.True(t, tx.Affordable)
	assert.Equal(t, 2, tx.GoldCost)

	tx = Calculate(card(2, map[gems.Color]int{gems.Black: 3}), inv, nil, alchemist, false)
	assert.False(t, tx.Affordable)
	assert.Equal(t, 3, tx.GoldCost)
}

func TestRefundColor(t *testing.T) {
	assert.Equal(t, gems.Red, RefundColor(gems.Of(map[gems.Color]int{gems.Red: 3, gems.Pearl: 1})))
	assert.Equal(t, gems.Blue, RefundColor(gems.Of(map[gems.Color]int{gems.Blue: 2, gems.Red: 2})))
	assert.Equal(t, gems.NoColor, RefundColor(gems.Of(map[gems.Color]int{gems.Pearl: 1, gems.Gold: 2})))
}
