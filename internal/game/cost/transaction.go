// Package cost computes what a card purchase costs a player once tableau bonuses and
// buff discounts are applied.
package cost

import (
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
)

// Transaction is the result of pricing a card against an inventory.
type Transaction struct {
	Affordable bool
	// GoldCost is the number of gold gems needed to cover the shortfall.
	GoldCost int
	// GemsPaid holds every unit that leaves the inventory, gold included.
	GemsPaid gems.Inventory
	// Effective is the cost left after discounts, before gold substitution.
	Effective gems.Inventory
}

// Bonuses sums the bonus gems a tableau provides per color.
func Bonuses(tableau []cards.Card) gems.Inventory {
	var out gems.Inventory
	for _, c := range tableau {
		if c.Bonus.IsBasic() {
			out.Add(c.Bonus, c.BonusCount)
		}
	}
	return out
}

// Calculate prices card for a player holding inv with the given tableau and buff.
// It never mutates its inputs.
func Calculate(card cards.Card, inv gems.Inventory, tableau []cards.Card, buff *buffs.Assignment, reserved bool) Transaction {
	need := Discounted(card, tableau, buff, reserved)

	tx := Transaction{Effective: need}
	shortfall := 0
	for c := gems.Color(0); c < gems.NumColors; c++ {
		if c == gems.Gold {
			continue
		}
		paid := min(inv.Get(c), need.Get(c))
		tx.GemsPaid.Add(c, paid)
		shortfall += need.Get(c) - paid
	}

	gold := shortfall
	if card.Level == 3 && buff.Passive().DoubleGoldLevel3 {
		gold = (shortfall + 1) / 2
	}
	tx.GoldCost = gold
	tx.GemsPaid.Add(gems.Gold, gold)
	tx.Affordable = gold <= inv.Get(gems.Gold)
	return tx
}

// Discounted returns the cost of card after tableau bonuses and buff discounts.
// Bonuses only reduce basic colors. Buff discounts that are not tied to a color
// come off the largest remaining basic color, ties going to the lower color.
func Discounted(card cards.Card, tableau []cards.Card, buff *buffs.Assignment, reserved bool) gems.Inventory {
	need := card.Cost
	bonus := Bonuses(tableau)
	for _, c := range gems.BasicColors {
		need[c] = max(0, need[c]-bonus.Get(c))
	}

	p := buff.Passive()
	if p.ColorDiscount > 0 && buff.State.Has(buffs.KeyDiscountColor) {
		c := gems.Color(buff.State.Get(buffs.KeyDiscountColor))
		if c.IsBasic() {
			need[c] = max(0, need[c]-p.ColorDiscount)
		}
	}

	flat := p.DiscountAny
	if p.LevelDiscount > 0 && card.Level > 0 && card.Level <= p.LevelDiscountMax {
		flat += p.LevelDiscount
	}
	if reserved {
		flat += p.ReservedDiscount
	}
	for ; flat > 0; flat-- {
		c := largestBasic(need)
		if c == gems.NoColor {
			break
		}
		need[c]--
	}
	return need
}

func largestBasic(inv gems.Inventory) gems.Color {
	best := gems.NoColor
	for _, c := range gems.BasicColors {
		if inv.Get(c) > 0 && (best == gems.NoColor || inv.Get(c) > inv.Get(best)) {
			best = c
		}
	}
	return best
}

// RefundColor picks the basic color a recycling refund returns: the one paid most,
// ties going to the lower color. Pearl and gold are never refunded.
func RefundColor(paid gems.Inventory) gems.Color {
	return largestBasic(paid)
}
