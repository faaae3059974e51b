package game

import (
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

func requirePhase(d *GameState, want rules.Phase) error {
	if d.Phase != want {
		return rulef("not allowed during %s", d.Phase)
	}
	return nil
}

func (r *Reducer) takeGems(d *GameState, a Action) error {
	var p TakeGemsPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	if err := gems.ValidateSelection(p.Cells); err != nil {
		return rulef("invalid selection: %v", err)
	}

	colors := make(map[gems.Color]int, len(p.Cells))
	for _, cell := range p.Cells {
		g := d.Board.At(cell)
		if g.IsZero() {
			return rulef("cell %d,%d is empty", cell.Row, cell.Col)
		}
		if g.Color == gems.Gold {
			return rulef("gold can only be taken by reserving")
		}
		colors[g.Color]++
	}
	for _, cell := range p.Cells {
		d.takeFromBoard(d.Turn, cell)
	}

	if colors[gems.Pearl] == 2 || (len(p.Cells) == 3 && len(colors) == 1) {
		d.grantPrivilege(d.Turn.Opponent())
		d.feedback("opponent gains a privilege")
	}
	r.finalizeTurn(d, d.Turn.Opponent())
	return nil
}

func (r *Reducer) replenish(d *GameState, a Action) error {
	p := ReplenishPayload{BonusColor: gems.NoColor, StealColor: gems.NoColor}
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	if len(d.Bag) == 0 {
		return rulef("the bag is empty")
	}
	if d.Board.Count() == gems.BoardSize*gems.BoardSize {
		return rulef("the board is full")
	}

	if d.Board.Count() > 0 {
		d.grantPrivilege(d.Turn.Opponent())
		d.feedback("opponent gains a privilege")
	}
	r.replenishReward(d, p)

	bag := orderBag(d.Bag, p.Order)
	for _, cell := range gems.SpiralOrder() {
		if len(bag) == 0 {
			break
		}
		if d.Board.At(cell).IsZero() {
			d.Board.Set(cell, bag[0])
			bag = bag[1:]
		}
	}
	d.Bag = bag
	return nil
}

// replenishReward applies the alternating replenish buff: odd refills grant a bag gem,
// even refills steal one from the opponent.
func (r *Reducer) replenishReward(d *GameState, p ReplenishPayload) {
	me := d.Current()
	if !me.Buff.Passive().ReplenishReward {
		return
	}
	n := me.Buff.State.Add(buffs.KeyReplenishCount, 1)
	if n%2 == 1 {
		if p.BonusColor.Valid() && p.BonusColor != gems.Gold && d.takeFromBag(d.Turn, p.BonusColor) {
			d.feedback("replenish bonus gem")
			return
		}
		d.feedback("replenish bonus skipped")
		return
	}
	victim := d.Turn.Opponent()
	if p.StealColor.Valid() && p.StealColor != gems.Gold && !d.Player(victim).Buff.Passive().StealImmune &&
		d.transferGem(victim, d.Turn, p.StealColor) {
		d.feedback("replenish steal")
		return
	}
	d.feedback("replenish steal skipped")
}

// orderBag returns the bag with the gems named in order first, in that order, followed
// by the remaining gems in bag order. Unknown ids are ignored.
func orderBag(bag []gems.Gem, order []string) []gems.Gem {
	out := make([]gems.Gem, 0, len(bag))
	used := make([]bool, len(bag))
	for _, id := range order {
		for i, g := range bag {
			if !used[i] && g.ID == id {
				used[i] = true
				out = append(out, g)
				break
			}
		}
	}
	for i, g := range bag {
		if !used[i] {
			out = append(out, g)
		}
	}
	return out
}

func (r *Reducer) takeBonusGem(d *GameState, a Action) error {
	var p CellPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseBonusAction); err != nil {
		return err
	}
	g := d.Board.At(p.Cell)
	if g.IsZero() || g.Color != d.Pending.BonusColor {
		return rulef("pick a %s gem", d.Pending.BonusColor)
	}
	d.takeFromBoard(d.Turn, p.Cell)
	d.Pending.BonusCount--
	if d.Pending.BonusCount > 0 && d.Board.CountColor(d.Pending.BonusColor) > 0 {
		return nil
	}
	d.Pending.BonusColor = gems.NoColor
	d.Pending.BonusCount = 0
	r.continueAbilities(d)
	return nil
}

func (r *Reducer) stealGem(d *GameState, a Action) error {
	p := ColorPayload{Color: gems.NoColor}
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseStealAction); err != nil {
		return err
	}
	if !p.Color.Valid() || p.Color == gems.Gold {
		return rulef("gold cannot be stolen")
	}
	if !d.transferGem(d.Turn.Opponent(), d.Turn, p.Color) {
		return rulef("opponent has no %s gem", p.Color)
	}
	r.continueAbilities(d)
	return nil
}

func (r *Reducer) discardGem(d *GameState, a Action) error {
	p := ColorPayload{Color: gems.NoColor}
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseDiscardExcessGems); err != nil {
		return err
	}
	if !p.Color.Valid() || !d.removeGems(d.Turn, p.Color, 1) {
		return rulef("no %s gem to discard", p.Color)
	}
	cur := d.Current()
	if cur.Inventory.Total() <= cur.GemCap() {
		next := d.ResumeTo
		if next == NoPlayer {
			next = d.Turn.Opponent()
		}
		r.finalizeTurn(d, next)
	}
	return nil
}
