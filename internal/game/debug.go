package game

import (
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

// Debug actions bypass the economy. Created gems count as extra allocation so supply
// accounting stays exact.

func (r *Reducer) debugAddGems(d *GameState, a Action) error {
	p := DebugGemsPayload{Player: d.Turn, Color: gems.NoColor}
	if err := a.decode(&p); err != nil {
		return err
	}
	if !p.Player.Valid() || !p.Color.Valid() || p.Amount < 1 {
		return rulef("invalid debug gems")
	}
	d.grantExtra(p.Player, p.Color, p.Amount)
	return nil
}

func (r *Reducer) debugAddPoints(d *GameState, a Action) error {
	p := DebugAmountPayload{Player: d.Turn}
	if err := a.decode(&p); err != nil {
		return err
	}
	if !p.Player.Valid() {
		return rulef("invalid player")
	}
	d.Player(p.Player).ExtraPoints += p.Amount
	return nil
}

func (r *Reducer) debugAddCrowns(d *GameState, a Action) error {
	p := DebugAmountPayload{Player: d.Turn}
	if err := a.decode(&p); err != nil {
		return err
	}
	if !p.Player.Valid() {
		return rulef("invalid player")
	}
	d.Player(p.Player).ExtraCrowns += p.Amount
	return nil
}

func (r *Reducer) debugForceRoyal(d *GameState, _ Action) error {
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	if len(d.RoyalCourt) == 0 {
		return rulef("the royal court is empty")
	}
	d.Phase = rules.PhaseSelectRoyal
	d.Pending.RoyalResume = d.Turn.Opponent()
	return nil
}
