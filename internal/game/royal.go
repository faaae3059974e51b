package game

import "github.com/gemduel/gemduel-go/internal/game/rules"

func (r *Reducer) selectRoyal(d *GameState, a Action) error {
	var p CardPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseSelectRoyal); err != nil {
		return err
	}
	i := indexOfCard(d.RoyalCourt, p.CardID)
	if i < 0 {
		return rulef("royal %s is not in the court", p.CardID)
	}
	royal := d.RoyalCourt[i]
	d.RoyalCourt = removeCard(d.RoyalCourt, i)
	ps := d.Current()
	ps.Royals = append(ps.Royals, royal)

	next := d.Pending.RoyalResume
	if next == NoPlayer {
		next = d.Turn.Opponent()
	}
	d.Pending.RoyalResume = NoPlayer
	d.Phase = rules.PhaseIdle
	r.resolveCard(d, d.Turn, royal, next)
	return nil
}
