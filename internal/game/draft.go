package game

import (
	"slices"

	"github.com/gemduel/gemduel-go/internal/game/rules"
)

// selectBuff records a draft pick. The first pick carries the second player's pool,
// generated by the host after seeing the pick, so both peers agree on it.
func (r *Reducer) selectBuff(d *GameState, a Action) error {
	var p SelectBuffPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseDraft); err != nil {
		return err
	}
	dr := d.Draft
	if dr == nil || dr.Done {
		return rulef("no draft in progress")
	}
	picker := dr.Picker
	if !slices.Contains(dr.Pools[picker], p.BuffID) {
		return rulef("buff %s is not on offer", p.BuffID)
	}
	picked, _ := r.buffs.Get(p.BuffID)
	dr.Picks[picker] = p.BuffID

	if picker == dr.First {
		if len(p.NextPool) == 0 {
			return rulef("the second pool is missing")
		}
		for _, id := range p.NextPool {
			tpl, ok := r.buffs.Get(id)
			if !ok {
				return rulef("unknown buff %s", id)
			}
			if tpl.Category == picked.Category {
				return rulef("buff %s shares the first pick's category", id)
			}
			if dr.Level != 0 && tpl.Level != dr.Level {
				return rulef("buff %s is not a level %d buff", id, dr.Level)
			}
		}
		dr.Pools[picker.Opponent()] = append([]string(nil), p.NextPool...)
		dr.Picker = picker.Opponent()
		return nil
	}

	for _, pl := range Players {
		if err := r.assignBuff(d, pl, dr.Picks[pl], dr.Init[pl]); err != nil {
			return rulef("%v", err)
		}
	}
	dr.Done = true
	d.Turn = dr.First
	d.Phase = rules.PhaseIdle
	return nil
}
