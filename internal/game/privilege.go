package game

import (
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

func (r *Reducer) activatePrivilege(d *GameState, a Action) error {
	var p CountPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	if p.Count < 1 {
		return rulef("use at least one privilege")
	}
	ps := d.Current()
	if ps.ExtraPrivileges+ps.Privileges < p.Count {
		return rulef("not enough privileges")
	}
	if !d.Board.HasNonGold() {
		return rulef("no gem to take with a privilege")
	}

	extra := min(p.Count, ps.ExtraPrivileges)
	ps.ExtraPrivileges -= extra
	ps.Privileges -= p.Count - extra

	pickups := p.Count
	if ps.Buff.Passive().DoublePrivilege {
		pickups *= 2
	}
	d.Pending.PrivilegeExtraUsed = extra
	d.Pending.PrivilegeStandard = p.Count - extra
	d.Pending.PrivilegeCount = pickups
	d.Pending.PrivilegeTaken = 0
	d.Phase = rules.PhasePrivilegeAction
	return nil
}

func (r *Reducer) usePrivilege(d *GameState, a Action) error {
	var p CellPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhasePrivilegeAction); err != nil {
		return err
	}
	g := d.Board.At(p.Cell)
	if g.IsZero() {
		return rulef("cell %d,%d is empty", p.Cell.Row, p.Cell.Col)
	}
	if g.Color == gems.Gold {
		return rulef("gold cannot be taken with a privilege")
	}
	d.takeFromBoard(d.Turn, p.Cell)
	d.Pending.PrivilegeCount--
	d.Pending.PrivilegeTaken++
	if d.Pending.PrivilegeCount > 0 && d.Board.HasNonGold() {
		return nil
	}
	r.endPrivilege(d)
	return nil
}

// cancelPrivilege refunds the tokens when nothing was taken; otherwise it ends the
// sequence with what was picked up.
func (r *Reducer) cancelPrivilege(d *GameState, _ Action) error {
	if d.Phase != rules.PhasePrivilegeAction {
		return nil
	}
	if d.Pending.PrivilegeTaken > 0 {
		r.endPrivilege(d)
		return nil
	}
	ps := d.Current()
	ps.ExtraPrivileges += d.Pending.PrivilegeExtraUsed
	ps.Privileges += d.Pending.PrivilegeStandard
	d.Pending.PrivilegeCount = 0
	d.Pending.PrivilegeExtraUsed = 0
	d.Pending.PrivilegeStandard = 0
	d.Phase = rules.PhaseIdle
	return nil
}

func (r *Reducer) endPrivilege(d *GameState) {
	d.Pending.PrivilegeCount = 0
	d.Phase = rules.PhaseIdle
	r.finalizeTurn(d, d.Turn.Opponent())
}
