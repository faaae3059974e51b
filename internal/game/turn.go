package game

import (
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/rules"
	"go.uber.org/zap"
)

// finalizeTurn ends the current player's turn, handing it to next unless a check
// short-circuits: a win, a crown milestone or a gem overflow.
func (r *Reducer) finalizeTurn(d *GameState, next Player) {
	if r.declareWinner(d) {
		return
	}
	if !d.Pending.TurnEffectsApplied {
		applyTurnEffects(d)
		d.Pending.TurnEffectsApplied = true
	}
	if triggerMilestone(d, next) {
		return
	}
	cur := d.Current()
	if cur.Inventory.Total() > cur.GemCap() {
		d.Phase = rules.PhaseDiscardExcessGems
		d.ResumeTo = next
		return
	}
	advance(d, next)
}

// declareWinner checks the current player, then the opponent. The winner is written once.
func (r *Reducer) declareWinner(d *GameState) bool {
	if d.Winner != NoPlayer {
		return true
	}
	for _, p := range []Player{d.Turn, d.Turn.Opponent()} {
		if hasWon(d.Player(p)) {
			d.Winner = p
			d.Phase = rules.PhaseIdle
			d.Pending = newPending()
			d.ResumeTo = NoPlayer
			r.logger.Info("winner declared", zap.String("match", d.MatchID), zap.Stringer("player", p))
			return true
		}
	}
	return false
}

func hasWon(ps *PlayerState) bool {
	th := ps.Thresholds()
	if ps.Points() >= th.Points || ps.Crowns() >= th.Crowns {
		return true
	}
	for _, pts := range ps.ColorPoints() {
		if pts >= th.SingleColor {
			return true
		}
	}
	return false
}

// applyTurnEffects runs buff side effects tied to a completed turn.
func applyTurnEffects(d *GameState) {
	ps := d.Current()
	if ps.Buff == nil {
		return
	}
	passive := ps.Buff.Passive()

	if passive.ReserveStackPoints > 0 && len(ps.Reserved) >= rules.MaxReserved && !ps.Buff.State.Has(buffs.KeyReserveStackPaid) {
		ps.ExtraPoints += passive.ReserveStackPoints
		ps.Buff.State.Set(buffs.KeyReserveStackPaid, 1)
		d.feedback("reserve stack bonus")
	}
	if n := passive.PrivilegeEvery; n > 0 && (ps.TurnsCompleted+1)%n == 0 {
		ps.ExtraPrivileges++
		ps.Buff.State.Add(buffs.KeyPrivilegeGrants, 1)
		d.feedback("periodic privilege")
	}
}

// triggerMilestone opens a royal pick for the first unclaimed crown milestone.
func triggerMilestone(d *GameState, next Player) bool {
	if len(d.RoyalCourt) == 0 {
		return false
	}
	ps := d.Current()
	crowns := ps.Crowns()
	switch {
	case crowns >= rules.MilestoneThree && !ps.Milestones.Three:
		ps.Milestones.Three = true
	case crowns >= rules.MilestoneSix && !ps.Milestones.Six:
		ps.Milestones.Six = true
	default:
		return false
	}
	d.Phase = rules.PhaseSelectRoyal
	d.Pending.RoyalResume = next
	return true
}

func advance(d *GameState, next Player) {
	d.Current().TurnsCompleted++
	d.Turn = next
	d.Phase = rules.PhaseIdle
	d.ResumeTo = NoPlayer
	d.Pending = newPending()
}
