// Package rules holds the phase enumeration and the fixed rule constants of a match.
package rules

import (
	"fmt"
	"strings"
)

// Phase is the sub-state a turn is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReserveWaitingGem
	PhaseSelectCardColor
	PhaseBonusAction
	PhaseStealAction
	PhasePrivilegeAction
	PhaseDiscardExcessGems
	PhaseSelectRoyal
	PhaseDraft
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseIdle:              "IDLE",
	PhaseReserveWaitingGem: "RESERVE_WAITING_GEM",
	PhaseSelectCardColor:   "SELECT_CARD_COLOR",
	PhaseBonusAction:       "BONUS_ACTION",
	PhaseStealAction:       "STEAL_ACTION",
	PhasePrivilegeAction:   "PRIVILEGE_ACTION",
	PhaseDiscardExcessGems: "DISCARD_EXCESS_GEMS",
	PhaseSelectRoyal:       "SELECT_ROYAL",
	PhaseDraft:             "DRAFT_PHASE",
	PhaseGameOver:          "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// IsInterrupt reports whether the phase pauses a turn awaiting a follow-up action.
func (p Phase) IsInterrupt() bool {
	switch p {
	case PhaseReserveWaitingGem, PhaseSelectCardColor, PhaseBonusAction, PhaseStealAction,
		PhasePrivilegeAction, PhaseDiscardExcessGems, PhaseSelectRoyal:
		return true
	}
	return false
}

// ParsePhase is the inverse of String.
func ParsePhase(s string) (Phase, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return PhaseIdle, fmt.Errorf("unknown phase %q", s)
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
