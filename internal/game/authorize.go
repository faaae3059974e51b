package game

import (
	"errors"
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game/rules"
)

var (
	// ErrNotYourTurn rejects an action from a player who does not own the turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrNoState rejects a gameplay action before any match exists.
	ErrNoState = errors.New("no game in progress")
)

// Authorize is the turn-ownership check applied before an action reaches the reducer.
// Bootstrap and sync actions are always allowed. During the draft the current picker
// owns the turn.
func Authorize(s *GameState, actor Player, a Action) error {
	if a.Type.IsBootstrap() || a.Type.IsSync() {
		return nil
	}
	if s == nil {
		return ErrNoState
	}
	owner := s.Turn
	if s.Phase == rules.PhaseDraft && s.Draft != nil {
		owner = s.Draft.Picker
	}
	if actor != owner {
		return fmt.Errorf("%w: %s acted on %s's turn", ErrNotYourTurn, actor, owner)
	}
	return nil
}
