package game

import (
	"errors"
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"go.uber.org/zap"
)

// RuleError is a gameplay precondition failure. It never escapes Apply: the dispatcher
// turns it into a toast and discards the draft.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func rulef(format string, args ...any) *RuleError {
	return &RuleError{Message: fmt.Sprintf(format, args...)}
}

type handlerFunc func(d *GameState, a Action) error

// Reducer routes actions to their handlers. It holds only immutable data.
type Reducer struct {
	logger   *zap.Logger
	buffs    *buffs.Registry
	handlers map[ActionType]handlerFunc
}

// NewReducer builds a reducer. A nil logger is replaced with a no-op logger.
func NewReducer(logger *zap.Logger, registry *buffs.Registry) *Reducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reducer{logger: logger, buffs: registry}
	r.handlers = map[ActionType]handlerFunc{
		ActionTakeGems:     r.takeGems,
		ActionReplenish:    r.replenish,
		ActionTakeBonusGem: r.takeBonusGem,
		ActionStealGem:     r.stealGem,
		ActionDiscardGem:   r.discardGem,

		ActionInitiateBuyJoker:    r.initiateBuyJoker,
		ActionCancelBuyJoker:      r.cancelBuyJoker,
		ActionBuyCard:             r.buyCard,
		ActionInitiateReserve:     r.initiateReserve,
		ActionInitiateReserveDeck: r.initiateReserveDeck,
		ActionReserveCard:         r.reserveCard,
		ActionReserveDeck:         r.reserveDeck,
		ActionCancelReserve:       r.cancelReserve,
		ActionDiscardReserved:     r.discardReserved,

		ActionSelectRoyal: r.selectRoyal,

		ActionActivatePrivilege: r.activatePrivilege,
		ActionUsePrivilege:      r.usePrivilege,
		ActionCancelPrivilege:   r.cancelPrivilege,

		ActionSelectBuff: r.selectBuff,

		ActionDebugAddGems:    r.debugAddGems,
		ActionDebugAddPoints:  r.debugAddPoints,
		ActionDebugAddCrowns:  r.debugAddCrowns,
		ActionDebugForceRoyal: r.debugForceRoyal,
	}
	return r
}

// Apply reduces one action. It never mutates state. Bootstrap actions ignore state,
// sync actions replace it, and every other action on a nil state returns nil.
func (r *Reducer) Apply(state *GameState, action Action) *GameState {
	switch {
	case action.Type.IsBootstrap():
		next, err := r.bootstrap(action)
		if err != nil {
			r.logger.Warn("bootstrap rejected", zap.String("action", string(action.Type)), zap.Error(err))
			return state
		}
		return next
	case action.Type.IsSync():
		var p SyncPayload
		if err := action.decode(&p); err != nil || p.State == nil {
			r.logger.Warn("sync payload rejected", zap.String("action", string(action.Type)))
			return state
		}
		return p.State.Clone()
	}

	if state == nil {
		return nil
	}

	h, ok := r.handlers[action.Type]
	if !ok {
		r.logger.Warn("unknown action type", zap.String("action", string(action.Type)))
		return state
	}

	d := state.Clone()
	d.Toast = ""
	d.Feedback = nil

	var err error
	if state.Winner != NoPlayer {
		err = rulef("the game is over")
	} else {
		err = h(d, action)
	}
	if err != nil {
		var re *RuleError
		if !errors.As(err, &re) {
			r.logger.Error("handler failed", zap.String("action", string(action.Type)), zap.Error(err))
		} else {
			r.logger.Debug("action rejected", zap.String("action", string(action.Type)), zap.String("reason", re.Message))
		}
		out := state.Clone()
		out.Toast = err.Error()
		out.Feedback = nil
		return out
	}
	return d
}

// Replay folds actions over an empty state.
func (r *Reducer) Replay(actions []Action) *GameState {
	var s *GameState
	for _, a := range actions {
		s = r.Apply(s, a)
	}
	return s
}
