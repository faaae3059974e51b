// Package actionlog keeps the ordered action history of a match. The current state is
// always the replay of the history up to the cursor.
package actionlog

import (
	"sync"

	"github.com/gemduel/gemduel-go/internal/game"
)

// Log is an append-only action list with a cursor. Undo and redo move the cursor;
// appending after an undo drops the undone tail.
type Log struct {
	MatchID string

	mu      sync.RWMutex
	reducer *game.Reducer
	actions []game.Action
	cursor  int
	state   *game.GameState
}

// New returns an empty log that folds actions with reducer.
func New(reducer *game.Reducer, matchID string) *Log {
	return &Log{MatchID: matchID, reducer: reducer}
}

// Append truncates the history after the cursor, records a and returns the new state.
// It reports whether a tail was dropped.
func (l *Log) Append(a game.Action) (*game.GameState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	truncated := l.cursor < len(l.actions)
	l.actions = append(l.actions[:l.cursor:l.cursor], a)
	l.cursor++
	l.state = l.reducer.Apply(l.state, a)
	if l.MatchID == "" && l.state != nil {
		l.MatchID = l.state.MatchID
	}
	return l.state, truncated
}

// Undo steps the cursor back by one.
func (l *Log) Undo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor == 0 {
		return false
	}
	l.seek(l.cursor - 1)
	return true
}

// Redo steps the cursor forward over an undone action.
func (l *Log) Redo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor == len(l.actions) {
		return false
	}
	l.seek(l.cursor + 1)
	return true
}

// Seek moves the cursor to n, clamped to the history, and returns the state there.
func (l *Log) Seek(n int) *game.GameState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.actions) {
		n = len(l.actions)
	}
	l.seek(n)
	return l.state
}

func (l *Log) seek(n int) {
	l.cursor = n
	l.state = l.reducer.Replay(l.actions[:n])
}

// Flatten collapses the history up to the cursor into a single FLATTEN action carrying
// the current state and returns it. The undone tail is dropped.
func (l *Log) Flatten() (game.Action, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == nil {
		return game.Action{}, game.ErrNoState
	}
	a, err := game.NewAction(game.ActionFlatten, game.SyncPayload{State: l.state})
	if err != nil {
		return game.Action{}, err
	}
	l.actions = []game.Action{a}
	l.cursor = 1
	return a, nil
}

// Preview returns the state a would produce at the cursor without recording it.
func (l *Log) Preview(a game.Action) *game.GameState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reducer.Apply(l.state, a)
}

// State returns the state at the cursor, or nil before the first action.
func (l *Log) State() *game.GameState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Cursor returns the number of actions folded into the current state.
func (l *Log) Cursor() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor
}

// Len returns the history length, undone actions included.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}

// Actions returns a copy of the whole history, undone actions included.
func (l *Log) Actions() []game.Action {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]game.Action(nil), l.actions...)
}

// load replaces the history and puts the cursor at its end.
func (l *Log) load(actions []game.Action) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.actions = actions
	l.seek(len(actions))
}
