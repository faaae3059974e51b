package actionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/gemduel/gemduel-go/internal/game"
	"go.uber.org/zap"
)

// Recorder mirrors a Log into a Store. Every append is persisted with the checksum of
// the state it produced; an append after an undo first deletes the undone tail.
type Recorder struct {
	log    *Log
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder wraps log. A nil store records in memory only.
func NewRecorder(log *Log, store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{log: log, store: store, logger: logger, now: time.Now}
}

// Log returns the recorded log.
func (r *Recorder) Log() *Log { return r.log }

// State returns the state at the log cursor.
func (r *Recorder) State() *game.GameState { return r.log.State() }

// Record appends a to the log and persists it.
func (r *Recorder) Record(ctx context.Context, a game.Action) (*game.GameState, error) {
	seq := r.log.Cursor()
	state, truncated := r.log.Append(a)
	if r.store == nil {
		return state, nil
	}

	matchID := r.log.MatchID
	if truncated {
		if err := r.store.Truncate(ctx, matchID, seq); err != nil {
			return state, fmt.Errorf("failed to drop undone actions: %w", err)
		}
		r.logger.Debug("dropped undone actions",
			zap.String("match_id", matchID),
			zap.Int("from", seq),
		)
	}

	entry := Entry{
		MatchID:    matchID,
		Seq:        seq,
		Action:     a,
		Checksum:   game.Checksum(state),
		RecordedAt: r.now(),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return state, fmt.Errorf("failed to persist action: %w", err)
	}

	r.logger.Debug("recorded action",
		zap.String("match_id", matchID),
		zap.Int("seq", seq),
		zap.String("action", string(a.Type)),
	)
	return state, nil
}

// Flatten collapses the log into a single FLATTEN action and rewrites the stored
// history to match it.
func (r *Recorder) Flatten(ctx context.Context) error {
	a, err := r.log.Flatten()
	if err != nil {
		return err
	}
	if r.store == nil {
		return nil
	}

	matchID := r.log.MatchID
	if err := r.store.Truncate(ctx, matchID, 0); err != nil {
		return fmt.Errorf("failed to drop flattened actions: %w", err)
	}
	entry := Entry{
		MatchID:    matchID,
		Seq:        0,
		Action:     a,
		Checksum:   game.Checksum(r.log.State()),
		RecordedAt: r.now(),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist flattened state: %w", err)
	}
	r.logger.Info("flattened action log", zap.String("match_id", matchID))
	return nil
}

// Restore rebuilds the log of matchID from store and checks every stored checksum
// against the replayed state.
func Restore(ctx context.Context, store Store, matchID string, reducer *game.Reducer, logger *zap.Logger) (*Recorder, error) {
	entries, err := store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}

	log := New(reducer, matchID)
	for _, e := range entries {
		state, _ := log.Append(e.Action)
		if e.Checksum != "" && e.Checksum != game.Checksum(state) {
			return nil, fmt.Errorf("match %s diverges at seq %d", matchID, e.Seq)
		}
	}

	rec := NewRecorder(log, store, logger)
	rec.logger.Info("restored match",
		zap.String("match_id", matchID),
		zap.Int("actions", len(entries)),
	)
	return rec, nil
}
