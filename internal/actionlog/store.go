package actionlog

import (
	"context"
	"errors"
	"time"

	"github.com/gemduel/gemduel-go/internal/game"
)

var (
	// ErrNotFound is returned when a match has no stored actions.
	ErrNotFound = errors.New("actionlog: match not found")
	// ErrConflict is returned when a sequence number is already taken.
	ErrConflict = errors.New("actionlog: sequence already recorded")
)

// Entry is one persisted action. Seq starts at 0 for the bootstrap action.
type Entry struct {
	MatchID    string
	Seq        int
	Action     game.Action
	Checksum   string
	RecordedAt time.Time
}

// Store persists match histories.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// Truncate deletes every entry of the match with Seq >= from.
	Truncate(ctx context.Context, matchID string, from int) error
	Load(ctx context.Context, matchID string) ([]Entry, error)
	Matches(ctx context.Context) ([]string, error)
	Close() error
}
