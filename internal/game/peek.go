package game

import (
	"errors"
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
)

// ErrNoPeek is returned when a player has no deck-peeking buff.
var ErrNoPeek = errors.New("player cannot peek at decks")

// PeekDeck returns the top cards of a deck for a player whose buff allows it. It is
// read-only and never touches state.
func PeekDeck(s *GameState, p Player, level int) ([]cards.Card, error) {
	if s == nil || !p.Valid() {
		return nil, fmt.Errorf("peek deck: %w", ErrNoState)
	}
	buff := s.Player(p).Buff
	if buff == nil || buff.Buff.Effect.Active.Kind != buffs.ActivePeekDeck {
		return nil, ErrNoPeek
	}
	if level < 1 || level > len(s.Decks) {
		return nil, fmt.Errorf("peek deck: no level %d", level)
	}
	deck := s.Decks[level-1]
	n := min(buff.Buff.Effect.Active.Count, len(deck))
	return cards.CloneAll(deck[:n]), nil
}
