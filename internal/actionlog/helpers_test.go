package actionlog

import (
	"testing"

	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/setup"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newReducer(t *testing.T) *game.Reducer {
	t.Helper()
	b, err := buffs.Default()
	require.NoError(t, err)
	return game.NewReducer(zaptest.NewLogger(t), b)
}

func initAction(t *testing.T, seed int64) game.Action {
	t.Helper()
	c, err := cards.DefaultRegistry()
	require.NoError(t, err)
	b, err := buffs.Default()
	require.NoError(t, err)
	st, err := setup.New(seed, c, b).Setup(setup.Options{Mode: game.ModeLocal, FirstPlayer: game.P1})
	require.NoError(t, err)
	return game.MustAction(game.ActionInit, game.InitPayload{Setup: st})
}

// takeOne picks up the first non-gold gem in spiral order, always a legal move.
func takeOne(t *testing.T, s *game.GameState) game.Action {
	t.Helper()
	for _, c := range gems.SpiralOrder() {
		if g := s.Board.At(c); !g.IsZero() && g.Color != gems.Gold {
			return game.MustAction(game.ActionTakeGems, game.TakeGemsPayload{Cells: []gems.Coord{c}})
		}
	}
	t.Fatal("board has no pickable gem")
	return game.Action{}
}

// play appends the bootstrap action and n single-gem pickups.
func play(t *testing.T, l *Log, n int) {
	t.Helper()
	s, _ := l.Append(initAction(t, 42))
	for i := 0; i < n; i++ {
		s, _ = l.Append(takeOne(t, s))
		require.Empty(t, s.Toast)
	}
}
