package netplay

import (
	"context"
	"testing"
	"time"

	"github.com/gemduel/gemduel-go/internal/actionlog"
	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/setup"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	waitFor     = 2 * time.Second
	waitForTick = 5 * time.Millisecond
)

func newRecorder(t *testing.T) *actionlog.Recorder {
	t.Helper()
	b, err := buffs.Default()
	require.NoError(t, err)
	r := game.NewReducer(zaptest.NewLogger(t), b)
	return actionlog.NewRecorder(actionlog.New(r, ""), nil, zaptest.NewLogger(t))
}

func newGenerator(t *testing.T) *setup.Generator {
	t.Helper()
	c, err := cards.DefaultRegistry()
	require.NoError(t, err)
	b, err := buffs.Default()
	require.NoError(t, err)
	return setup.New(77, c, b)
}

func initAction(t *testing.T) game.Action {
	t.Helper()
	st, err := newGenerator(t).Setup(setup.Options{Mode: game.ModeOnline, FirstPlayer: game.P1})
	require.NoError(t, err)
	return game.MustAction(game.ActionInit, game.InitPayload{Setup: st})
}

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

// quietConfig keeps heartbeats out of the way of message-order assertions.
func quietConfig(role Role, local game.Player) Config {
	cfg := DefaultConfig(role, local)
	cfg.HeartbeatInterval = time.Hour
	return cfg
}

// start runs s until the test ends.
func start(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

// receive reads the next non-heartbeat message from a raw transport.
func receive(t *testing.T, tr Transport) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	for {
		m, err := tr.Receive(ctx)
		require.NoError(t, err)
		if m.Type != MsgPing && m.Type != MsgPong {
			return m
		}
	}
}
