package actionlog

import (
	"testing"

	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendAndReplay(t *testing.T) {
	r := newReducer(t)
	l := New(r, "")
	play(t, l, 3)

	assert.Equal(t, 4, l.Len())
	assert.Equal(t, 4, l.Cursor())
	assert.NotEmpty(t, l.MatchID)
	assert.Equal(t, game.Checksum(r.Replay(l.Actions())), game.Checksum(l.State()))
}

func TestLogUndoRedo(t *testing.T) {
	l := New(newReducer(t), "")
	play(t, l, 2)
	head := game.Checksum(l.State())

	require.True(t, l.Undo())
	assert.Equal(t, 2, l.Cursor())
	assert.Equal(t, game.P2, l.State().Turn)
	assert.NotEqual(t, head, game.Checksum(l.State()))

	require.True(t, l.Redo())
	assert.Equal(t, head, game.Checksum(l.State()))
	assert.False(t, l.Redo())

	for l.Undo() {
	}
	assert.Equal(t, 0, l.Cursor())
	assert.Nil(t, l.State())
}

func TestLogAppendAfterUndoDropsTail(t *testing.T) {
	l := New(newReducer(t), "")
	play(t, l, 3)

	l.Undo()
	l.Undo()
	s, truncated := l.Append(takeOne(t, l.State()))
	assert.True(t, truncated)
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3, l.Cursor())
	assert.Empty(t, s.Toast)
	assert.False(t, l.Redo())
}

func TestLogSeekClamps(t *testing.T) {
	l := New(newReducer(t), "")
	play(t, l, 2)

	assert.Nil(t, l.Seek(-4))
	assert.Equal(t, 0, l.Cursor())
	s := l.Seek(99)
	require.NotNil(t, s)
	assert.Equal(t, 3, l.Cursor())
	s = l.Seek(1)
	assert.Equal(t, 25, s.Board.Count())
}

func TestLogFlatten(t *testing.T) {
	r := newReducer(t)
	l := New(r, "")
	play(t, l, 3)
	l.Undo()
	want := game.Checksum(l.State())

	a, err := l.Flatten()
	require.NoError(t, err)
	assert.Equal(t, game.ActionFlatten, a.Type)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, []game.Action{a}, l.Actions())
	assert.Equal(t, want, game.Checksum(r.Replay(l.Actions())))

	_, err = New(r, "").Flatten()
	assert.ErrorIs(t, err, game.ErrNoState)
}
