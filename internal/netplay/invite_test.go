package netplay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testSecret = []byte("not-so-secret")

func TestInviteRoundTrip(t *testing.T) {
	token, err := IssueInvite(testSecret, "match-1", time.Minute)
	require.NoError(t, err)

	matchID, err := VerifyInvite(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "match-1", matchID)
}

func TestInviteRejections(t *testing.T) {
	expired, err := IssueInvite(testSecret, "match-1", -time.Minute)
	require.NoError(t, err)
	forged, err := IssueInvite([]byte("other"), "match-1", time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expired,
		"forged":  forged,
		"empty":   "",
		"garbage": "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := VerifyInvite(testSecret, token)
			assert.ErrorIs(t, err, ErrBadInvite)
		})
	}
}

func TestAcceptRequiresInvite(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "ws://" + ln.Addr().String() + "/duel"

	l := Listener{Path: "/duel", InviteSecret: testSecret, MatchID: "match-1", Logger: zaptest.NewLogger(t)}
	accepted := make(chan *WSTransport, 1)
	go func() {
		tr, err := l.Accept(ctx, ln)
		if err == nil {
			accepted <- tr
		}
	}()

	_, err = Dial(ctx, url)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)

	wrongMatch, err := IssueInvite(testSecret, "match-2", time.Minute)
	require.NoError(t, err)
	_, err = Dial(ctx, url+"?invite="+wrongMatch)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)

	token, err := IssueInvite(testSecret, "match-1", time.Minute)
	require.NoError(t, err)
	client, err := Dial(ctx, url+"?invite="+token)
	require.NoError(t, err)
	defer client.Close()

	select {
	case tr := <-accepted:
		tr.Close()
	case <-ctx.Done():
		t.Fatal("guest with a valid invite was not accepted")
	}
}
