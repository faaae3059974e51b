package netplay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second
	// inviteParam carries the invite token in a websocket URL and in gRPC metadata.
	inviteParam = "invite"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // peers are not browsers
	},
}

// WSTransport carries messages over a websocket connection as JSON text frames.
type WSTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWSTransport wraps an established connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// Dial connects to a host at url (ws://host:port/path).
func Dial(ctx context.Context, url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWSTransport(conn), nil
}

// Upgrade accepts a websocket handshake on an HTTP request.
func Upgrade(w http.ResponseWriter, r *http.Request) (*WSTransport, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	return NewWSTransport(conn), nil
}

func (t *WSTransport) Send(ctx context.Context, m Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := t.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("write %s: %w", m.Type, err)
	}
	return nil
}

// Receive blocks until a message arrives. Cancelling ctx does not interrupt a read in
// progress; Close does.
func (t *WSTransport) Receive(ctx context.Context) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	var m Message
	if err := t.conn.ReadJSON(&m); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
			errors.Is(err, net.ErrClosed) {
			return Message{}, ErrClosed
		}
		return Message{}, fmt.Errorf("read: %w", err)
	}
	return m, nil
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.mu.Unlock()
	return t.conn.Close()
}

// Listener admits the guest of one match.
type Listener struct {
	Path string
	// InviteSecret, when set, requires an "invite" query parameter signed with it.
	InviteSecret []byte
	// MatchID, when set with InviteSecret, must be the match the invite names.
	MatchID string
	Logger  *zap.Logger
}

// admit checks the invite token a guest presented.
func (l Listener) admit(token string) error {
	if len(l.InviteSecret) == 0 {
		return nil
	}
	matchID, err := VerifyInvite(l.InviteSecret, token)
	if err != nil {
		return err
	}
	if l.MatchID != "" && matchID != l.MatchID {
		return fmt.Errorf("%w: invite is for match %s", ErrBadInvite, matchID)
	}
	return nil
}

// AcceptOne listens on addr until the first guest connects.
func (l Listener) AcceptOne(ctx context.Context, addr string) (*WSTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return l.Accept(ctx, ln)
}

// Accept serves ln until the first guest connects and returns its transport. The
// listener is shut down afterwards; the accepted connection stays open.
func (l Listener) Accept(ctx context.Context, ln net.Listener) (*WSTransport, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	peers := make(chan *WSTransport, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(l.Path, func(w http.ResponseWriter, r *http.Request) {
		if err := l.admit(r.URL.Query().Get(inviteParam)); err != nil {
			logger.Warn("rejected guest", zap.String("remote", r.RemoteAddr), zap.Error(err))
			http.Error(w, "invalid invite", http.StatusForbidden)
			return
		}
		t, err := Upgrade(w, r)
		if err != nil {
			logger.Warn("rejected peer", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}
		select {
		case peers <- t:
			logger.Info("peer connected", zap.String("remote", r.RemoteAddr))
		default:
			logger.Warn("match already has a guest", zap.String("remote", r.RemoteAddr))
			t.Close()
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: writeWait}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listener failed", zap.Error(err))
		}
	}()
	logger.Info("waiting for guest", zap.String("addr", ln.Addr().String()), zap.String("path", l.Path))

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case t := <-peers:
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
