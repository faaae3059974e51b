package netplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// The duel service has a single bidirectional stream carrying Message values as JSON,
// so no generated stubs are involved.
const (
	duelService   = "gemduel.netplay.Duel"
	playMethod    = "/" + duelService + "/Play"
	matchIDHeader = "match-id"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec encodes stream messages exactly as the websocket transport does.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

type duelServer interface {
	play(grpc.ServerStream) error
}

var duelServiceDesc = grpc.ServiceDesc{
	ServiceName: duelService,
	HandlerType: (*duelServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    "Play",
		ServerStreams: true,
		ClientStreams: true,
		Handler: func(srv any, stream grpc.ServerStream) error {
			return srv.(duelServer).play(stream)
		},
	}},
	Metadata: "netplay/grpc.go",
}

type msgStream interface {
	SendMsg(m any) error
	RecvMsg(m any) error
}

// GRPCTransport carries messages over one gRPC bidirectional stream.
type GRPCTransport struct {
	stream msgStream
	mu     sync.Mutex
	once   sync.Once
	close  func()
}

func (t *GRPCTransport) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.stream.SendMsg(&m); err != nil {
		return streamErr(fmt.Sprintf("send %s", m.Type), err)
	}
	return nil
}

// Receive blocks until a message arrives. Like the websocket transport, a read in
// progress is interrupted by Close, not by ctx.
func (t *GRPCTransport) Receive(ctx context.Context) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	var m Message
	if err := t.stream.RecvMsg(&m); err != nil {
		return Message{}, streamErr("receive", err)
	}
	return m, nil
}

func (t *GRPCTransport) Close() error {
	t.once.Do(t.close)
	return nil
}

func streamErr(op string, err error) error {
	if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
		return ErrClosed
	}
	return fmt.Errorf("%s: %w", op, err)
}

// DialGRPC opens the duel stream on a host at target (host:port), presenting invite
// when it is not empty.
func DialGRPC(ctx context.Context, target, invite string) (*GRPCTransport, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodec{}.Name())),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	// The stream outlives ctx; ctx only bounds the handshake.
	streamCtx, cancel := context.WithCancel(context.Background())
	if invite != "" {
		streamCtx = metadata.AppendToOutgoingContext(streamCtx, inviteParam, invite)
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	fail := func(err error) (*GRPCTransport, error) {
		cancel()
		_ = conn.Close()
		if status.Code(err) == codes.PermissionDenied {
			return nil, fmt.Errorf("dial %s: %w: %s", target, ErrBadInvite, status.Convert(err).Message())
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	stream, err := conn.NewStream(streamCtx, &duelServiceDesc.Streams[0], playMethod, grpc.WaitForReady(true))
	if err != nil {
		return fail(err)
	}
	// The host sends headers once it admits the guest. A refusal ends the stream
	// without them and its status comes out of RecvMsg.
	md, err := stream.Header()
	if err == nil && len(md.Get(matchIDHeader)) == 0 {
		if err = stream.RecvMsg(&Message{}); err == nil {
			err = errors.New("host sent a message before admitting the guest")
		}
	}
	if err != nil {
		return fail(err)
	}

	return &GRPCTransport{
		stream: stream,
		close: func() {
			_ = stream.CloseSend()
			cancel()
			_ = conn.Close()
		},
	}, nil
}

// grpcAcceptor serves the duel stream to the first admitted guest.
type grpcAcceptor struct {
	l      Listener
	logger *zap.Logger
	srv    *grpc.Server
	taken  atomic.Bool
	peers  chan *GRPCTransport
}

func (a *grpcAcceptor) play(stream grpc.ServerStream) error {
	ctx := stream.Context()
	remote := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		remote = p.Addr.String()
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(inviteParam); len(v) > 0 {
			token = v[0]
		}
	}
	if err := a.l.admit(token); err != nil {
		a.logger.Warn("rejected guest", zap.String("remote", remote), zap.Error(err))
		return status.Error(codes.PermissionDenied, err.Error())
	}
	if !a.taken.CompareAndSwap(false, true) {
		a.logger.Warn("match already has a guest", zap.String("remote", remote))
		return status.Error(codes.ResourceExhausted, "match already has a guest")
	}
	if err := stream.SendHeader(metadata.Pairs(matchIDHeader, a.l.MatchID)); err != nil {
		return err
	}

	done := make(chan struct{})
	t := &GRPCTransport{
		stream: stream,
		close: func() {
			close(done)
			go a.srv.GracefulStop()
		},
	}
	a.peers <- t
	a.logger.Info("peer connected", zap.String("remote", remote))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AcceptOneGRPC listens on addr until the first guest opens the duel stream.
func (l Listener) AcceptOneGRPC(ctx context.Context, addr string) (*GRPCTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return l.AcceptGRPC(ctx, ln)
}

// AcceptGRPC serves the duel stream on ln and returns the first admitted guest. Later
// guests are refused; the server stops when the returned transport is closed.
func (l Listener) AcceptGRPC(ctx context.Context, ln net.Listener) (*GRPCTransport, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
		grpc.MaxConcurrentStreams(4),
	)
	acc := &grpcAcceptor{l: l, logger: logger, srv: srv, peers: make(chan *GRPCTransport, 1)}
	srv.RegisterService(&duelServiceDesc, acc)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC listener failed", zap.Error(err))
		}
	}()
	logger.Info("waiting for guest", zap.String("addr", ln.Addr().String()), zap.String("transport", "grpc"))

	select {
	case t := <-acc.peers:
		return t, nil
	case <-ctx.Done():
		srv.Stop()
		return nil, ctx.Err()
	}
}

// DialURL connects with the transport named by the URL scheme: ws:// and wss:// dial
// a websocket, grpc://host:port?invite=... opens the gRPC duel stream.
func DialURL(ctx context.Context, raw string) (Transport, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	switch u.Scheme {
	case "ws", "wss":
		t, err := Dial(ctx, raw)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "grpc":
		t, err := DialGRPC(ctx, u.Host, u.Query().Get(inviteParam))
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, raw)
	}
}
