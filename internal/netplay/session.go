package netplay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gemduel/gemduel-go/internal/actionlog"
	"github.com/gemduel/gemduel-go/internal/game"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAwaitingSync rejects guest actions while a full snapshot is outstanding.
	ErrAwaitingSync = errors.New("netplay: waiting for full sync")
	// ErrHostOnly rejects a guest's attempt to start or resync the match.
	ErrHostOnly = errors.New("netplay: only the host starts or resyncs a match")
	// ErrNotDurable reports an action that was applied and broadcast but not persisted.
	ErrNotDurable = errors.New("netplay: action not persisted")
)

// Role is decided once when the connection is established.
type Role int

const (
	RoleHost Role = iota
	RoleGuest
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "guest"
}

// Config describes one end of a session.
type Config struct {
	Role  Role
	Local game.Player

	HeartbeatInterval time.Duration
	UnstableAfter     time.Duration
	DisconnectedAfter time.Duration

	// Resolve, on the host, fills random choices left open in an action before it is
	// applied and broadcast.
	Resolve func(*game.GameState, game.Action) game.Action

	// OnState is called after every change of the local mirror. It must not call back
	// into the session.
	OnState func(*game.GameState)
}

// DefaultConfig returns the heartbeat timings used when a field is zero.
func DefaultConfig(role Role, local game.Player) Config {
	return Config{
		Role:              role,
		Local:             local,
		HeartbeatInterval: 2 * time.Second,
		UnstableAfter:     5 * time.Second,
		DisconnectedAfter: 15 * time.Second,
	}
}

// Session is one peer's end of a match.
type Session struct {
	cfg       Config
	transport Transport
	rec       *actionlog.Recorder
	logger    *zap.Logger
	health    *monitor

	mu           sync.Mutex
	awaitingSync bool
}

// NewSession binds a recorder holding the local mirror to a transport.
func NewSession(cfg Config, t Transport, rec *actionlog.Recorder, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig(cfg.Role, cfg.Local)
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	if cfg.UnstableAfter <= 0 {
		cfg.UnstableAfter = def.UnstableAfter
	}
	if cfg.DisconnectedAfter <= 0 {
		cfg.DisconnectedAfter = def.DisconnectedAfter
	}
	return &Session{
		cfg:       cfg,
		transport: t,
		rec:       rec,
		logger:    logger.With(zap.String("role", cfg.Role.String()), zap.Stringer("player", cfg.Local)),
		health:    newMonitor(cfg.UnstableAfter, cfg.DisconnectedAfter, time.Now),
	}
}

// State returns the local mirror.
func (s *Session) State() *game.GameState {
	return s.rec.State()
}

// AwaitingSync reports whether the session dropped actions and waits for a snapshot.
func (s *Session) AwaitingSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingSync
}

// Health classifies the link from the time since the peer was last heard.
func (s *Session) Health() Health { return s.health.Health() }

// Latency is the smoothed heartbeat round trip.
func (s *Session) Latency() time.Duration { return s.health.Latency() }

// Submit plays a local action. The host applies it at once and broadcasts it; the
// guest sends a request and changes nothing until the host echoes it back or
// rejects it. On the host an ErrNotDurable error means the match went on but the
// action is missing from the store.
func (s *Session) Submit(ctx context.Context, a game.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := game.Authorize(s.rec.State(), s.cfg.Local, a); err != nil {
		return err
	}
	if s.cfg.Role == RoleGuest {
		if hostOnly(a) {
			return ErrHostOnly
		}
		if s.awaitingSync {
			return ErrAwaitingSync
		}
		return s.transport.Send(ctx, guestRequest(a))
	}
	rejected, err := s.commit(ctx, a)
	if rejected != nil {
		s.notify(rejected)
	}
	return err
}

func hostOnly(a game.Action) bool {
	return a.Type.IsBootstrap() || a.Type.IsSync()
}

// commit applies a on the host and echoes it with the resulting checksum. A rejected
// action is neither recorded nor broadcast; the state carrying its toast is returned.
// A store failure does not stop the broadcast, since the host already moved on.
func (s *Session) commit(ctx context.Context, a game.Action) (*game.GameState, error) {
	if s.cfg.Resolve != nil {
		a = s.cfg.Resolve(s.rec.State(), a)
	}
	next := s.rec.Log().Preview(a)
	if next != nil && next.Toast != "" {
		return next, nil
	}
	next, recErr := s.rec.Record(ctx, a)
	s.notify(next)
	if err := s.transport.Send(ctx, gameAction(a, game.Checksum(next))); err != nil {
		return nil, err
	}
	if recErr != nil {
		s.logger.Error("failed to record action", zap.String("action", string(a.Type)), zap.Error(recErr))
		return nil, fmt.Errorf("%w: %v", ErrNotDurable, recErr)
	}
	return nil, nil
}

// PushSnapshot sends the host's full state to the guest.
func (s *Session) PushSnapshot(ctx context.Context, reason string) error {
	if s.cfg.Role != RoleHost {
		return fmt.Errorf("only the host pushes snapshots")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.Send(ctx, syncState(s.rec.State(), reason))
}

// RequestSync asks the host for a full snapshot and drops actions until it arrives.
func (s *Session) RequestSync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingSync = true
	return s.transport.Send(ctx, Message{Type: MsgRequestFullSync})
}

// Run pumps incoming messages and heartbeats until ctx ends or the transport fails.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.heartbeat(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		return s.transport.Close()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		m, err := s.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := s.handle(ctx, m); err != nil {
			return err
		}
	}
}

func (s *Session) heartbeat(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ping := Message{Type: MsgPing, Timestamp: time.Now().UnixMilli()}
			if err := s.transport.Send(ctx, ping); err != nil {
				return err
			}
			if h := s.health.Health(); h != HealthConnected {
				s.logger.Warn("peer unresponsive", zap.String("health", string(h)))
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, m Message) error {
	switch m.Type {
	case MsgPing:
		s.health.Seen()
		return s.transport.Send(ctx, Message{Type: MsgPong, Timestamp: m.Timestamp})
	case MsgPong:
		s.health.Pong(time.UnixMilli(m.Timestamp))
		return nil
	}

	s.health.Seen()
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case m.Type == MsgGuestRequest && s.cfg.Role == RoleHost:
		return s.onGuestRequest(ctx, m)
	case m.Type == MsgGameAction && s.cfg.Role == RoleGuest:
		return s.onGameAction(ctx, m)
	case m.Type == MsgActionRejected && s.cfg.Role == RoleGuest:
		s.onRejected(m)
		return nil
	case m.Type == MsgRequestFullSync && s.cfg.Role == RoleHost:
		s.logger.Info("guest requested full sync")
		return s.transport.Send(ctx, syncState(s.rec.State(), "requested"))
	case m.Type == MsgSyncState && s.cfg.Role == RoleGuest:
		return s.onSyncState(ctx, m)
	}
	s.logger.Warn("unexpected message", zap.String("type", string(m.Type)))
	return nil
}

func (s *Session) onGuestRequest(ctx context.Context, m Message) error {
	if m.Action == nil {
		s.logger.Warn("guest request without action")
		return nil
	}
	a := *m.Action
	err := game.Authorize(s.rec.State(), s.cfg.Local.Opponent(), a)
	if err == nil && hostOnly(a) {
		err = ErrHostOnly
	}
	if err != nil {
		s.logger.Warn("dropped guest action",
			zap.String("action", string(a.Type)),
			zap.Error(err),
		)
		return s.transport.Send(ctx, actionRejected(a, err.Error()))
	}

	rejected, err := s.commit(ctx, a)
	switch {
	case errors.Is(err, ErrNotDurable):
		return nil
	case err != nil:
		return err
	case rejected != nil:
		s.logger.Debug("rejected guest action", zap.String("action", string(a.Type)), zap.String("reason", rejected.Toast))
		return s.transport.Send(ctx, actionRejected(a, rejected.Toast))
	}
	return nil
}

// onRejected shows the host's reason on the guest's mirror without changing it.
func (s *Session) onRejected(m Message) {
	s.logger.Info("host rejected action", zap.String("reason", m.Reason))
	st := s.rec.State()
	if st == nil {
		return
	}
	st = st.Clone()
	st.Toast = m.Reason
	s.notify(st)
}

func (s *Session) onGameAction(ctx context.Context, m Message) error {
	if m.Action == nil {
		return nil
	}
	a := *m.Action
	if s.awaitingSync {
		s.logger.Debug("dropped action while awaiting sync", zap.String("action", string(a.Type)))
		return nil
	}

	next := s.rec.Log().Preview(a)
	if m.Checksum != "" {
		if local := game.Checksum(next); local != m.Checksum {
			s.logger.Warn("checksum mismatch",
				zap.String("action", string(a.Type)),
				zap.String("local", local),
				zap.String("remote", m.Checksum),
			)
			s.awaitingSync = true
			return s.transport.Send(ctx, Message{Type: MsgRequestFullSync})
		}
	}

	next, err := s.rec.Record(ctx, a)
	if err != nil {
		s.logger.Error("failed to record action", zap.String("action", string(a.Type)), zap.Error(err))
	}
	s.notify(next)
	return nil
}

func (s *Session) onSyncState(ctx context.Context, m Message) error {
	if m.State == nil {
		s.logger.Warn("sync without state")
		return nil
	}
	a, err := game.NewAction(game.ActionForceSync, game.SyncPayload{State: m.State})
	if err != nil {
		return err
	}
	next, err := s.rec.Record(ctx, a)
	if err != nil {
		s.logger.Error("failed to record sync", zap.Error(err))
	}
	s.awaitingSync = false
	s.logger.Info("applied full sync",
		zap.String("reason", m.Reason),
		zap.String("checksum", game.Checksum(next)),
	)
	s.notify(next)
	return nil
}

func (s *Session) notify(st *game.GameState) {
	if s.cfg.OnState != nil {
		s.cfg.OnState(st)
	}
}
