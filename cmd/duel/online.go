package main

import (
	"context"
	"io"

	"github.com/gemduel/gemduel-go/internal/actionlog"
	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/netplay"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHostCommand(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a match and wait for a guest to join",
		Long: `Host a match as player p1. The host is the authority: it deals the match,
approves the guest's actions and resolves their random choices.

Actions are read from stdin as JSON lines, e.g.
  {"type":"TAKE_GEMS","payload":{"cells":[{"row":2,"col":2}]}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Network.ListenAddr
			}
			return a.runHost(cmd.Context(), listen, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default network.listen_addr)")
	return cmd
}

func newJoinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "join <url>",
		Short:   "Join a hosted match as the guest",
		Example: "  duel join ws://192.168.1.20:7480/duel\n  duel join 'ws://192.168.1.20:7480/duel?invite=<token>'\n  duel join 'grpc://192.168.1.20:7480?invite=<token>'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runJoin(cmd.Context(), args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) sessionConfig(role netplay.Role, seat game.Player) netplay.Config {
	cfg := netplay.DefaultConfig(role, seat)
	cfg.HeartbeatInterval = a.cfg.Network.HeartbeatInterval
	cfg.UnstableAfter = a.cfg.Network.UnstableAfter
	cfg.DisconnectedAfter = a.cfg.Network.DisconnectedAfter
	return cfg
}

func (a *app) runHost(ctx context.Context, listen string, in io.Reader, out io.Writer) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	gen := a.generator()
	boot, matchID, err := a.bootstrap(gen)
	if err != nil {
		return err
	}

	l := netplay.Listener{Path: a.cfg.Network.Path, MatchID: matchID, Logger: a.logger}
	grpcTransport := a.cfg.Network.Transport == "grpc"
	if secret := a.cfg.Network.InviteSecret; secret != "" {
		l.InviteSecret = []byte(secret)
		token, err := netplay.IssueInvite(l.InviteSecret, matchID, a.cfg.Network.InviteTTL)
		if err != nil {
			return err
		}
		url := "ws://" + listen + l.Path + "?invite=" + token
		if grpcTransport {
			url = "grpc://" + listen + "?invite=" + token
		}
		a.logger.Info("invite issued",
			zap.String("match_id", matchID),
			zap.String("url", url),
			zap.Duration("ttl", a.cfg.Network.InviteTTL),
		)
	}
	var t netplay.Transport
	if grpcTransport {
		t, err = acceptGRPC(ctx, l, listen)
	} else {
		t, err = acceptWebsocket(ctx, l, listen)
	}
	if err != nil {
		return err
	}

	log := actionlog.New(a.reducer, "")
	sh := newShell(nil, game.P1, log, out, a.logger)
	cfg := a.sessionConfig(netplay.RoleHost, game.P1)
	cfg.Resolve = gen.Resolve
	cfg.OnState = sh.onState
	sess := netplay.NewSession(cfg, t, actionlog.NewRecorder(log, store, a.logger), a.logger)
	sh.ctl = sess
	sh.withLogCommands(a.cfg.Storage.ExportDir)
	sh.withSessionCommands(sess)
	sh.commands["snapshot"] = func(ctx context.Context, args []string) error {
		return sess.PushSnapshot(ctx, "manual")
	}

	return a.play(ctx, sess, func(ctx context.Context) error {
		if err := sess.Submit(ctx, boot); err != nil {
			return err
		}
		a.logger.Info("match started", zap.String("match_id", log.MatchID))
		return sh.run(ctx, in)
	})
}

func (a *app) runJoin(ctx context.Context, url string, in io.Reader, out io.Writer) error {
	t, err := netplay.DialURL(ctx, url)
	if err != nil {
		return err
	}

	log := actionlog.New(a.reducer, "")
	sh := newShell(nil, game.P2, log, out, a.logger)
	cfg := a.sessionConfig(netplay.RoleGuest, game.P2)
	cfg.OnState = sh.onState
	sess := netplay.NewSession(cfg, t, actionlog.NewRecorder(log, nil, a.logger), a.logger)
	sh.ctl = sess
	sh.withLogCommands(a.cfg.Storage.ExportDir)
	sh.withSessionCommands(sess)
	sh.commands["resync"] = func(ctx context.Context, args []string) error {
		return sess.RequestSync(ctx)
	}

	return a.play(ctx, sess, func(ctx context.Context) error {
		return sh.run(ctx, in)
	})
}

// acceptWebsocket and acceptGRPC keep a nil transport from becoming a non-nil interface.
func acceptWebsocket(ctx context.Context, l netplay.Listener, addr string) (netplay.Transport, error) {
	t, err := l.AcceptOne(ctx, addr)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func acceptGRPC(ctx context.Context, l netplay.Listener, addr string) (netplay.Transport, error) {
	t, err := l.AcceptOneGRPC(ctx, addr)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// play runs the session next to the input loop. The match lasts as long as the
// session; input ending early only stops local play. A blocked stdin read is left
// behind when the session ends.
func (a *app) play(ctx context.Context, sess *netplay.Session, input func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()
	inputErr := make(chan error, 1)
	go func() { inputErr <- input(ctx) }()

	select {
	case err := <-runErr:
		return err
	case err := <-inputErr:
		if err != nil {
			cancel()
			<-runErr
			return err
		}
		a.logger.Info("input closed, serving peer until interrupted")
		return <-runErr
	}
}

func (sh *shell) withSessionCommands(sess *netplay.Session) {
	sh.commands["health"] = func(ctx context.Context, args []string) error {
		sh.printJSON(map[string]any{
			"health":       sess.Health(),
			"latency_ms":   sess.Latency().Milliseconds(),
			"awaitingSync": sess.AwaitingSync(),
		})
		return nil
	}
}
