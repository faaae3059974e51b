package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gemduel/gemduel-go/internal/actionlog"
	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/game/setup"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLocalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "local",
		Short: "Play both seats from one terminal",
		Long: `Play a hot-seat match. Actions are read from stdin as JSON lines and always act
for the player whose turn it is. :undo, :redo and :flatten edit the history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLocal(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// hotSeat records actions for whoever owns the turn. Rejected actions only show
// their toast.
type hotSeat struct {
	rec     *actionlog.Recorder
	gen     *setup.Generator
	onState func(*game.GameState)
}

func (h *hotSeat) State() *game.GameState { return h.rec.State() }

func (h *hotSeat) Submit(ctx context.Context, a game.Action) error {
	a = h.gen.Resolve(h.rec.State(), a)
	if next := h.rec.Log().Preview(a); next != nil && next.Toast != "" {
		h.onState(next)
		return nil
	}
	s, err := h.rec.Record(ctx, a)
	h.onState(s)
	return err
}

func (a *app) runLocal(ctx context.Context, in io.Reader, out io.Writer) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	gen := a.generator()
	boot, _, err := a.bootstrap(gen)
	if err != nil {
		return err
	}

	log := actionlog.New(a.reducer, "")
	sh := newShell(nil, game.NoPlayer, log, out, a.logger)
	seat := &hotSeat{rec: actionlog.NewRecorder(log, store, a.logger), gen: gen, onState: sh.onState}
	sh.ctl = seat
	sh.withLogCommands(a.cfg.Storage.ExportDir)
	sh.commands["undo"] = func(ctx context.Context, args []string) error {
		if !log.Undo() {
			return fmt.Errorf("nothing to undo")
		}
		sh.onState(log.State())
		return nil
	}
	sh.commands["redo"] = func(ctx context.Context, args []string) error {
		if !log.Redo() {
			return fmt.Errorf("nothing to redo")
		}
		sh.onState(log.State())
		return nil
	}
	sh.commands["flatten"] = func(ctx context.Context, args []string) error {
		if err := seat.rec.Flatten(ctx); err != nil {
			return err
		}
		sh.onState(log.State())
		return nil
	}

	if err := seat.Submit(ctx, boot); err != nil {
		return err
	}
	a.logger.Info("match started", zap.String("match_id", log.MatchID))
	return sh.run(ctx, in)
}
