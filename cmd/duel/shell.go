package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gemduel/gemduel-go/internal/actionlog"
	"github.com/gemduel/gemduel-go/internal/game"
	"go.uber.org/zap"
)

// controller is the side of a match the shell drives.
type controller interface {
	Submit(ctx context.Context, a game.Action) error
	State() *game.GameState
}

// command is a ":name args" line.
type command func(ctx context.Context, args []string) error

// shell reads one action per line as JSON ({"type": ..., "payload": ...}) and
// prints a summary line after every state change.
type shell struct {
	ctl      controller
	seat     game.Player
	log      *actionlog.Log
	out      io.Writer
	logger   *zap.Logger
	commands map[string]command

	outMu sync.Mutex
}

func newShell(ctl controller, seat game.Player, log *actionlog.Log, out io.Writer, logger *zap.Logger) *shell {
	sh := &shell{ctl: ctl, seat: seat, log: log, out: out, logger: logger}
	sh.commands = map[string]command{
		"state":    sh.cmdState,
		"checksum": sh.cmdChecksum,
		"peek":     sh.cmdPeek,
	}
	return sh
}

// summary is the line printed after each change.
type summary struct {
	Turn     game.Player `json:"turn"`
	Status   string      `json:"status"`
	Winner   game.Player `json:"winner"`
	Toast    string      `json:"toast,omitempty"`
	Feedback []string    `json:"feedback,omitempty"`
	Checksum string      `json:"checksum"`
}

func (sh *shell) printJSON(v any) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		sh.logger.Error("failed to encode output", zap.Error(err))
		return
	}
	fmt.Fprintln(sh.out, string(data))
}

// onState prints the summary of s. It is the sessions' OnState hook.
func (sh *shell) onState(s *game.GameState) {
	if s == nil {
		return
	}
	sh.printJSON(summary{
		Turn:     s.Turn,
		Status:   s.Status().String(),
		Winner:   s.Winner,
		Toast:    s.Toast,
		Feedback: s.Feedback,
		Checksum: game.Checksum(s),
	})
}

// run consumes in until EOF or ctx ends.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := sh.handle(ctx, line); err != nil {
			sh.printJSON(map[string]string{"error": err.Error()})
		}
	}
	return scanner.Err()
}

func (sh *shell) handle(ctx context.Context, line string) error {
	if strings.HasPrefix(line, ":") {
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			return fmt.Errorf("empty command")
		}
		cmd, ok := sh.commands[fields[0]]
		if !ok {
			return fmt.Errorf("unknown command %q", fields[0])
		}
		return cmd(ctx, fields[1:])
	}

	var a game.Action
	if err := json.Unmarshal([]byte(line), &a); err != nil {
		return fmt.Errorf("not an action: %w", err)
	}
	return sh.ctl.Submit(ctx, a)
}

func (sh *shell) cmdState(ctx context.Context, args []string) error {
	s := sh.ctl.State()
	if s == nil {
		return game.ErrNoState
	}
	sh.printJSON(s)
	return nil
}

func (sh *shell) cmdChecksum(ctx context.Context, args []string) error {
	sh.printJSON(map[string]string{"checksum": game.Checksum(sh.ctl.State())})
	return nil
}

func (sh *shell) cmdPeek(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: :peek <level>")
	}
	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad level %q", args[0])
	}
	seat := sh.seat
	if seat == game.NoPlayer && sh.ctl.State() != nil {
		seat = sh.ctl.State().Turn
	}
	top, err := game.PeekDeck(sh.ctl.State(), seat, level)
	if err != nil {
		return err
	}
	sh.printJSON(top)
	return nil
}

// withLogCommands adds the commands that need the action log.
func (sh *shell) withLogCommands(exportDir string) {
	sh.commands["save"] = func(ctx context.Context, args []string) error {
		path, err := sh.log.SaveToFile(exportDir)
		if err != nil {
			return err
		}
		sh.printJSON(map[string]string{"saved": path})
		return nil
	}
	sh.commands["history"] = func(ctx context.Context, args []string) error {
		sh.printJSON(map[string]int{"cursor": sh.log.Cursor(), "length": sh.log.Len()})
		return nil
	}
}
