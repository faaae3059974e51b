package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gemduel/gemduel-go/internal/actionlog"
	"github.com/gemduel/gemduel-go/internal/config"
	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/setup"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds what every subcommand shares.
type app struct {
	configPath string
	envFile    string

	cfg     *config.Config
	logger  *zap.Logger
	cards   *cards.Registry
	buffs   *buffs.Registry
	reducer *game.Reducer
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "duel",
		Short:         "Two-player gem duel engine with peer-to-peer play",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file with GEMDUEL_* overrides")

	cmd.AddCommand(newHostCommand(a))
	cmd.AddCommand(newJoinCommand(a))
	cmd.AddCommand(newLocalCommand(a))
	cmd.AddCommand(newReplayCommand(a))
	return cmd
}

func (a *app) init() error {
	if a.envFile != "" {
		if err := config.LoadEnvFile(a.envFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = initLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cards, err = loadCards(cfg.Data.CardsFile)
	if err != nil {
		return err
	}
	a.buffs, err = loadBuffs(cfg.Data.BuffsFile)
	if err != nil {
		return err
	}
	a.reducer = game.NewReducer(a.logger, a.buffs)

	a.logger.Debug("configuration loaded",
		zap.String("version", version),
		zap.String("config", a.configPath),
		zap.String("storage", cfg.Storage.Driver),
	)
	return nil
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	// stdout carries game output.
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func loadCards(path string) (*cards.Registry, error) {
	if path == "" {
		return cards.DefaultRegistry()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open card table: %w", err)
	}
	defer f.Close()
	return cards.LoadRegistry(f)
}

func loadBuffs(path string) (*buffs.Registry, error) {
	if path == "" {
		return buffs.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open buff table: %w", err)
	}
	defer f.Close()
	return buffs.Load(f)
}

// openStore returns the configured store, or nil for in-memory play.
func (a *app) openStore(ctx context.Context) (actionlog.Store, error) {
	switch a.cfg.Storage.Driver {
	case "sqlite":
		return actionlog.OpenSQLite(a.cfg.Storage.SQLitePath)
	case "postgres":
		return actionlog.OpenPostgres(ctx, a.cfg.Storage.PostgresDSN, a.logger)
	case "redis":
		return actionlog.OpenRedis(ctx, a.cfg.Storage.RedisAddr)
	}
	return nil, nil
}

func (a *app) generator() *setup.Generator {
	seed := a.cfg.Match.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a.logger.Info("match seed", zap.Int64("seed", seed))
	return setup.New(seed, a.cards, a.buffs)
}

// bootstrap builds the INIT or INIT_DRAFT action for a new match and returns the
// match id it deals.
func (a *app) bootstrap(gen *setup.Generator) (game.Action, string, error) {
	m := a.cfg.Match
	var first game.Player
	if err := first.UnmarshalText([]byte(m.FirstPlayer)); err != nil {
		return game.Action{}, "", err
	}
	opts := setup.Options{Mode: game.Mode(m.Mode), FirstPlayer: first}
	if !m.Draft && len(m.Buffs) == 2 {
		opts.Buffs = [2]string{m.Buffs[0], m.Buffs[1]}
	}
	st, err := gen.Setup(opts)
	if err != nil {
		return game.Action{}, "", err
	}
	var boot game.Action
	if m.Draft {
		boot, err = game.NewAction(game.ActionInitDraft, game.InitDraftPayload{Setup: st, Pool: gen.FirstPool(m.DraftLevel), Level: m.DraftLevel})
	} else {
		boot, err = game.NewAction(game.ActionInit, game.InitPayload{Setup: st})
	}
	return boot, st.MatchID, err
}
