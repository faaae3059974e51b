package actionlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS duel_actions (
    match_id    TEXT        NOT NULL,
    seq         INTEGER     NOT NULL,
    type        TEXT        NOT NULL,
    payload     JSONB,
    checksum    TEXT        NOT NULL DEFAULT '',
    recorded_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (match_id, seq)
)`

const uniqueViolation = "23505"

// PostgresStore keeps match histories in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres connects to dsn and creates the actions table if needed.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	stats := pool.Stat()
	logger.Info("action log database connected",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	var payload any
	if len(e.Action.Payload) > 0 {
		payload = string(e.Action.Payload)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO duel_actions (match_id, seq, type, payload, checksum, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.MatchID, e.Seq, string(e.Action.Type), payload, e.Checksum, e.RecordedAt.UTC())

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, err)
	}
	return nil
}

func (s *PostgresStore) Truncate(ctx context.Context, matchID string, from int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM duel_actions WHERE match_id = $1 AND seq >= $2`, matchID, from)
	if err != nil {
		return fmt.Errorf("truncate %s: %w", matchID, err)
	}
	s.logger.Debug("truncated action log",
		zap.String("match_id", matchID),
		zap.Int("from", from),
		zap.Int64("deleted", tag.RowsAffected()),
	)
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, matchID string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, type, COALESCE(payload::text, ''), checksum, recorded_at
		FROM duel_actions WHERE match_id = $1 ORDER BY seq
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", matchID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{MatchID: matchID}
		var typ, payload string
		if err := rows.Scan(&e.Seq, &typ, &payload, &e.Checksum, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", matchID, err)
		}
		e.Action = game.Action{Type: game.ActionType(typ)}
		if payload != "" {
			e.Action.Payload = []byte(payload)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", matchID, err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries, nil
}

func (s *PostgresStore) Matches(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT match_id FROM duel_actions ORDER BY match_id`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
