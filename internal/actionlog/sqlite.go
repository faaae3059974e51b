package actionlog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gemduel/gemduel-go/internal/game"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore keeps match histories in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (match_id, seq, type, payload, checksum, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.MatchID, e.Seq, string(e.Action.Type), []byte(e.Action.Payload), e.Checksum, e.RecordedAt.UTC().UnixMilli(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, err)
	}
	return nil
}

func (s *SQLiteStore) Truncate(ctx context.Context, matchID string, from int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM actions WHERE match_id = ? AND seq >= ?`, matchID, from); err != nil {
		return fmt.Errorf("truncate %s: %w", matchID, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, matchID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, type, payload, checksum, recorded_at FROM actions WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", matchID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       = Entry{MatchID: matchID}
			typ     string
			payload []byte
			millis  int64
		)
		if err := rows.Scan(&e.Seq, &typ, &payload, &e.Checksum, &millis); err != nil {
			return nil, fmt.Errorf("scan %s: %w", matchID, err)
		}
		e.Action = game.Action{Type: game.ActionType(typ), Payload: payload}
		e.RecordedAt = time.UnixMilli(millis).UTC()
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

func (s *SQLiteStore) Matches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT match_id FROM actions ORDER BY match_id`)
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

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
