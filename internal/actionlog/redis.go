package actionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/redis/go-redis/v9"
)

const (
	redisMatchesKey = "gemduel:matches"
	redisMatchKey   = "gemduel:match:"
)

// redisEntry is the stored form of an Entry, one hash field per sequence number.
type redisEntry struct {
	Type       game.ActionType `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Checksum   string          `json:"checksum,omitempty"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// RedisStore keeps each match as a hash keyed by sequence number.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) Append(ctx context.Context, e Entry) error {
	data, err := json.Marshal(redisEntry{
		Type:       e.Action.Type,
		Payload:    e.Action.Payload,
		Checksum:   e.Checksum,
		RecordedAt: e.RecordedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, err)
	}
	ok, err := s.client.HSetNX(ctx, redisMatchKey+e.MatchID, strconv.Itoa(e.Seq), data).Result()
	if err != nil {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, err)
	}
	if !ok {
		return fmt.Errorf("append %s/%d: %w", e.MatchID, e.Seq, ErrConflict)
	}
	if err := s.client.SAdd(ctx, redisMatchesKey, e.MatchID).Err(); err != nil {
		return fmt.Errorf("index %s: %w", e.MatchID, err)
	}
	return nil
}

func (s *RedisStore) Truncate(ctx context.Context, matchID string, from int) error {
	fields, err := s.client.HKeys(ctx, redisMatchKey+matchID).Result()
	if err != nil {
		return fmt.Errorf("truncate %s: %w", matchID, err)
	}
	var drop []string
	for _, f := range fields {
		if seq, err := strconv.Atoi(f); err == nil && seq >= from {
			drop = append(drop, f)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, redisMatchKey+matchID, drop...).Err(); err != nil {
		return fmt.Errorf("truncate %s: %w", matchID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, matchID string) ([]Entry, error) {
	raw, err := s.client.HGetAll(ctx, redisMatchKey+matchID).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", matchID, err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	entries := make([]Entry, 0, len(raw))
	for field, data := range raw {
		seq, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("load %s: bad sequence %q", matchID, field)
		}
		var re redisEntry
		if err := json.Unmarshal([]byte(data), &re); err != nil {
			return nil, fmt.Errorf("load %s/%d: %w", matchID, seq, err)
		}
		entries = append(entries, Entry{
			MatchID:    matchID,
			Seq:        seq,
			Action:     game.Action{Type: re.Type, Payload: re.Payload},
			Checksum:   re.Checksum,
			RecordedAt: re.RecordedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

func (s *RedisStore) Matches(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, redisMatchesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
