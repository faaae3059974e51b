package actionlog

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gemduel/gemduel-go/internal/game"
)

const fileVersion = 1

// fileHeader precedes the actions in an exported log.
type fileHeader struct {
	MatchID     string
	Timestamp   time.Time
	Version     int
	ActionCount int
}

// fileAction is the gob form of one action.
type fileAction struct {
	Type    string
	Payload []byte
}

// Export writes the whole history as a gzipped gob stream.
func (l *Log) Export(w io.Writer) error {
	actions := l.Actions()

	zw := gzip.NewWriter(w)
	enc := gob.NewEncoder(zw)
	header := fileHeader{
		MatchID:     l.MatchID,
		Timestamp:   time.Now(),
		Version:     fileVersion,
		ActionCount: len(actions),
	}
	if err := enc.Encode(&header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for i, a := range actions {
		if err := enc.Encode(&fileAction{Type: string(a.Type), Payload: a.Payload}); err != nil {
			return fmt.Errorf("failed to encode action %d: %w", i, err)
		}
	}
	return zw.Close()
}

// Import reads a stream written by Export and replays it to its end.
func Import(r io.Reader, reducer *game.Reducer) (*Log, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var header fileHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported log version: %d", header.Version)
	}

	actions := make([]game.Action, 0, header.ActionCount)
	for i := 0; i < header.ActionCount; i++ {
		var fa fileAction
		if err := dec.Decode(&fa); err != nil {
			return nil, fmt.Errorf("failed to decode action %d: %w", i, err)
		}
		actions = append(actions, game.Action{Type: game.ActionType(fa.Type), Payload: fa.Payload})
	}

	l := New(reducer, header.MatchID)
	l.load(actions)
	return l, nil
}

// FileName is the name SaveToFile uses for a match.
func FileName(matchID string) string {
	return matchID + ".duel.gz"
}

// SaveToFile exports the log into directory and returns the file path.
func (l *Log) SaveToFile(directory string) (string, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(directory, FileName(l.MatchID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := l.Export(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// LoadFromFile imports a log saved with SaveToFile.
func LoadFromFile(path string, reducer *game.Reducer) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Import(f, reducer)
}
