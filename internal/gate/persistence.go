package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// sessionState is the on-disk form of a session baseline.
type sessionState struct {
	Version    int       `json:"version"`
	Baseline   float64   `json:"baseline"`
	RecordedAt time.Time `json:"recorded_at"`
}

const stateVersion = 1

// Store persists the session baseline to a JSON file so a process restart
// does not reset the drawdown/profit caps mid-session.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads a previously saved baseline. A missing file means no saved
// session and is not an error.
func (s *Store) Load() (float64, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read session state: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return 0, false, fmt.Errorf("failed to parse session state: %w", err)
	}
	if state.Baseline <= 0 {
		return 0, false, nil
	}
	return state.Baseline, true, nil
}

// Save writes the baseline atomically: a temp file in the same directory is
// renamed over the target so a crash never leaves a half-written state.
func (s *Store) Save(baseline float64) error {
	state := sessionState{
		Version:    stateVersion,
		Baseline:   baseline,
		RecordedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session state: %w", err)
	}
	return nil
}
