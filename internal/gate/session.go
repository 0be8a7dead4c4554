package gate

import (
	"fmt"
	"sync"
)

// Session tracks the opening quote balance used as the drawdown/profit
// baseline. The baseline is written at most once per process lifetime; a
// zero or negative balance never becomes a baseline, the session just stays
// uninitialized until a real balance is seen.
type Session struct {
	mu       sync.Mutex
	baseline float64
	active   bool
	store    *Store
	saveErr  func(error)
}

// NewSession creates an uninitialized session.
func NewSession() *Session {
	return &Session{}
}

// NewPersistentSession creates a session backed by a store. A baseline saved
// by an earlier process is restored, so restarting the bridge does not
// re-arm the caps at the current balance. onSaveError, when non-nil, is
// called if persisting a new baseline fails; the session keeps working from
// memory either way.
func NewPersistentSession(store *Store, onSaveError func(error)) (*Session, error) {
	baseline, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	s := &Session{store: store, saveErr: onSaveError}
	if ok {
		s.baseline = baseline
		s.active = true
	}
	return s, nil
}

// Observe records balance as the session baseline on the first call with a
// positive balance. Subsequent calls never overwrite an established
// baseline. It returns the current baseline and whether one is set.
func (s *Session) Observe(balance float64) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active && balance > 0 {
		s.baseline = balance
		s.active = true
		if s.store != nil {
			if err := s.store.Save(balance); err != nil && s.saveErr != nil {
				s.saveErr(err)
			}
		}
	}
	return s.baseline, s.active
}

// Baseline returns the recorded baseline and whether one is set.
func (s *Session) Baseline() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline, s.active
}
