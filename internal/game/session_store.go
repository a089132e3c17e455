// internal/game/session_store.go
package game

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jason-s-yu/munchkin/internal/auth"
	"github.com/sirupsen/logrus"
)

// SessionStore owns every live session, keyed by name.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	rules    Rules
	recorder Recorder
	results  ResultStore
}

// NewSessionStore creates a store whose sessions use rules and report to the
// given recorder and result store, either of which may be nil.
func NewSessionStore(rules Rules, recorder Recorder, results ResultStore) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		rules:    rules,
		recorder: recorder,
		results:  results,
	}
}

// Summary is the lobby listing entry of a session.
type Summary struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Players   int    `json:"players"`
	Started   bool   `json:"started"`
	Phase     string `json:"phase,omitempty"`
	Protected bool   `json:"protected"`
}

// Open returns the session called name, creating it with passphrase when absent.
// An existing protected session requires the matching passphrase.
func (st *SessionStore) Open(name, passphrase string) (*Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[name]; ok {
		if s.passHash == "" {
			return s, false, nil
		}
		match, err := auth.VerifyPassphrase(passphrase, s.passHash)
		if err != nil {
			return nil, false, fmt.Errorf("checking passphrase: %w", err)
		}
		if !match {
			return nil, false, ErrWrongPassword
		}
		return s, false, nil
	}

	s := NewSession(name, st.rules)
	s.Recorder = st.recorder
	s.Results = st.results
	s.OnEnd = st.finished
	if passphrase != "" {
		hash, err := auth.HashPassphrase(passphrase, auth.PassphraseParams)
		if err != nil {
			return nil, false, fmt.Errorf("hashing passphrase: %w", err)
		}
		s.passHash = hash
	}
	st.sessions[name] = s
	s.log.Info("session created")
	return s, true, nil
}

// Get returns the session called name.
func (st *SessionStore) Get(name string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[name]
	return s, ok
}

// List returns a summary of every session, sorted by name.
func (st *SessionStore) List() []Summary {
	st.mu.Lock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	st.mu.Unlock()

	out := make([]Summary, 0, len(all))
	for _, s := range all {
		s.Mu.Lock()
		out = append(out, Summary{
			Name:      s.Name,
			ID:        s.ID.String(),
			Players:   len(s.players),
			Started:   s.started,
			Phase:     string(s.phase),
			Protected: s.passHash != "",
		})
		s.Mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remove forgets the session called name and closes it.
func (st *SessionStore) Remove(name string) error {
	st.mu.Lock()
	s, ok := st.sessions[name]
	delete(st.sessions, name)
	st.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close()
}

// CloseAll closes every session, returning the joined errors.
func (st *SessionStore) CloseAll() error {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// finished drops an ended session. It runs under the session lock, so the close
// happens on its own goroutine.
func (st *SessionStore) finished(s *Session, winner *Player) {
	st.mu.Lock()
	if cur, ok := st.sessions[s.Name]; ok && cur == s {
		delete(st.sessions, s.Name)
	}
	st.mu.Unlock()
	go func() {
		if err := s.Close(); err != nil {
			logrus.WithError(err).WithField("session", s.ID).Warn("error closing finished session")
		}
	}()
}
