package app

import (
	"errors"
	"sync"

	"assignment_notifier_bot/internal/domain/digest"
)

var (
	// ErrNoSession means the destination has not run a check yet.
	ErrNoSession = errors.New("no digest has been produced for this destination")
	// ErrUnknownIndex means the index is not part of the destination's last digest.
	ErrUnknownIndex = errors.New("index not present in the last digest")
)

// Exchange is one turn of the recent conversation, kept so /ask answers
// can refer back to what was just said.
type Exchange struct {
	Role    string // "user" or "bot"
	Content string
}

// maxHistoryExchanges bounds the retained conversation turns per
// destination (user and bot turns counted separately).
const maxHistoryExchanges = 6

// SessionStore keeps, per destination, the entries of the most recent
// digest so "details N" follow-ups can be resolved, plus a short
// conversation history for /ask. Each new digest replaces the
// destination's mapping wholesale: a concurrent reader sees either the
// old or the new entry list, never a mix. History survives digest
// replacement.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string][]digest.Entry
	histories map[string][]Exchange
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string][]digest.Entry),
		histories: make(map[string][]Exchange),
	}
}

// Replace installs entries as the destination's current digest.
func (s *SessionStore) Replace(destination string, entries []digest.Entry) {
	snapshot := make([]digest.Entry, len(entries))
	copy(snapshot, entries)

	s.mu.Lock()
	s.sessions[destination] = snapshot
	s.mu.Unlock()
}

// Resolve looks up a 1-based display index in the destination's current digest.
func (s *SessionStore) Resolve(destination string, index int) (digest.Entry, error) {
	s.mu.RLock()
	entries, ok := s.sessions[destination]
	s.mu.RUnlock()

	if !ok {
		return digest.Entry{}, ErrNoSession
	}
	if index < 1 || index > len(entries) {
		return digest.Entry{}, ErrUnknownIndex
	}
	return entries[index-1], nil
}

// Entries returns a copy of the destination's current digest entries, or
// nil when no digest has been produced yet.
func (s *SessionStore) Entries(destination string) []digest.Entry {
	s.mu.RLock()
	entries := s.sessions[destination]
	s.mu.RUnlock()

	if entries == nil {
		return nil
	}
	out := make([]digest.Entry, len(entries))
	copy(out, entries)
	return out
}

// AppendHistory records one conversation turn, trimming to the most
// recent maxHistoryExchanges turns.
func (s *SessionStore) AppendHistory(destination, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[destination], Exchange{Role: role, Content: content})
	if len(history) > maxHistoryExchanges {
		history = history[len(history)-maxHistoryExchanges:]
	}
	s.histories[destination] = history
}

// History returns a copy of the destination's retained conversation turns.
func (s *SessionStore) History(destination string) []Exchange {
	s.mu.RLock()
	history := s.histories[destination]
	s.mu.RUnlock()

	out := make([]Exchange, len(history))
	copy(out, history)
	return out
}
