// Package store is the client's durable local state: the active deck, the
// host credential, and the jury's per-room ballot data. It plays the role
// browser local storage plays for the web client, as one JSON file per key
// under a data directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fysics/internal/domain"
)

// Well-known keys. Jury keys are per room; see RoomKey.
const (
	KeyActiveDeck = "active_deck"
	KeyHostCode   = "host_code"

	PrefixJurySeats   = "jury_seats"
	PrefixJuryAnswers = "jury_answers"
	PrefixJuryVotes   = "jury_votes"
)

// RoomKey builds a per-room storage key. Room codes are uppercased so two
// spellings of the same code share state; an empty room maps to GLOBAL.
func RoomKey(prefix, room string) string {
	room = strings.ToUpper(strings.TrimSpace(room))
	if room == "" {
		room = "GLOBAL"
	}
	return prefix + "_" + room
}

// Store is a file-backed key-value store. All mutation funnels through it
// so in-memory state and disk cannot diverge; a single mutex keeps it
// single-writer-at-a-time.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// Open creates the data directory if needed and returns a store over it
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// DefaultDir returns the per-user data directory for this client
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".fysics"
	}
	return filepath.Join(base, "fysics")
}

// Get unmarshals the value stored under key into v, reporting whether the
// key existed at all.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

// Put marshals v and durably replaces the value under key. The write goes
// through a temp file and rename so readers never see a torn value.
func (s *Store) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// Delete removes the value under key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// ActiveDeck loads the persisted active deck. A missing, malformed or
// invalid payload loads as "no active deck"; bad local state must never
// take the client down.
func (s *Store) ActiveDeck() (*domain.Deck, bool) {
	var deck domain.Deck
	found, err := s.Get(KeyActiveDeck, &deck)
	if err != nil {
		s.logger.Warn("discarding unreadable active deck", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	if err := deck.Validate(); err != nil {
		s.logger.Warn("discarding invalid active deck", "error", err)
		return nil, false
	}
	return &deck, true
}

// SetActiveDeck persists deck as the active deck
func (s *Store) SetActiveDeck(deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return err
	}
	return s.Put(KeyActiveDeck, deck)
}

// ClearActiveDeck removes the active deck
func (s *Store) ClearActiveDeck() error {
	return s.Delete(KeyActiveDeck)
}

// HostCode returns the cached host credential, or "" when not logged in.
// Its presence is the sole local authorization signal; the backend is the
// judge of whether it is still accepted.
func (s *Store) HostCode() string {
	var code string
	if _, err := s.Get(KeyHostCode, &code); err != nil {
		s.logger.Warn("discarding unreadable host code", "error", err)
		return ""
	}
	return code
}

// SetHostCode caches a backend-verified host credential
func (s *Store) SetHostCode(code string) error {
	return s.Put(KeyHostCode, strings.TrimSpace(code))
}

// ClearHostCode forgets the cached credential
func (s *Store) ClearHostCode() error {
	return s.Delete(KeyHostCode)
}
