// Package session holds the process-wide portal session.
//
// Store is the only writer of session state: Login, Logout and
// LoadFromPersistedStorage are the mutators, everything else reads
// snapshots. The store never talks to the network and never verifies a
// token, it only tracks whether one is present.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// Identity is what a successful login hands to the store
type Identity struct {
	UserID       int64
	Profile      *models.Profile
	AccessToken  string
	RefreshToken string
}

// Listener is called with the new snapshot after every committed change
type Listener func(models.Session)

type persistedSession struct {
	Role   models.Role     `json:"role"`
	UserID *int64          `json:"userId,omitempty"`
	User   *models.Profile `json:"user,omitempty"`
}

// Store is the single-writer session container
type Store struct {
	mu      sync.RWMutex
	state   models.Session
	storage Storage
	logger  zerolog.Logger

	loadOnce sync.Once

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewStore creates an anonymous store backed by storage
func NewStore(storage Storage, logger zerolog.Logger) *Store {
	return &Store{
		storage:   storage,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// AccessToken returns the persisted token, if present
func (s *Store) AccessToken() (string, bool) {
	token, ok := s.storage.Get(KeyAccessToken)
	return token, ok && token != ""
}

// Login records an authenticated identity. role must be a canonical role.
func (s *Store) Login(role models.Role, id Identity) error {
	if !role.Valid() {
		return apperrors.NewBadRequestError(fmt.Sprintf("cannot log in with unrecognized role %q", role))
	}

	next := models.Session{IsAuthenticated: true, Role: role}
	if id.UserID != 0 {
		uid := id.UserID
		next.UserID = &uid
	}
	if id.Profile != nil {
		p := *id.Profile
		p.Role = role
		next.User = &p
	}

	raw, err := json.Marshal(persistedSession{Role: next.Role, UserID: next.UserID, User: next.User})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	if err := s.persistLocked(id, string(raw)); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.logger.Info().Str("role", string(role)).Interface("userId", next.UserID).Msg("Session logged in")
	s.publish(snapshot)
	return nil
}

// persistLocked replaces every credential key so nothing from an earlier
// login survives. On failure the previous values are put back.
func (s *Store) persistLocked(id Identity, rawSession string) error {
	keys := []string{KeyAccessToken, KeyRefreshToken, KeySession}
	previous := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := s.storage.Get(key); ok {
			previous[key] = v
		}
	}

	writes := []struct {
		key   string
		value string
		what  string
	}{
		{KeyAccessToken, id.AccessToken, "access token"},
		{KeyRefreshToken, id.RefreshToken, "refresh token"},
		{KeySession, rawSession, "session"},
	}

	err := s.storage.Remove(keys...)
	if err == nil {
		for _, w := range writes {
			if w.value == "" {
				continue
			}
			if setErr := s.storage.Set(w.key, w.value); setErr != nil {
				err = fmt.Errorf("failed to persist %s: %w", w.what, setErr)
				break
			}
		}
	} else {
		err = fmt.Errorf("failed to clear previous session: %w", err)
	}
	if err == nil {
		return nil
	}

	if rmErr := s.storage.Remove(keys...); rmErr != nil {
		s.logger.Error().Err(rmErr).Msg("Failed to roll back partial session write")
		return err
	}
	for key, v := range previous {
		if setErr := s.storage.Set(key, v); setErr != nil {
			s.logger.Error().Err(setErr).Str("key", key).Msg("Failed to restore previous session value")
		}
	}
	return err
}

// Logout resets the session and removes persisted credentials. Calling it
// on an anonymous session is a no-op apart from re-clearing storage.
func (s *Store) Logout() error {
	s.mu.Lock()
	wasAuthenticated := s.state.IsAuthenticated
	err := s.storage.Remove(KeyAccessToken, KeyRefreshToken, KeySession)
	s.state = models.Anonymous()
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	if wasAuthenticated {
		s.logger.Info().Msg("Session logged out")
		s.publish(models.Anonymous())
	}
	return nil
}

// LoadFromPersistedStorage restores the session once at startup. Without a
// token and a stored profile carrying a recognized role the session stays
// anonymous. Later calls return the current snapshot without reloading.
func (s *Store) LoadFromPersistedStorage() models.Session {
	s.loadOnce.Do(func() {
		restored, ok := s.readPersisted()
		if !ok {
			s.logger.Debug().Msg("No persisted session, starting anonymous")
			return
		}

		s.mu.Lock()
		s.state = restored
		snapshot := s.state.Clone()
		s.mu.Unlock()

		s.logger.Info().Str("role", string(restored.Role)).Msg("Session restored from storage")
		s.publish(snapshot)
	})
	return s.Snapshot()
}

func (s *Store) readPersisted() (models.Session, bool) {
	if _, ok := s.AccessToken(); !ok {
		return models.Session{}, false
	}

	raw, ok := s.storage.Get(KeySession)
	if !ok || raw == "" {
		s.logger.Warn().Msg("Persisted token has no session profile, ignoring it")
		return models.Session{}, false
	}

	var ps persistedSession
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		s.logger.Warn().Err(err).Msg("Persisted session is unreadable, ignoring it")
		return models.Session{}, false
	}

	role := models.ParseRole(string(ps.Role))
	if !role.Valid() {
		s.logger.Warn().Str("role", string(ps.Role)).Msg("Persisted session has an unrecognized role, ignoring it")
		return models.Session{}, false
	}

	restored := models.Session{IsAuthenticated: true, Role: role, UserID: ps.UserID, User: ps.User}
	if restored.User != nil {
		restored.User.Role = role
	}
	return restored, true
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) publish(snapshot models.Session) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(snapshot.Clone())
	}
}
