package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-process maps. It backs single-node
// runs without a database and doubles as the test store.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*User // keyed by user id
	byName  map[string]string
	games   map[string]*PersistedGame
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*User),
		byName: make(map[string]string),
		games:  make(map[string]*PersistedGame),
	}
}

// FindOrCreateUser resolves a username, creating a fresh profile on first sight.
func (s *MemoryStore) FindOrCreateUser(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[username]; ok {
		cp := *s.users[id]
		return &cp, nil
	}

	user := &User{ID: uuid.NewString(), Username: username}
	s.users[user.ID] = user
	s.byName[username] = user.ID

	cp := *user
	return &cp, nil
}

// GetUser returns the profile for a username, or ErrUserNotFound.
func (s *MemoryStore) GetUser(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// AddGamePlayed increments the user's games counter.
func (s *MemoryStore) AddGamePlayed(ctx context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.Games++
	cp := *user
	return &cp, nil
}

// RecordResult commits a finished match to both profiles.
func (s *MemoryStore) RecordResult(ctx context.Context, winnerID, loserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner, ok := s.users[winnerID]
	if !ok {
		return ErrUserNotFound
	}
	loser, ok := s.users[loserID]
	if !ok {
		return ErrUserNotFound
	}

	winner.Wins++
	loser.Losses++
	return nil
}

// SetActiveGame links a paused game id into each profile.
func (s *MemoryStore) SetActiveGame(ctx context.Context, gameID string, userIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range userIDs {
		user, ok := s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		user.ActiveGameID = gameID
	}
	return nil
}

// ClearActiveGame removes the paused-game reference from each profile.
func (s *MemoryStore) ClearActiveGame(ctx context.Context, userIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range userIDs {
		if user, ok := s.users[id]; ok {
			user.ActiveGameID = ""
		}
	}
	return nil
}

// SaveGame creates or updates a persisted game record.
func (s *MemoryStore) SaveGame(ctx context.Context, game *PersistedGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games[game.ID] = cloneGame(game)
	return nil
}

// LoadGame returns a persisted game by id, or ErrGameNotFound.
func (s *MemoryStore) LoadGame(ctx context.Context, id string) (*PersistedGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return cloneGame(game), nil
}

// FinishGame marks a persisted game as finished.
func (s *MemoryStore) FinishGame(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return ErrGameNotFound
	}
	game.Status = StatusFinished
	return nil
}
