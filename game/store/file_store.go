package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore implements Store using file system storage: a users.json index
// plus one JSON file per persisted game under games/. Suitable for local
// runs without a database; every mutation is flushed to disk.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
	users   map[string]*User // keyed by user id
	byName  map[string]string
}

// NewFileStore creates a file-backed store rooted at dataDir, loading any
// existing users.json index.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "games"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		dataDir: dataDir,
		users:   make(map[string]*User),
		byName:  make(map[string]string),
	}

	if err := s.loadUsers(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) usersPath() string {
	return filepath.Join(s.dataDir, "users.json")
}

func (s *FileStore) gamePath(id string) string {
	return filepath.Join(s.dataDir, "games", fmt.Sprintf("%s.json", id))
}

// loadUsers reads the users.json index if present.
func (s *FileStore) loadUsers() error {
	data, err := os.ReadFile(s.usersPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read users file: %w", err)
	}

	var users []*User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to unmarshal users file: %w", err)
	}

	for _, u := range users {
		s.users[u.ID] = u
		s.byName[u.Username] = u.ID
	}
	return nil
}

// flushUsers writes the full user index back to disk. Caller holds the lock.
func (s *FileStore) flushUsers() error {
	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	if err := os.WriteFile(s.usersPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}
	return nil
}

// FindOrCreateUser resolves a username, creating a fresh profile on first sight.
func (s *FileStore) FindOrCreateUser(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[username]; ok {
		cp := *s.users[id]
		return &cp, nil
	}

	user := &User{ID: uuid.NewString(), Username: username}
	s.users[user.ID] = user
	s.byName[username] = user.ID

	if err := s.flushUsers(); err != nil {
		return nil, err
	}
	cp := *user
	return &cp, nil
}

// GetUser returns the profile for a username, or ErrUserNotFound.
func (s *FileStore) GetUser(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// AddGamePlayed increments the user's games counter.
func (s *FileStore) AddGamePlayed(ctx context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.Games++
	if err := s.flushUsers(); err != nil {
		return nil, err
	}
	cp := *user
	return &cp, nil
}

// RecordResult commits a finished match to both profiles.
func (s *FileStore) RecordResult(ctx context.Context, winnerID, loserID string) error {
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
	return s.flushUsers()
}

// SetActiveGame links a paused game id into each profile.
func (s *FileStore) SetActiveGame(ctx context.Context, gameID string, userIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range userIDs {
		user, ok := s.users[id]
		if !ok {
			return ErrUserNotFound
		}
		user.ActiveGameID = gameID
	}
	return s.flushUsers()
}

// ClearActiveGame removes the paused-game reference from each profile.
func (s *FileStore) ClearActiveGame(ctx context.Context, userIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range userIDs {
		if user, ok := s.users[id]; ok {
			user.ActiveGameID = ""
		}
	}
	return s.flushUsers()
}

// SaveGame creates or updates a persisted game file.
func (s *FileStore) SaveGame(ctx context.Context, game *PersistedGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}
	if err := os.WriteFile(s.gamePath(game.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write game file: %w", err)
	}
	return nil
}

// LoadGame returns a persisted game by id, or ErrGameNotFound.
func (s *FileStore) LoadGame(ctx context.Context, id string) (*PersistedGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.gamePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}

	var game PersistedGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game file: %w", err)
	}
	return &game, nil
}

// FinishGame marks a persisted game file as finished.
func (s *FileStore) FinishGame(ctx context.Context, id string) error {
	game, err := s.LoadGame(ctx, id)
	if err != nil {
		return err
	}
	game.Status = StatusFinished
	return s.SaveGame(ctx, game)
}
