package store

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/monster-duel/game/engine"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrGameNotFound = errors.New("game not found")
)

// GameStatus is the lifecycle state of a persisted game record.
type GameStatus string

const (
	StatusPaused   GameStatus = "paused"
	StatusFinished GameStatus = "finished"
)

// User is a player's durable profile: identity plus cumulative match
// counters. ActiveGameID links to a paused game the user may resume.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Games        int    `json:"games"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	ActiveGameID string `json:"active_game_id,omitempty"`
}

// PersistedGame is a durable snapshot of an interrupted (or finished) match.
type PersistedGame struct {
	ID            string                     `json:"id"`
	Players       map[string]string          `json:"players"`
	Monsters      map[string]*engine.Monster `json:"monsters"`
	TurnCompleted map[string]bool            `json:"turnCompleted"`
	Status        GameStatus                 `json:"status"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// Store is the persistence service behind the session coordinator: user
// stats and paused-game snapshots. FindOrCreateUser doubles as the
// authentication service, mapping a username to a stable user id before any
// game message is processed for that connection.
//
// Implementations must be safe for concurrent use; independent sessions call
// into the store in parallel.
type Store interface {
	// FindOrCreateUser resolves a username to its profile, creating a fresh
	// profile with zeroed counters on first sight.
	FindOrCreateUser(ctx context.Context, username string) (*User, error)

	// GetUser returns the profile for a username, or ErrUserNotFound.
	GetUser(ctx context.Context, username string) (*User, error)

	// AddGamePlayed increments the user's games counter and returns the
	// updated profile.
	AddGamePlayed(ctx context.Context, userID string) (*User, error)

	// RecordResult increments the winner's win counter and the loser's loss
	// counter, exactly once each.
	RecordResult(ctx context.Context, winnerID, loserID string) error

	// SetActiveGame links a paused game id into each user's profile.
	SetActiveGame(ctx context.Context, gameID string, userIDs ...string) error

	// ClearActiveGame removes the paused-game reference from each profile.
	ClearActiveGame(ctx context.Context, userIDs ...string) error

	// SaveGame creates or updates a persisted game record.
	SaveGame(ctx context.Context, game *PersistedGame) error

	// LoadGame returns a persisted game by id, or ErrGameNotFound.
	LoadGame(ctx context.Context, id string) (*PersistedGame, error)

	// FinishGame marks a persisted game as finished.
	FinishGame(ctx context.Context, id string) error
}

// cloneGame deep-copies a persisted game so callers and the store never
// share monster pointers.
func cloneGame(g *PersistedGame) *PersistedGame {
	cp := &PersistedGame{
		ID:            g.ID,
		Players:       make(map[string]string, len(g.Players)),
		Monsters:      make(map[string]*engine.Monster, len(g.Monsters)),
		TurnCompleted: make(map[string]bool, len(g.TurnCompleted)),
		Status:        g.Status,
		CreatedAt:     g.CreatedAt,
	}
	for id, name := range g.Players {
		cp.Players[id] = name
	}
	for id, m := range g.Monsters {
		mc := *m
		cp.Monsters[id] = &mc
	}
	for id, done := range g.TurnCompleted {
		cp.TurnCompleted[id] = done
	}
	return cp
}
