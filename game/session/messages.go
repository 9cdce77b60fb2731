package session

import "github.com/wricardo/monster-duel/game/engine"

// Outbound message type tags.
const (
	MessageInit         = "init"
	MessagePlayerJoined = "playerJoined"
	MessageStart        = "start"
	MessageUpdate       = "update"
	MessageGamePaused   = "gamePaused"
	MessageGameOver     = "gameOver"
	MessageError        = "error"
)

// PlayerStats is the per-user counter snapshot included in the start message.
type PlayerStats struct {
	Username string `json:"username"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// InitMessage confirms admission to the joining player.
type InitMessage struct {
	Type    string            `json:"type"`
	ID      string            `json:"id"`
	Players map[string]string `json:"players"`
}

// PlayerJoinedMessage announces a roster change to already-connected players.
type PlayerJoinedMessage struct {
	Type    string            `json:"type"`
	Players map[string]string `json:"players"`
}

// StartMessage carries the full opening state: roster, lifetime stats and
// the spawned (or restored) board.
type StartMessage struct {
	Type          string                     `json:"type"`
	Players       map[string]string          `json:"players"`
	Stats         map[string]PlayerStats     `json:"stats"`
	Monsters      map[string]*engine.Monster `json:"monsters"`
	TurnCompleted map[string]bool            `json:"turnCompleted"`
}

// UpdateMessage carries the board state after a move or end-turn.
type UpdateMessage struct {
	Type          string                     `json:"type"`
	Monsters      map[string]*engine.Monster `json:"monsters"`
	TurnCompleted map[string]bool            `json:"turnCompleted"`
}

// GamePausedMessage tells remaining players a participant disconnected and
// the match state was persisted.
type GamePausedMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// GameOverMessage announces the final result by username.
type GameOverMessage struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

// ErrorMessage delivers a failure reason before the connection is closed.
type ErrorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
