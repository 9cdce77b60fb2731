package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrGameOver         = errors.New("game is over")
	ErrNotStarted       = errors.New("game has not started")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrSessionFull      = errors.New("session already has two players")
	ErrDuplicatePlayer  = errors.New("player already joined")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
)

// GameEngine owns the mutable state of one match. It is not safe for
// concurrent use: the session coordinator is its single owner and serializes
// every call.
type GameEngine struct {
	config *GameConfig

	players       map[string]string // player id -> username
	playerOrder   []string          // join order, decides spawn column parity
	monsters      map[string]*Monster
	turnCompleted map[string]bool

	gameStarted bool
	gameOver    bool

	rng *rand.Rand
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config:        config,
		players:       make(map[string]string),
		monsters:      make(map[string]*Monster),
		turnCompleted: make(map[string]bool),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the default configuration
func NewEngineWithDefaults() *GameEngine {
	e, _ := NewEngine(DefaultGameConfig())
	return e
}

// Config returns the match configuration.
func (e *GameEngine) Config() *GameConfig {
	return e.config
}

// Started returns whether monsters have been spawned and play has begun.
func (e *GameEngine) Started() bool {
	return e.gameStarted
}

// Over returns whether the match reached its terminal state.
func (e *GameEngine) Over() bool {
	return e.gameOver
}

// PlayerCount returns the number of admitted players.
func (e *GameEngine) PlayerCount() int {
	return len(e.players)
}

// Username returns the username recorded for a player id, or "".
func (e *GameEngine) Username(id string) string {
	return e.players[id]
}

// HasPlayer reports whether the player id is currently admitted.
func (e *GameEngine) HasPlayer(id string) bool {
	_, ok := e.players[id]
	return ok
}

// Players returns a copy of the player map.
func (e *GameEngine) Players() map[string]string {
	players := make(map[string]string, len(e.players))
	for id, name := range e.players {
		players[id] = name
	}
	return players
}

// PlayerIDs returns the admitted player ids in join order.
func (e *GameEngine) PlayerIDs() []string {
	ids := make([]string, len(e.playerOrder))
	copy(ids, e.playerOrder)
	return ids
}

// Monsters returns a copy of the monster map.
func (e *GameEngine) Monsters() map[string]*Monster {
	monsters := make(map[string]*Monster, len(e.monsters))
	for id, m := range e.monsters {
		cp := *m
		monsters[id] = &cp
	}
	return monsters
}

// TurnCompleted returns a copy of the per-player turn completion map.
func (e *GameEngine) TurnCompleted() map[string]bool {
	completed := make(map[string]bool, len(e.turnCompleted))
	for id, done := range e.turnCompleted {
		completed[id] = done
	}
	return completed
}

// AddPlayer admits a player into the match. The two-player cap and duplicate
// identities are rejected here, before any state is touched.
func (e *GameEngine) AddPlayer(id, username string) error {
	if e.gameOver {
		return ErrGameOver
	}
	if _, ok := e.players[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, username)
	}
	if len(e.players) >= MaxPlayers {
		return ErrSessionFull
	}

	e.players[id] = username
	e.playerOrder = append(e.playerOrder, id)
	if _, ok := e.turnCompleted[id]; !ok {
		e.turnCompleted[id] = false
	}
	return nil
}

// RemovePlayer drops a player from the match along with their monsters and
// turn flag. Used for lobby departures only; mid-game departures go through
// the pause path instead.
func (e *GameEngine) RemovePlayer(id string) {
	delete(e.players, id)
	delete(e.turnCompleted, id)
	for mid, m := range e.monsters {
		if m.PlayerID == id {
			delete(e.monsters, mid)
		}
	}
	for i, pid := range e.playerOrder {
		if pid == id {
			e.playerOrder = append(e.playerOrder[:i], e.playerOrder[i+1:]...)
			break
		}
	}
}

// Start spawns every player's monsters and begins play. Only valid for a
// fresh match with a full lobby.
func (e *GameEngine) Start() error {
	if e.gameOver {
		return ErrGameOver
	}
	if e.gameStarted {
		return ErrAlreadyStarted
	}
	if len(e.players) < MaxPlayers {
		return ErrNotEnoughPlayers
	}

	for ordinal, id := range e.playerOrder {
		if err := e.spawnForPlayer(id, ordinal); err != nil {
			return err
		}
	}

	e.gameStarted = true
	return nil
}

// ActivePlayers returns the ids of players that still own at least one monster.
func (e *GameEngine) ActivePlayers() []string {
	alive := make(map[string]bool)
	for _, m := range e.monsters {
		alive[m.PlayerID] = true
	}

	var active []string
	for _, id := range e.playerOrder {
		if alive[id] {
			active = append(active, id)
		}
	}
	return active
}

// checkGameOver inspects surviving monsters after a collision and, when fewer
// than two players remain active, performs the terminal transition. moverID
// breaks the tie when a mutual elimination wiped both players' last monsters.
func (e *GameEngine) checkGameOver(moverID string) *GameOverResult {
	if e.gameOver {
		return nil
	}

	active := e.ActivePlayers()
	if len(active) >= MaxPlayers {
		return nil
	}

	winner := moverID
	if len(active) == 1 {
		winner = active[0]
	}

	loser := ""
	for _, id := range e.playerOrder {
		if id != winner {
			loser = id
			break
		}
	}

	e.gameOver = true
	return &GameOverResult{WinnerID: winner, LoserID: loser}
}

// Snapshot returns a deep copy of the players, monsters and turn state.
func (e *GameEngine) Snapshot() *Snapshot {
	return &Snapshot{
		Players:       e.Players(),
		Monsters:      e.Monsters(),
		TurnCompleted: e.TurnCompleted(),
	}
}

// Restore repopulates the engine from a paused snapshot. The player map is
// reset: resuming participants are re-admitted individually, and only their
// identities may rejoin (enforced by the session's resume lock). Monsters and
// turn flags come back exactly as persisted and the match counts as started.
func (e *GameEngine) Restore(snap *Snapshot) {
	e.players = make(map[string]string)
	e.playerOrder = e.playerOrder[:0]

	e.monsters = make(map[string]*Monster, len(snap.Monsters))
	for id, m := range snap.Monsters {
		cp := *m
		e.monsters[id] = &cp
	}

	e.turnCompleted = make(map[string]bool, len(snap.TurnCompleted))
	for id, done := range snap.TurnCompleted {
		e.turnCompleted[id] = done
	}

	e.gameStarted = true
	e.gameOver = false
}

// Clear wipes the match state and marks the engine terminal. Called once the
// session finished or was paused; any further mutation is refused.
func (e *GameEngine) Clear() {
	e.players = make(map[string]string)
	e.playerOrder = nil
	e.monsters = make(map[string]*Monster)
	e.turnCompleted = make(map[string]bool)
	e.gameOver = true
}
