package engine

// MonsterType identifies one of the configured monster kinds. Types take part
// in a cyclic dominance relation used to resolve collisions.
type MonsterType string

// Built-in monster types used by the default configuration.
const (
	Vampire  MonsterType = "vampire"
	Werewolf MonsterType = "werewolf"
	Ghost    MonsterType = "ghost"
)

const (
	// Validation constants
	MinBoardSize    = 4
	MaxBoardSize    = 50
	MinMonsterTypes = 2
	MaxPlayers      = 2

	// MaxDiagonalReach bounds how far a monster may travel off a straight
	// line: |delta row| = |delta col| <= MaxDiagonalReach.
	MaxDiagonalReach = 2
)

// Position represents a board cell as row,col coordinates.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Monster is a single unit on the board, owned by one player.
type Monster struct {
	ID       string      `json:"id"`
	PlayerID string      `json:"playerId"`
	Type     MonsterType `json:"type"`
	Position Position    `json:"position"`
	HasMoved bool        `json:"hasMoved"`
}

// GameConfig represents the match configuration loaded from JSON.
//
// MonsterTypes is listed in dominance order: every type beats its successor
// and the last type beats the first, giving the cyclic elimination table.
type GameConfig struct {
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	BoardRows         int           `json:"board_rows"`
	BoardCols         int           `json:"board_cols"`
	MonstersPerPlayer int           `json:"monsters_per_player"`
	MonsterTypes      []MonsterType `json:"monster_types"`
}

// MoveResult describes the effect of a successful (or no-op) move.
type MoveResult struct {
	// Monster is the mover after the move, nil when the mover was removed
	// by the collision or when the move was a same-cell no-op.
	Monster *Monster `json:"monster,omitempty"`

	// Removed lists the ids of monsters eliminated by this move.
	Removed []string `json:"removed,omitempty"`

	Collision     bool `json:"collision"`
	NoOp          bool `json:"no_op,omitempty"`
	TurnCompleted bool `json:"turn_completed"`
	RoundReset    bool `json:"round_reset"`

	// GameOver is non-nil when this move ended the match.
	GameOver *GameOverResult `json:"game_over,omitempty"`
}

// EndTurnResult describes the effect of an explicit end-turn.
type EndTurnResult struct {
	RoundReset bool `json:"round_reset"`
}

// GameOverResult names the two players of a finished match.
type GameOverResult struct {
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
}

// Snapshot captures the mutable match state for pause/resume. The maps are
// deep copies and safe to serialize after the engine moves on.
type Snapshot struct {
	Players       map[string]string   `json:"players"`
	Monsters      map[string]*Monster `json:"monsters"`
	TurnCompleted map[string]bool     `json:"turnCompleted"`
}
