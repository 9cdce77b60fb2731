package engine

import "fmt"

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate board dimensions
	if config.BoardRows < MinBoardSize || config.BoardRows > MaxBoardSize {
		return fmt.Errorf("config validation: board_rows must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.BoardRows)
	}
	if config.BoardCols < MinBoardSize || config.BoardCols > MaxBoardSize {
		return fmt.Errorf("config validation: board_cols must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.BoardCols)
	}

	// Each player's monsters spawn in distinct rows of a single column, so the
	// board must have at least monsters_per_player rows.
	if config.MonstersPerPlayer < 1 {
		return fmt.Errorf("config validation: monsters_per_player must be positive, got %d",
			config.MonstersPerPlayer)
	}
	if config.MonstersPerPlayer > config.BoardRows {
		return fmt.Errorf("config validation: monsters_per_player (%d) cannot exceed board_rows (%d)",
			config.MonstersPerPlayer, config.BoardRows)
	}

	// Validate the dominance cycle
	if len(config.MonsterTypes) < MinMonsterTypes {
		return fmt.Errorf("config validation: at least %d monster_types are required, got %d",
			MinMonsterTypes, len(config.MonsterTypes))
	}
	seen := make(map[MonsterType]bool, len(config.MonsterTypes))
	for i, t := range config.MonsterTypes {
		if t == "" {
			return fmt.Errorf("config validation: monster_types[%d] is empty", i)
		}
		if seen[t] {
			return fmt.Errorf("config validation: duplicate monster type %q", t)
		}
		seen[t] = true
	}

	return nil
}

// DefaultGameConfig returns the built-in configuration: a 10x10 board with
// three monsters per player and the classic vampire/werewolf/ghost cycle.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:              "Classic Duel",
		Description:       "10x10 board, three monsters per player, vampire beats werewolf beats ghost beats vampire",
		BoardRows:         10,
		BoardCols:         10,
		MonstersPerPlayer: 3,
		MonsterTypes:      []MonsterType{Vampire, Werewolf, Ghost},
	}
}

// typeIndex returns the position of t in the configured dominance order,
// or -1 when t is not a configured type.
func (c *GameConfig) typeIndex(t MonsterType) int {
	for i, mt := range c.MonsterTypes {
		if mt == t {
			return i
		}
	}
	return -1
}
