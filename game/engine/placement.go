package engine

import "fmt"

// spawnForPlayer creates a player's starting monsters. The first-joined
// player spawns in column 0, the second in the last column, so the two sides
// start on opposite edges. Rows are drawn without replacement, guaranteeing
// no two of the player's monsters share a starting row, and types rotate
// through the configured list so both players get the same distribution.
func (e *GameEngine) spawnForPlayer(playerID string, ordinal int) error {
	if _, ok := e.players[playerID]; !ok {
		return fmt.Errorf("spawn: unknown player %q", playerID)
	}

	col := 0
	if ordinal%2 != 0 {
		col = e.config.BoardCols - 1
	}

	rows := e.rng.Perm(e.config.BoardRows)[:e.config.MonstersPerPlayer]

	for i, row := range rows {
		monster := &Monster{
			ID:       fmt.Sprintf("%s-m%d", playerID, i+1),
			PlayerID: playerID,
			Type:     e.config.MonsterTypes[i%len(e.config.MonsterTypes)],
			Position: Position{Row: row, Col: col},
			HasMoved: false,
		}
		e.monsters[monster.ID] = monster
	}

	return nil
}
