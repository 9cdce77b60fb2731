package engine

import "fmt"

// Move attempts to move monsterID, owned by playerID, to dest.
//
// Illegal attempts (unknown monster, foreign monster, illegal destination,
// blocked path, own monster at destination) return an ErrIllegalMove-wrapped
// error and leave the state untouched. A destination equal to the current
// cell is accepted as a no-op. A legal move onto an enemy monster resolves
// the collision through the elimination rules and may end the match.
func (e *GameEngine) Move(playerID, monsterID string, dest Position) (*MoveResult, error) {
	if e.gameOver {
		return nil, ErrGameOver
	}
	if !e.gameStarted {
		return nil, ErrNotStarted
	}

	mover, ok := e.monsters[monsterID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown monster %q", ErrIllegalMove, monsterID)
	}
	if mover.PlayerID != playerID {
		return nil, fmt.Errorf("%w: monster %s is not owned by %s", ErrIllegalMove, monsterID, playerID)
	}

	if dest == mover.Position {
		cp := *mover
		return &MoveResult{Monster: &cp, NoOp: true}, nil
	}

	if !e.inBounds(dest) {
		return nil, fmt.Errorf("%w: destination (%d,%d) is off the board", ErrIllegalMove, dest.Row, dest.Col)
	}
	if !legalShape(mover.Position, dest) {
		return nil, fmt.Errorf("%w: (%d,%d) -> (%d,%d) is neither a straight line nor a short diagonal",
			ErrIllegalMove, mover.Position.Row, mover.Position.Col, dest.Row, dest.Col)
	}
	if e.pathBlocked(playerID, mover.Position, dest) {
		return nil, fmt.Errorf("%w: path to (%d,%d) is blocked by an enemy monster", ErrIllegalMove, dest.Row, dest.Col)
	}

	result := &MoveResult{}

	if occupant := e.monsterAt(dest); occupant != nil {
		if occupant.PlayerID == playerID {
			return nil, fmt.Errorf("%w: destination (%d,%d) holds your own monster", ErrIllegalMove, dest.Row, dest.Col)
		}

		result.Collision = true
		outcome := resolveCollision(e.config, mover.Type, occupant.Type)
		if outcome.defenderRemoved {
			delete(e.monsters, occupant.ID)
			result.Removed = append(result.Removed, occupant.ID)
		}
		if outcome.attackerRemoved {
			delete(e.monsters, mover.ID)
			result.Removed = append(result.Removed, mover.ID)
		} else {
			// The survivor claims the contested cell.
			mover.Position = dest
			mover.HasMoved = true
		}

		if over := e.checkGameOver(playerID); over != nil {
			result.GameOver = over
			return result, nil
		}
	} else {
		mover.Position = dest
		mover.HasMoved = true
	}

	if survivor, alive := e.monsters[monsterID]; alive {
		cp := *survivor
		result.Monster = &cp
	}
	result.TurnCompleted = e.completeTurnIfDone(playerID)
	result.RoundReset = e.maybeResetRound()

	return result, nil
}

// inBounds reports whether pos is a valid board cell.
func (e *GameEngine) inBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < e.config.BoardRows &&
		pos.Col >= 0 && pos.Col < e.config.BoardCols
}

// legalShape reports whether from -> to is a straight line (same row or same
// column) or a diagonal of at most MaxDiagonalReach cells.
func legalShape(from, to Position) bool {
	if from.Row == to.Row || from.Col == to.Col {
		return true
	}
	dRow := abs(to.Row - from.Row)
	dCol := abs(to.Col - from.Col)
	return dRow == dCol && dRow <= MaxDiagonalReach
}

// pathBlocked walks the cells strictly between from and to, stepping one cell
// at a time toward the destination, and reports whether any of them holds a
// monster of a different player. The mover's own monsters never block.
// Only called for legal shapes, where sign-stepping lands exactly on to.
func (e *GameEngine) pathBlocked(playerID string, from, to Position) bool {
	dRow := sign(to.Row - from.Row)
	dCol := sign(to.Col - from.Col)

	r, c := from.Row+dRow, from.Col+dCol
	for r != to.Row || c != to.Col {
		if m := e.monsterAt(Position{Row: r, Col: c}); m != nil && m.PlayerID != playerID {
			return true
		}
		r += dRow
		c += dCol
	}
	return false
}

// monsterAt returns the monster occupying pos, or nil.
func (e *GameEngine) monsterAt(pos Position) *Monster {
	for _, m := range e.monsters {
		if m.Position == pos {
			return m
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
