package engine

// EndTurn marks the player's turn as complete regardless of movement: every
// monster they still own is flagged as moved, including ones that never
// stepped. Returns whether this completion rolled the match into a new round.
func (e *GameEngine) EndTurn(playerID string) (*EndTurnResult, error) {
	if e.gameOver {
		return nil, ErrGameOver
	}
	if !e.gameStarted {
		return nil, ErrNotStarted
	}

	for _, m := range e.monsters {
		if m.PlayerID == playerID {
			m.HasMoved = true
		}
	}
	e.turnCompleted[playerID] = true

	return &EndTurnResult{RoundReset: e.maybeResetRound()}, nil
}

// completeTurnIfDone marks the player turn-complete once every monster they
// own has moved this round. Players with no monsters left are not completed
// here; losing the last monster is handled by game-over detection.
func (e *GameEngine) completeTurnIfDone(playerID string) bool {
	owned := 0
	for _, m := range e.monsters {
		if m.PlayerID != playerID {
			continue
		}
		owned++
		if !m.HasMoved {
			return false
		}
	}
	if owned == 0 {
		return false
	}
	e.turnCompleted[playerID] = true
	return true
}

// maybeResetRound starts a new round once every tracked player completed
// their turn: all completion flags and every survivor's movement entitlement
// reset.
func (e *GameEngine) maybeResetRound() bool {
	if len(e.turnCompleted) == 0 {
		return false
	}
	for _, done := range e.turnCompleted {
		if !done {
			return false
		}
	}

	for id := range e.turnCompleted {
		e.turnCompleted[id] = false
	}
	for _, m := range e.monsters {
		m.HasMoved = false
	}
	return true
}
