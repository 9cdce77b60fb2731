package engine

import "testing"

func TestTurn_AutoCompletesWhenAllMonstersMoved(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)
	placeMonster(eng, "p1-m2", "p1", Ghost, 5, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 9, 9)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 0, Col: 3})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if result.TurnCompleted {
		t.Error("turn should not complete with an unmoved monster left")
	}
	if eng.turnCompleted["p1"] {
		t.Error("turn flag should still be false")
	}

	result, err = eng.Move("p1", "p1-m2", Position{Row: 5, Col: 3})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if !result.TurnCompleted {
		t.Error("turn should auto-complete once every monster moved")
	}
	if !eng.turnCompleted["p1"] {
		t.Error("turn flag should be set")
	}
}

func TestEndTurn_ForcesCompletion(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)
	placeMonster(eng, "p1-m2", "p1", Ghost, 5, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 9, 9)

	result, err := eng.EndTurn("p1")
	if err != nil {
		t.Fatalf("end turn failed: %v", err)
	}
	if result.RoundReset {
		t.Error("round should not reset while p2's turn is open")
	}
	if !eng.turnCompleted["p1"] {
		t.Error("explicit end turn should complete the turn")
	}
	for _, m := range eng.monsters {
		if m.PlayerID == "p1" && !m.HasMoved {
			t.Errorf("end turn should mark %s as moved", m.ID)
		}
	}
}

func TestRound_ResetsWhenAllPlayersComplete(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 9, 9)

	if _, err := eng.EndTurn("p1"); err != nil {
		t.Fatalf("end turn failed: %v", err)
	}

	result, err := eng.EndTurn("p2")
	if err != nil {
		t.Fatalf("end turn failed: %v", err)
	}
	if !result.RoundReset {
		t.Error("second completion should trigger a round reset")
	}

	for id, done := range eng.turnCompleted {
		if done {
			t.Errorf("turn flag for %s should be reset", id)
		}
	}
	for _, m := range eng.monsters {
		if m.HasMoved {
			t.Errorf("monster %s should regain its movement entitlement", m.ID)
		}
	}
}

func TestRound_ResetViaFinalMove(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 9, 9)

	if _, err := eng.EndTurn("p2"); err != nil {
		t.Fatalf("end turn failed: %v", err)
	}

	// p1's only monster moving completes the turn, which in turn closes the
	// round: both effects surface on the same result.
	result, err := eng.Move("p1", "p1-m1", Position{Row: 0, Col: 2})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if !result.TurnCompleted {
		t.Error("final move should complete the turn")
	}
	if !result.RoundReset {
		t.Error("final move should close the round")
	}
	if eng.monsters["p1-m1"].HasMoved {
		t.Error("round reset should clear HasMoved even for the monster that just moved")
	}
}

func TestEndTurn_RefusedWhenOver(t *testing.T) {
	eng := newBattleEngine(t)
	eng.gameOver = true

	if _, err := eng.EndTurn("p1"); err == nil {
		t.Error("end turn should be refused after game over")
	}
}
