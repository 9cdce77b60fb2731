package engine

import (
	"errors"
	"testing"
)

// newBattleEngine returns a started engine with players p1 and p2 and no
// monsters; tests place monsters directly for deterministic boards.
func newBattleEngine(t *testing.T) *GameEngine {
	t.Helper()

	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := eng.AddPlayer("p1", "alice"); err != nil {
		t.Fatalf("failed to add p1: %v", err)
	}
	if err := eng.AddPlayer("p2", "bob"); err != nil {
		t.Fatalf("failed to add p2: %v", err)
	}
	eng.gameStarted = true
	return eng
}

func placeMonster(e *GameEngine, id, playerID string, mt MonsterType, row, col int) {
	e.monsters[id] = &Monster{
		ID:       id,
		PlayerID: playerID,
		Type:     mt,
		Position: Position{Row: row, Col: col},
	}
}

func TestMove_SimpleRelocation(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)
	placeMonster(eng, "p2-m1", "p2", Ghost, 9, 9)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 0, Col: 5})
	if err != nil {
		t.Fatalf("expected legal move, got %v", err)
	}
	if result.Collision {
		t.Error("relocation should not be a collision")
	}
	if result.Monster == nil || result.Monster.Position != (Position{Row: 0, Col: 5}) {
		t.Errorf("monster should be at (0,5), got %+v", result.Monster)
	}
	if !eng.monsters["p1-m1"].HasMoved {
		t.Error("moved monster should have HasMoved set")
	}
}

func TestMove_AttackerWinsCollision(t *testing.T) {
	// Scenario: vampire at (2,0) attacks werewolf at (2,3), row 2 clear.
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 2, 3)
	placeMonster(eng, "p2-m2", "p2", Ghost, 9, 9)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 3})
	if err != nil {
		t.Fatalf("expected legal attack, got %v", err)
	}
	if !result.Collision {
		t.Error("attack should be reported as a collision")
	}
	if len(result.Removed) != 1 || result.Removed[0] != "p2-m1" {
		t.Errorf("werewolf should be the only removal, got %v", result.Removed)
	}
	if _, alive := eng.monsters["p2-m1"]; alive {
		t.Error("defender should be removed from the board")
	}

	vampire := eng.monsters["p1-m1"]
	if vampire.Position != (Position{Row: 2, Col: 3}) {
		t.Errorf("winner should occupy the contested cell, got %+v", vampire.Position)
	}
	if !vampire.HasMoved {
		t.Error("surviving attacker should have HasMoved set")
	}
}

func TestMove_DefenderWinsCollision(t *testing.T) {
	// Ghost attacks adjacent vampire: ghost beats vampire, claims the cell.
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Ghost, 4, 4)
	placeMonster(eng, "p2-m1", "p2", Vampire, 4, 5)
	placeMonster(eng, "p1-m2", "p1", Werewolf, 0, 0)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 4, Col: 5})
	if err != nil {
		t.Fatalf("expected legal attack, got %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "p2-m1" {
		t.Errorf("vampire should be removed, got %v", result.Removed)
	}
	if eng.monsters["p1-m1"].Position != (Position{Row: 4, Col: 5}) {
		t.Error("ghost should occupy the defender's cell")
	}
}

func TestMove_AttackerRemovedKeepsNoPosition(t *testing.T) {
	// Werewolf attacks vampire and loses; the vampire stays where it was.
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Werewolf, 3, 3)
	placeMonster(eng, "p1-m2", "p1", Vampire, 0, 0)
	placeMonster(eng, "p2-m1", "p2", Vampire, 3, 4)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 3, Col: 4})
	if err != nil {
		t.Fatalf("expected legal attack, got %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "p1-m1" {
		t.Errorf("attacker should be the only removal, got %v", result.Removed)
	}
	if result.Monster != nil {
		t.Error("removed attacker should not be reported as the moved monster")
	}

	defender := eng.monsters["p2-m1"]
	if defender.Position != (Position{Row: 3, Col: 4}) {
		t.Errorf("defender should keep its cell, got %+v", defender.Position)
	}
}

func TestMove_SameTypeMutualElimination(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Werewolf, 5, 5)
	placeMonster(eng, "p1-m2", "p1", Ghost, 0, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 5, 6)
	placeMonster(eng, "p2-m2", "p2", Ghost, 9, 9)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 5, Col: 6})
	if err != nil {
		t.Fatalf("expected legal attack, got %v", err)
	}
	if len(result.Removed) != 2 {
		t.Errorf("both monsters should be removed, got %v", result.Removed)
	}
	if eng.monsterAt(Position{Row: 5, Col: 6}) != nil {
		t.Error("no monster should occupy the contested cell")
	}
}

func TestMove_PathBlockedByEnemy(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p2-m1", "p2", Ghost, 2, 2)

	before := eng.monsters["p1-m1"].Position
	_, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 5})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove for blocked path, got %v", err)
	}
	if eng.monsters["p1-m1"].Position != before {
		t.Error("blocked move should not change state")
	}
	if eng.monsters["p1-m1"].HasMoved {
		t.Error("blocked move should not consume the movement entitlement")
	}
}

func TestMove_OwnMonsterDoesNotBlockPath(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p1-m2", "p1", Ghost, 2, 2)

	if _, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 5}); err != nil {
		t.Fatalf("own monster on the path should not block: %v", err)
	}
}

func TestMove_DestinationHeldByOwnMonster(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p1-m2", "p1", Ghost, 2, 4)

	_, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 4})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove for own-monster destination, got %v", err)
	}
	if eng.monsters["p1-m1"].Position != (Position{Row: 2, Col: 0}) {
		t.Error("rejected move should not change state")
	}
}

func TestMove_IllegalShapes(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 5, 5)

	cases := []Position{
		{Row: 8, Col: 8}, // diagonal of 3
		{Row: 7, Col: 6}, // knight-like
		{Row: 2, Col: 4},
	}
	for _, dest := range cases {
		if _, err := eng.Move("p1", "p1-m1", dest); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("move to (%d,%d) should be illegal, got %v", dest.Row, dest.Col, err)
		}
	}

	// Short diagonals up to two cells are fine.
	if _, err := eng.Move("p1", "p1-m1", Position{Row: 7, Col: 7}); err != nil {
		t.Errorf("diagonal of 2 should be legal: %v", err)
	}
}

func TestMove_OffBoard(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)

	if _, err := eng.Move("p1", "p1-m1", Position{Row: -1, Col: 0}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for off-board destination, got %v", err)
	}
	if _, err := eng.Move("p1", "p1-m1", Position{Row: 0, Col: 10}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for off-board destination, got %v", err)
	}
}

func TestMove_SameCellIsNoOp(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 3, 3)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 3, Col: 3})
	if err != nil {
		t.Fatalf("same-cell move should be a no-op, got %v", err)
	}
	if !result.NoOp {
		t.Error("result should be flagged as a no-op")
	}
	if eng.monsters["p1-m1"].HasMoved {
		t.Error("no-op move should not consume the movement entitlement")
	}
}

func TestMove_UnknownAndForeignMonsters(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p2-m1", "p2", Ghost, 1, 9)

	if _, err := eng.Move("p1", "nope", Position{Row: 1, Col: 1}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for unknown monster, got %v", err)
	}
	if _, err := eng.Move("p1", "p2-m1", Position{Row: 1, Col: 8}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for foreign monster, got %v", err)
	}
}

func TestMove_RefusedBeforeStartAndAfterGameOver(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	eng.AddPlayer("p1", "alice")
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)

	if _, err := eng.Move("p1", "p1-m1", Position{Row: 0, Col: 1}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}

	eng.gameStarted = true
	eng.gameOver = true
	if _, err := eng.Move("p1", "p1-m1", Position{Row: 0, Col: 1}); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver, got %v", err)
	}
}
