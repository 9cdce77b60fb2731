package engine

import (
	"errors"
	"testing"
)

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if eng.Started() || eng.Over() {
		t.Error("fresh engine should be neither started nor over")
	}
	if eng.PlayerCount() != 0 {
		t.Errorf("fresh engine should have no players, got %d", eng.PlayerCount())
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultGameConfig()
	config.MonsterTypes = []MonsterType{Vampire} // below the minimum

	if _, err := NewEngine(config); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestValidateGameConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GameConfig)
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }},
		{"board too small", func(c *GameConfig) { c.BoardRows = 2 }},
		{"board too large", func(c *GameConfig) { c.BoardCols = 99 }},
		{"zero monsters", func(c *GameConfig) { c.MonstersPerPlayer = 0 }},
		{"more monsters than rows", func(c *GameConfig) { c.MonstersPerPlayer = 11 }},
		{"duplicate types", func(c *GameConfig) { c.MonsterTypes = []MonsterType{Vampire, Vampire} }},
		{"empty type", func(c *GameConfig) { c.MonsterTypes = []MonsterType{Vampire, ""} }},
	}

	for _, tc := range cases {
		config := DefaultGameConfig()
		tc.mutate(config)
		if err := ValidateGameConfig(config); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	if err := ValidateGameConfig(DefaultGameConfig()); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestAddPlayer_CapAndDuplicates(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if err := eng.AddPlayer("p1", "alice"); err != nil {
		t.Fatalf("first join should succeed: %v", err)
	}
	if err := eng.AddPlayer("p1", "alice"); !errors.Is(err, ErrDuplicatePlayer) {
		t.Errorf("duplicate join should fail with ErrDuplicatePlayer, got %v", err)
	}
	if err := eng.AddPlayer("p2", "bob"); err != nil {
		t.Fatalf("second join should succeed: %v", err)
	}
	if err := eng.AddPlayer("p3", "carol"); !errors.Is(err, ErrSessionFull) {
		t.Errorf("third join should fail with ErrSessionFull, got %v", err)
	}
	if eng.PlayerCount() != 2 {
		t.Errorf("player count should stay at 2, got %d", eng.PlayerCount())
	}
}

func TestStart_Requirements(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if err := eng.Start(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("start with empty lobby should fail, got %v", err)
	}

	eng.AddPlayer("p1", "alice")
	eng.AddPlayer("p2", "bob")
	if err := eng.Start(); err != nil {
		t.Fatalf("start should succeed: %v", err)
	}
	if err := eng.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("double start should fail, got %v", err)
	}
}

func TestRemovePlayer_DropsMonsters(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 0, 0)
	placeMonster(eng, "p2-m1", "p2", Ghost, 9, 9)

	eng.RemovePlayer("p1")

	if eng.HasPlayer("p1") {
		t.Error("removed player should be gone")
	}
	if _, ok := eng.monsters["p1-m1"]; ok {
		t.Error("removed player's monsters should be gone")
	}
	if _, ok := eng.monsters["p2-m1"]; !ok {
		t.Error("other player's monsters should survive")
	}
}

func TestGameOver_LastMonsterFalls(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 2, 3)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 3})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if result.GameOver == nil {
		t.Fatal("eliminating the last enemy monster should end the game")
	}
	if result.GameOver.WinnerID != "p1" || result.GameOver.LoserID != "p2" {
		t.Errorf("expected p1 over p2, got %+v", result.GameOver)
	}
	if !eng.Over() {
		t.Error("engine should be terminal")
	}
}

func TestGameOver_MutualEliminationOfFinalPair(t *testing.T) {
	// Both players lose their last monster in the same resolving move; the
	// player who just moved takes the win.
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Werewolf, 5, 5)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 5, 6)

	result, err := eng.Move("p2", "p2-m1", Position{Row: 5, Col: 5})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if result.GameOver == nil {
		t.Fatal("wiping the board should end the game")
	}
	if result.GameOver.WinnerID != "p2" || result.GameOver.LoserID != "p1" {
		t.Errorf("mover should win the zero-survivor edge case, got %+v", result.GameOver)
	}
}

func TestGameOver_FiresExactlyOnce(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 2, 3)

	result, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 3})
	if err != nil || result.GameOver == nil {
		t.Fatalf("first terminal move should succeed: %v, %+v", err, result)
	}

	// Any further mutation is refused outright.
	if _, err := eng.Move("p1", "p1-m1", Position{Row: 2, Col: 4}); !errors.Is(err, ErrGameOver) {
		t.Errorf("post-terminal move should fail with ErrGameOver, got %v", err)
	}
	if _, err := eng.EndTurn("p1"); !errors.Is(err, ErrGameOver) {
		t.Errorf("post-terminal end turn should fail with ErrGameOver, got %v", err)
	}
	if got := eng.checkGameOver("p1"); got != nil {
		t.Errorf("terminal transition should be idempotent, got %+v", got)
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)
	placeMonster(eng, "p2-m1", "p2", Werewolf, 2, 9)
	eng.turnCompleted["p1"] = true

	snap := eng.Snapshot()

	// Mutating the engine afterwards must not leak into the snapshot.
	eng.monsters["p1-m1"].Position = Position{Row: 8, Col: 8}
	if snap.Monsters["p1-m1"].Position != (Position{Row: 2, Col: 0}) {
		t.Error("snapshot should be a deep copy")
	}

	restored, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	restored.Restore(snap)

	if !restored.Started() || restored.Over() {
		t.Error("restored engine should be started and not over")
	}
	if restored.PlayerCount() != 0 {
		t.Error("restored engine should wait for participants to re-admit")
	}
	if restored.monsters["p2-m1"].Position != (Position{Row: 2, Col: 9}) {
		t.Error("monsters should come back exactly as persisted")
	}
	if !restored.turnCompleted["p1"] {
		t.Error("turn flags should come back exactly as persisted")
	}
}

func TestClear_Terminal(t *testing.T) {
	eng := newBattleEngine(t)
	placeMonster(eng, "p1-m1", "p1", Vampire, 2, 0)

	eng.Clear()

	if !eng.Over() {
		t.Error("cleared engine should be terminal")
	}
	if eng.PlayerCount() != 0 || len(eng.monsters) != 0 {
		t.Error("cleared engine should hold no players or monsters")
	}
	if err := eng.AddPlayer("p3", "carol"); !errors.Is(err, ErrGameOver) {
		t.Errorf("admission after clear should fail with ErrGameOver, got %v", err)
	}
}
