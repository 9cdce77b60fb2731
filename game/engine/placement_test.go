package engine

import (
	"math/rand"
	"testing"
)

func TestStart_SpawnsOnOppositeEdges(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	eng.rng = rand.New(rand.NewSource(1))
	eng.AddPlayer("p1", "alice")
	eng.AddPlayer("p2", "bob")

	if err := eng.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if !eng.Started() {
		t.Error("engine should report started")
	}

	counts := map[string]int{}
	for _, m := range eng.monsters {
		counts[m.PlayerID]++

		switch m.PlayerID {
		case "p1":
			if m.Position.Col != 0 {
				t.Errorf("p1 monster %s should spawn in column 0, got %d", m.ID, m.Position.Col)
			}
		case "p2":
			if m.Position.Col != 9 {
				t.Errorf("p2 monster %s should spawn in column 9, got %d", m.ID, m.Position.Col)
			}
		default:
			t.Errorf("monster %s has unknown owner %s", m.ID, m.PlayerID)
		}

		if m.HasMoved {
			t.Errorf("fresh monster %s should not have HasMoved set", m.ID)
		}
	}

	per := DefaultGameConfig().MonstersPerPlayer
	if counts["p1"] != per || counts["p2"] != per {
		t.Errorf("both players should spawn %d monsters, got %v", per, counts)
	}
}

func TestStart_DistinctRowsPerPlayer(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		eng, err := NewEngine(DefaultGameConfig())
		if err != nil {
			t.Fatalf("failed to create engine: %v", err)
		}
		eng.rng = rand.New(rand.NewSource(seed))
		eng.AddPlayer("p1", "alice")
		eng.AddPlayer("p2", "bob")
		if err := eng.Start(); err != nil {
			t.Fatalf("failed to start: %v", err)
		}

		rows := map[string]map[int]bool{"p1": {}, "p2": {}}
		for _, m := range eng.monsters {
			if rows[m.PlayerID][m.Position.Row] {
				t.Fatalf("seed %d: player %s has two monsters in row %d", seed, m.PlayerID, m.Position.Row)
			}
			rows[m.PlayerID][m.Position.Row] = true
		}
	}
}

func TestStart_TypeRotation(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	eng.rng = rand.New(rand.NewSource(7))
	eng.AddPlayer("p1", "alice")
	eng.AddPlayer("p2", "bob")
	if err := eng.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	// Rotation through the type list gives each player exactly one of each
	// type when monsters_per_player equals the cycle length.
	for _, player := range []string{"p1", "p2"} {
		types := map[MonsterType]int{}
		for _, m := range eng.monsters {
			if m.PlayerID == player {
				types[m.Type]++
			}
		}
		for _, mt := range DefaultGameConfig().MonsterTypes {
			if types[mt] != 1 {
				t.Errorf("player %s should have exactly one %s, got %d", player, mt, types[mt])
			}
		}
	}
}

func TestStart_MonsterIDsNamespacedByOwner(t *testing.T) {
	eng, err := NewEngine(DefaultGameConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	eng.AddPlayer("p1", "alice")
	eng.AddPlayer("p2", "bob")
	if err := eng.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	for id, m := range eng.monsters {
		if id != m.ID {
			t.Errorf("map key %s does not match monster id %s", id, m.ID)
		}
		if len(id) <= len(m.PlayerID) || id[:len(m.PlayerID)] != m.PlayerID {
			t.Errorf("monster id %s should be prefixed with owner id %s", id, m.PlayerID)
		}
	}
}
