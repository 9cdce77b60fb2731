// Package engine provides the core game logic for Monster Duel.
//
// The engine package implements the game mechanics including:
//   - Player admission with the two-player cap
//   - Monster placement on opposite board edges
//   - Move legality (straight lines, short diagonals, enemy path blocking)
//   - Collision resolution through the cyclic elimination rules
//   - Turn completion and round resets
//   - Game-over detection and snapshot/restore for pause and resume
//
// Core Types:
//
// GameEngine owns the mutable state of one match: the player map, the
// monster map, per-player turn completion, and the started/over flags.
// GameConfig defines the board dimensions, the monster count per player,
// and the monster types in dominance order.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.AddPlayer("p1", "alice")
//	eng.AddPlayer("p2", "bob")
//	eng.Start()
//
//	result, err := eng.Move("p1", "p1-m1", engine.Position{Row: 2, Col: 3})
//
// Elimination Rules:
//
// Monster types form a cycle: with the default configuration, vampire beats
// werewolf, werewolf beats ghost, and ghost beats vampire. Equal types
// eliminate each other. The survivor of a collision claims the contested
// cell.
//
// Concurrency:
//
// GameEngine is deliberately not synchronized. Each engine is owned by a
// single session coordinator goroutine which serializes every operation;
// see the session package.
package engine
