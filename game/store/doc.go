// Package store provides the persistence service for Monster Duel: user
// profiles with cumulative win/loss counters and durable snapshots of
// paused games.
//
// The store package implements:
//   - User lookup and creation by username (the authentication boundary)
//   - Win/loss/games counter commits
//   - Paused-game snapshots referenced by stable ids
//   - Linking a paused game into both participants' profiles for resume
//
// Backends:
//
// Three interchangeable implementations of the Store interface are provided.
// MemoryStore keeps everything in process and is the test double.
// FileStore persists to JSON files under a data directory for local runs.
// GormStore maps the same records onto Postgres through GORM and is selected
// when DATABASE_URL is configured.
//
// Concurrency:
//
// All implementations are safe for concurrent use. Independent sessions
// persist in parallel; the serialization of calls within one session is the
// session coordinator's responsibility, not the store's.
package store
