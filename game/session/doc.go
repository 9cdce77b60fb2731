// Package session coordinates Monster Duel matches over long-lived player
// connections.
//
// Each Session is an actor: a single goroutine owns the game engine and the
// set of connected players, and every command (join, start, move, end turn,
// disconnect) is queued on an inbox and processed one at a time to full
// completion, including any store calls it needs. Connections therefore
// never race on match state, and the order messages are broadcast in is the
// order commands were processed.
//
// Sessions survive player disconnects: a started match is paused, its full
// state persisted under a stable id, and only the recorded participants may
// rejoin, either into the same session or into a fresh one created later
// with that id.
//
// The Manager indexes live sessions by id and reaps idle ones.
package session
