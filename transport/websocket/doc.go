// Package websocket carries the Monster Duel wire protocol over gorilla
// WebSocket connections.
//
// Each connection gets a read pump and a write pump. The read pump decodes
// tagged JSON frames (identify, start, move, endTurnButton, playerLeft) and
// dispatches them to the session coordinator; the write pump drains a
// buffered send channel and keeps the connection alive with pings. A peer
// that stops draining its buffer is disconnected rather than allowed to
// stall the session.
//
// Protocol violations are handled defensively: a malformed frame, an
// unknown tag or a command before identify closes the connection after a
// final error frame.
package websocket
