// Package api provides the HTTP surface of the Monster Duel server.
//
// The api package implements:
//   - Session inspection and deletion endpoints
//   - User stats lookup
//   - Configuration listing, retrieval and creation
//   - The WebSocket upgrade route that carries game traffic
//
// Endpoints:
//
// Sessions:
//   - GET /api/sessions - List live sessions
//   - GET /api/sessions/{id} - Get one session's state
//   - DELETE /api/sessions/{id} - Close and remove a session
//
// Users:
//   - GET /api/users/{username}/stats - Lifetime games/wins/losses
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a new configuration
//
// Game traffic:
//   - GET /ws?session={id}&config={name} - WebSocket upgrade
//
// All endpoints return JSON; errors are returned as {"error": "..."} with
// an appropriate HTTP status code.
package api
