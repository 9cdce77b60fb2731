// Package mcp provides a Model Context Protocol server for Monster Duel.
//
// The MCP server is a thin proxy over the REST API: every tool call is
// translated into an HTTP request against the running game server and the
// response is rendered as text, including an ASCII board for session
// state. Game traffic itself stays on the WebSocket protocol; the tools
// here are inspection and administration only.
//
// MCP Tools:
//   - list_sessions: List all live sessions
//   - session_state: Roster, board and turn flags of one session
//   - user_stats: Lifetime games/wins/losses for a username
//   - list_configs: List available board configurations
//   - get_config: Get one board configuration
//
// Transport Modes:
//
// The server runs over stdio for local MCP clients:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
