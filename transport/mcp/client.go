package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/monster-duel/game/config"
	"github.com/wricardo/monster-duel/game/engine"
	"github.com/wricardo/monster-duel/game/session"
	"github.com/wricardo/monster-duel/game/store"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Monster Duel",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Monster Duel - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Monster Duel is a two-player turn-based battle: each player commands a
squad of monsters (vampire, werewolf, ghost by default) on a grid.
Monsters move in straight lines or short diagonals; landing on an enemy
resolves by cyclic dominance (vampire beats werewolf beats ghost beats
vampire, same type eliminates both). A player with no monsters left loses.

Game traffic flows over WebSocket connections; these tools are for
inspection and administration only.

AVAILABLE TOOLS:
- list_sessions: List all live sessions
- session_state: Full state of one session (roster, board, turn flags)
- user_stats: Lifetime games/wins/losses for a username
- list_configs: List available board configurations
- get_config: Get one board configuration`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all live game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_state",
		Description: "Get the full state of one session: roster, board, turn flags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSessionState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "user_stats",
		Description: "Get lifetime games/wins/losses for a username",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Username to look up",
				},
			},
			Required: []string{"username"},
		},
	}, c.handleUserStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_config",
		Description: "Get one board configuration by name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Configuration name",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleGetConfig)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int             `json:"count"`
		Sessions []*session.View `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Sessions (%d):\n\n", response.Count)
	for _, v := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Players: %s, %s, Created: %s)\n",
			v.ID, v.ConfigName, rosterLine(v), phaseLine(v),
			v.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSessionState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var view session.View
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionView(&view)), nil
}

func (c *Client) handleUserStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	username, _ := args["username"].(string)

	var user store.User
	err := c.apiCall("GET", fmt.Sprintf("/api/users/%s/stats", username), nil, &user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Stats for %s:\nGames: %d\nWins: %d\nLosses: %d\n",
		user.Username, user.Games, user.Wins, user.Losses)
	if user.ActiveGameID != "" {
		result += fmt.Sprintf("Paused game: %s\n", user.ActiveGameID)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []config.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Board: %dx%d, Monsters: %d per player, Types: %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description,
			cfg.BoardRows, cfg.BoardCols, cfg.MonstersPerPlayer,
			strings.Join(cfg.MonsterTypes, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)

	var cfg engine.GameConfig
	err := c.apiCall("GET", fmt.Sprintf("/api/configs/%s", name), nil, &cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	types := make([]string, len(cfg.MonsterTypes))
	for i, t := range cfg.MonsterTypes {
		types[i] = string(t)
	}
	result := fmt.Sprintf("Config: %s\n%s\nBoard: %dx%d\nMonsters per player: %d\nDominance cycle: %s\n",
		cfg.Name, cfg.Description, cfg.BoardRows, cfg.BoardCols,
		cfg.MonstersPerPlayer, strings.Join(types, " > "))
	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func rosterLine(v *session.View) string {
	if len(v.Players) == 0 {
		return "none"
	}
	names := make([]string, 0, len(v.Players))
	for _, name := range v.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, " vs ")
}

func phaseLine(v *session.View) string {
	switch {
	case v.Over:
		return "finished"
	case v.Paused:
		return "paused"
	case v.Started:
		return "in progress"
	default:
		return "lobby"
	}
}

func formatSessionView(v *session.View) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Session: %s\nConfig: %s\nPhase: %s\nPlayers: %s\n",
		v.ID, v.ConfigName, phaseLine(v), rosterLine(v)))
	if v.PausedGameID != "" {
		b.WriteString(fmt.Sprintf("Paused game id: %s\n", v.PausedGameID))
	}
	b.WriteString(fmt.Sprintf("Created: %s\n", v.CreatedAt.Format("2006-01-02 15:04:05")))

	if len(v.Monsters) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(formatBoard(v))

	b.WriteString("\nMonsters:\n")
	ids := make([]string, 0, len(v.Monsters))
	for id := range v.Monsters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := v.Monsters[id]
		moved := ""
		if m.HasMoved {
			moved = " (moved)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s at (%d,%d) owned by %s%s\n",
			id, m.Type, m.Position.Row, m.Position.Col, v.Players[m.PlayerID], moved))
	}

	if len(v.TurnCompleted) > 0 {
		b.WriteString("\nTurn complete:\n")
		for pid, done := range v.TurnCompleted {
			b.WriteString(fmt.Sprintf("- %s: %v\n", v.Players[pid], done))
		}
	}

	return b.String()
}

// formatBoard renders the grid with each monster as the first letter of its
// type, uppercase for the first player and lowercase for the second.
func formatBoard(v *session.View) string {
	rows, cols := boardExtent(v)
	if rows == 0 || cols == 0 {
		return ""
	}

	playerIDs := make([]string, 0, len(v.Players))
	for pid := range v.Players {
		playerIDs = append(playerIDs, pid)
	}
	sort.Strings(playerIDs)

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, cols)
		for c := range grid[r] {
			grid[r][c] = '.'
		}
	}

	for _, m := range v.Monsters {
		char := '?'
		if len(m.Type) > 0 {
			char = rune(strings.ToUpper(string(m.Type))[0])
		}
		if len(playerIDs) > 1 && m.PlayerID == playerIDs[1] {
			char = rune(strings.ToLower(string(char))[0])
		}
		if m.Position.Row < rows && m.Position.Col < cols {
			grid[m.Position.Row][m.Position.Col] = char
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return b.String()
}

// boardExtent infers the board size from monster positions; the view does
// not carry the full config.
func boardExtent(v *session.View) (int, int) {
	rows, cols := 0, 0
	for _, m := range v.Monsters {
		if m.Position.Row >= rows {
			rows = m.Position.Row + 1
		}
		if m.Position.Col >= cols {
			cols = m.Position.Col + 1
		}
	}
	return rows, cols
}
