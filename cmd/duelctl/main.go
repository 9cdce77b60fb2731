// Command duelctl is a small operator CLI for a running Monster Duel server.
//
// It talks to the REST API for inspection (sessions, stats, configs) and can
// attach to a session over the WebSocket protocol to watch its traffic.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "duelctl",
		Usage: "inspect and watch a Monster Duel server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the game server",
				Sources: cli.EnvVars("DUEL_SERVER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "sessions",
				Usage:  "list live sessions",
				Action: listSessions,
			},
			{
				Name:      "session",
				Usage:     "show one session's state",
				ArgsUsage: "<session-id>",
				Action:    showSession,
			},
			{
				Name:      "stats",
				Usage:     "show a player's lifetime stats",
				ArgsUsage: "<username>",
				Action:    showStats,
			},
			{
				Name:   "configs",
				Usage:  "list board configurations",
				Action: listConfigs,
			},
			{
				Name:  "watch",
				Usage: "join a session over WebSocket and print its traffic",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Required: true, Usage: "session id to join"},
					&cli.StringFlag{Name: "username", Required: true, Usage: "username to identify as"},
					&cli.StringFlag{Name: "resume", Usage: "paused game id to resume"},
				},
				Action: watchSession,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// apiGet fetches a JSON document from the server and decodes it into out.
func apiGet(ctx context.Context, cmd *cli.Command, path string, out any) error {
	base := strings.TrimRight(cmd.String("server"), "/")
	req, err := http.NewRequestWithContext(ctx, "GET", base+path, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func listSessions(ctx context.Context, cmd *cli.Command) error {
	var body struct {
		Count    int `json:"count"`
		Sessions []struct {
			ID        string            `json:"id"`
			Players   map[string]string `json:"players"`
			Started   bool              `json:"started"`
			Over      bool              `json:"over"`
			Paused    bool              `json:"paused"`
			CreatedAt time.Time         `json:"createdAt"`
		} `json:"sessions"`
	}
	if err := apiGet(ctx, cmd, "/api/sessions", &body); err != nil {
		return err
	}

	if body.Count == 0 {
		fmt.Println("no live sessions")
		return nil
	}

	for _, s := range body.Sessions {
		names := make([]string, 0, len(s.Players))
		for _, name := range s.Players {
			names = append(names, name)
		}
		phase := "lobby"
		switch {
		case s.Over:
			phase = "finished"
		case s.Paused:
			phase = "paused"
		case s.Started:
			phase = "in progress"
		}
		fmt.Printf("%-8s %-12s %-20s created %s\n",
			s.ID, phase, strings.Join(names, ", "), s.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func showSession(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: duelctl session <session-id>")
	}

	var view map[string]any
	if err := apiGet(ctx, cmd, "/api/sessions/"+url.PathEscape(id), &view); err != nil {
		return err
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func showStats(ctx context.Context, cmd *cli.Command) error {
	username := cmd.Args().First()
	if username == "" {
		return fmt.Errorf("usage: duelctl stats <username>")
	}

	var user struct {
		Username string `json:"username"`
		Games    int    `json:"games"`
		Wins     int    `json:"wins"`
		Losses   int    `json:"losses"`
	}
	if err := apiGet(ctx, cmd, "/api/users/"+url.PathEscape(username)+"/stats", &user); err != nil {
		return err
	}

	fmt.Printf("%s: %d games, %d wins, %d losses\n", user.Username, user.Games, user.Wins, user.Losses)
	return nil
}

func listConfigs(ctx context.Context, cmd *cli.Command) error {
	var configs []struct {
		ConfigID          string `json:"configId"`
		Name              string `json:"name"`
		Description       string `json:"description"`
		BoardRows         int    `json:"boardRows"`
		BoardCols         int    `json:"boardCols"`
		MonstersPerPlayer int    `json:"monstersPerPlayer"`
	}
	if err := apiGet(ctx, cmd, "/api/configs", &configs); err != nil {
		return err
	}

	for _, c := range configs {
		fmt.Printf("%-12s %dx%d board, %d monsters per player  %s\n",
			c.ConfigID, c.BoardRows, c.BoardCols, c.MonstersPerPlayer, c.Description)
	}
	return nil
}

// watchSession joins a session as a spectator-ish client: it identifies with
// the given username and prints every frame the server broadcasts until
// interrupted. Note the server treats it as a real player seat.
func watchSession(ctx context.Context, cmd *cli.Command) error {
	wsURL, err := websocketURL(cmd.String("server"), cmd.String("session"))
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	identify := map[string]string{
		"type":     "identify",
		"username": cmd.String("username"),
	}
	if resume := cmd.String("resume"); resume != "" {
		identify["pausedGameId"] = resume
	}
	if err := conn.WriteJSON(identify); err != nil {
		return fmt.Errorf("identify failed: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection closed: %w", err)
		}
		fmt.Println(string(data))
	}
}

// websocketURL converts the server base URL into the ws:// upgrade URL for a session.
func websocketURL(base, sessionID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()
	return u.String(), nil
}
