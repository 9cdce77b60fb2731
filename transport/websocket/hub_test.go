package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/monster-duel/game/config"
	"github.com/wricardo/monster-duel/game/session"
	"github.com/wricardo/monster-duel/game/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	sessions := session.NewManager(store.NewMemoryStore())
	t.Cleanup(func() {
		for _, s := range sessions.List() {
			s.Close()
		}
	})

	hub := NewHub(sessions, configs)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)
	return server
}

func dialSession(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}
}

// readFrame reads the next JSON frame as a generic map.
func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}

	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("Failed to unmarshal frame %q: %v", data, err)
	}
	return frame
}

// readUntil skips frames until one with the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame := readFrame(t, conn)
		if frame["type"] == msgType {
			return frame
		}
	}
	t.Fatalf("No %q frame received", msgType)
	return nil
}

func identify(t *testing.T, conn *websocket.Conn, username string) {
	t.Helper()
	sendFrame(t, conn, map[string]any{"type": "identify", "username": username})
}

func TestServeWS_IdentifyReceivesInit(t *testing.T) {
	server := newTestServer(t)

	conn := dialSession(t, server, "duel1")
	identify(t, conn, "alice")

	frame := readUntil(t, conn, "init")
	if frame["id"] != "duel1" {
		t.Errorf("init should carry the session id, got %v", frame["id"])
	}
	players, ok := frame["players"].(map[string]any)
	if !ok || len(players) != 1 {
		t.Errorf("init should list 1 player, got %v", frame["players"])
	}
}

func TestServeWS_SecondPlayerAnnounced(t *testing.T) {
	server := newTestServer(t)

	conn1 := dialSession(t, server, "duel1")
	identify(t, conn1, "alice")
	readUntil(t, conn1, "init")

	conn2 := dialSession(t, server, "duel1")
	identify(t, conn2, "bob")
	readUntil(t, conn2, "init")

	frame := readUntil(t, conn1, "playerJoined")
	players, ok := frame["players"].(map[string]any)
	if !ok || len(players) != 2 {
		t.Errorf("playerJoined should list 2 players, got %v", frame["players"])
	}
}

func TestServeWS_AdmissionRejectionClosesConnection(t *testing.T) {
	server := newTestServer(t)

	conn1 := dialSession(t, server, "duel1")
	identify(t, conn1, "alice")
	readUntil(t, conn1, "init")

	conn2 := dialSession(t, server, "duel1")
	identify(t, conn2, "bob")
	readUntil(t, conn2, "init")

	conn3 := dialSession(t, server, "duel1")
	identify(t, conn3, "carol")

	frame := readUntil(t, conn3, "error")
	if frame["reason"] == "" {
		t.Error("rejection should carry a reason")
	}

	conn3.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn3.ReadMessage(); err == nil {
		t.Error("connection should be closed after an admission rejection")
	}
}

func TestServeWS_MalformedFrameClosesConnection(t *testing.T) {
	server := newTestServer(t)

	conn := dialSession(t, server, "duel1")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}

	readUntil(t, conn, "error")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection should be closed after a malformed frame")
	}
}

func TestServeWS_CommandBeforeIdentifyClosesConnection(t *testing.T) {
	server := newTestServer(t)

	conn := dialSession(t, server, "duel1")
	sendFrame(t, conn, map[string]any{"type": "start"})

	readUntil(t, conn, "error")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection should be closed after a command before identify")
	}
}

func TestServeWS_UnknownTagClosesConnection(t *testing.T) {
	server := newTestServer(t)

	conn := dialSession(t, server, "duel1")
	identify(t, conn, "alice")
	readUntil(t, conn, "init")

	sendFrame(t, conn, map[string]any{"type": "teleport"})
	readUntil(t, conn, "error")
}

func TestServeWS_StartBroadcastsBoard(t *testing.T) {
	server := newTestServer(t)

	conn1 := dialSession(t, server, "duel1")
	identify(t, conn1, "alice")
	readUntil(t, conn1, "init")

	conn2 := dialSession(t, server, "duel1")
	identify(t, conn2, "bob")
	readUntil(t, conn2, "init")

	sendFrame(t, conn1, map[string]any{"type": "start"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		frame := readUntil(t, conn, "start")
		monsters, ok := frame["monsters"].(map[string]any)
		if !ok || len(monsters) != 6 {
			t.Errorf("start should carry 6 monsters, got %v", frame["monsters"])
		}
		stats, ok := frame["stats"].(map[string]any)
		if !ok || len(stats) != 2 {
			t.Errorf("start should carry stats for 2 players, got %v", frame["stats"])
		}
	}
}

func TestServeWS_EndTurnBroadcastsUpdate(t *testing.T) {
	server := newTestServer(t)

	conn1 := dialSession(t, server, "duel1")
	identify(t, conn1, "alice")
	readUntil(t, conn1, "init")

	conn2 := dialSession(t, server, "duel1")
	identify(t, conn2, "bob")
	readUntil(t, conn2, "init")

	sendFrame(t, conn1, map[string]any{"type": "start"})
	readUntil(t, conn1, "start")
	readUntil(t, conn2, "start")

	sendFrame(t, conn1, map[string]any{"type": "endTurnButton"})

	frame := readUntil(t, conn2, "update")
	if _, ok := frame["turnCompleted"].(map[string]any); !ok {
		t.Errorf("update should carry the turn map, got %v", frame["turnCompleted"])
	}
}

func TestServeWS_DisconnectPausesGame(t *testing.T) {
	server := newTestServer(t)

	conn1 := dialSession(t, server, "duel1")
	identify(t, conn1, "alice")
	readUntil(t, conn1, "init")

	conn2 := dialSession(t, server, "duel1")
	identify(t, conn2, "bob")
	readUntil(t, conn2, "init")

	sendFrame(t, conn1, map[string]any{"type": "start"})
	readUntil(t, conn1, "start")
	readUntil(t, conn2, "start")

	conn2.Close()

	frame := readUntil(t, conn1, "gamePaused")
	if frame["username"] != "bob" {
		t.Errorf("pause should name bob, got %v", frame["username"])
	}
}

func TestServeWS_UnknownConfigRejected(t *testing.T) {
	server := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=duel1&config=no-such-config"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial should fail for an unknown config")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %v", resp)
	}
}
