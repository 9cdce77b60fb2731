package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/monster-duel/game/config"
	"github.com/wricardo/monster-duel/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub upgrades player connections and binds each one to a session. The hub
// itself holds no match state; after the upgrade everything flows between
// the client pumps and the session coordinator.
type Hub struct {
	sessions *session.Manager
	configs  *config.Manager
}

// NewHub creates a hub over the session and configuration managers.
func NewHub(sessions *session.Manager, configs *config.Manager) *Hub {
	return &Hub{
		sessions: sessions,
		configs:  configs,
	}
}

// ServeWS handles WebSocket requests from players. The session is chosen by
// the ?session= query parameter (a fresh one is created when absent) and
// configured by ?config=.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	cfg := h.configs.GetDefault()
	if name := r.URL.Query().Get("config"); name != "" {
		loaded, err := h.configs.LoadConfig(name)
		if err != nil {
			http.Error(w, "unknown config: "+name, http.StatusBadRequest)
			return
		}
		cfg = loaded
	}

	sess, err := h.sessions.GetOrCreate(r.URL.Query().Get("session"), cfg)
	if err != nil {
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := newClient(conn, sess)

	go client.writePump()
	go client.readPump()
}
