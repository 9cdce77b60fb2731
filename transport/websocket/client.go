package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/monster-duel/game/session"
)

// Client is one player connection. It implements session.Sender, so the
// session coordinator fans broadcasts out through its buffered send channel
// without ever blocking on a slow peer.
type Client struct {
	conn *websocket.Conn
	sess *session.Session

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// playerID is set by the identify message and only touched by readPump.
	playerID string
}

func newClient(conn *websocket.Conn, sess *session.Session) *Client {
	return &Client{
		conn: conn,
		sess: sess,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

// Send queues a message for the peer. A full buffer means the peer stopped
// draining; the connection is torn down rather than blocking the session.
func (c *Client) Send(msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal WebSocket message: %v", err)
		return false
	}

	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		c.Close("send buffer full")
		return false
	}
}

// Close delivers a final reason frame (best effort) and shuts the
// connection down.
func (c *Client) Close(reason string) {
	c.closeOnce.Do(func() {
		if reason != "" {
			data, err := json.Marshal(session.ErrorMessage{Type: session.MessageError, Reason: reason})
			if err == nil {
				select {
				case c.send <- data:
				default:
				}
			}
		}
		close(c.done)
	})
}

// readPump pumps messages from the WebSocket connection to the session
func (c *Client) readPump() {
	defer func() {
		if c.playerID != "" {
			c.sess.Disconnect(c.playerID)
		}
		// writePump owns conn.Close: closing done makes it drain the send
		// queue first, so a final error frame reaches the peer before the
		// socket goes away.
		c.Close("")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		if err := c.handleMessage(data); err != nil {
			// Protocol violations and admission rejections end the
			// connection; the reason frame is flushed by writePump.
			log.Printf("Closing connection: %v", err)
			c.Close(err.Error())
			return
		}
	}
}

// writePump pumps messages from the session to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			// Flush anything queued before the close, then say goodbye.
			for {
				select {
				case message := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
