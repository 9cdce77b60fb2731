package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/monster-duel/game/engine"
)

// Inbound message type tags.
const (
	messageIdentify   = "identify"
	messageStart      = "start"
	messageMove       = "move"
	messageEndTurn    = "endTurnButton"
	messagePlayerLeft = "playerLeft"
)

var (
	errNotIdentified     = errors.New("identify first")
	errAlreadyIdentified = errors.New("already identified")
)

// inboundMessage is the tagged union read off the wire. Fields beyond Type
// are populated per tag; unknown tags close the connection.
type inboundMessage struct {
	Type         string           `json:"type"`
	Username     string           `json:"username,omitempty"`
	PausedGameID string           `json:"pausedGameId,omitempty"`
	MonsterID    string           `json:"monsterId,omitempty"`
	Position     *engine.Position `json:"position,omitempty"`
	UserID       string           `json:"userId,omitempty"`
}

// handleMessage decodes and dispatches one frame. A non-nil return closes
// the connection with the error as the reason.
func (c *Client) handleMessage(data []byte) error {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("malformed message: %v", err)
	}

	switch msg.Type {
	case messageIdentify:
		if c.playerID != "" {
			return errAlreadyIdentified
		}
		if msg.Username == "" {
			return errors.New("identify requires a username")
		}
		playerID, err := c.sess.Join(msg.Username, msg.PausedGameID, c)
		if err != nil {
			return err
		}
		c.playerID = playerID

	case messageStart:
		if c.playerID == "" {
			return errNotIdentified
		}
		c.sess.StartGame(c.playerID)

	case messageMove:
		if c.playerID == "" {
			return errNotIdentified
		}
		if msg.MonsterID == "" || msg.Position == nil {
			return errors.New("move requires monsterId and position")
		}
		c.sess.Move(c.playerID, msg.MonsterID, *msg.Position)

	case messageEndTurn:
		if c.playerID == "" {
			return errNotIdentified
		}
		c.sess.EndTurn(c.playerID)

	case messagePlayerLeft:
		if c.playerID == "" {
			return errNotIdentified
		}
		// Explicit departure: same path as a dropped connection, but the
		// client asked for it. readPump's deferred Disconnect is a no-op
		// after this one.
		c.sess.Disconnect(c.playerID)
		return errors.New("left the session")

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	return nil
}
