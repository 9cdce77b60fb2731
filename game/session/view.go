package session

import (
	"time"

	"github.com/wricardo/monster-duel/game/engine"
)

// View is a read-only snapshot of a session for the REST API and admin
// tooling.
type View struct {
	ID            string                     `json:"id"`
	ConfigName    string                     `json:"configName"`
	Players       map[string]string          `json:"players"`
	Connected     []string                   `json:"connected"`
	Started       bool                       `json:"started"`
	Over          bool                       `json:"over"`
	Paused        bool                       `json:"paused"`
	PausedGameID  string                     `json:"pausedGameId,omitempty"`
	Monsters      map[string]*engine.Monster `json:"monsters"`
	TurnCompleted map[string]bool            `json:"turnCompleted"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

// View captures the session state through the coordinator goroutine, so it
// is consistent with the command stream. Returns nil when the session is
// closed.
func (s *Session) View() *View {
	ch := make(chan *View, 1)

	select {
	case s.inbox <- func() {
		connected := make([]string, 0, len(s.clients))
		for pid := range s.clients {
			connected = append(connected, s.engine.Username(pid))
		}
		ch <- &View{
			ID:            s.ID,
			ConfigName:    s.engine.Config().Name,
			Players:       s.engine.Players(),
			Connected:     connected,
			Started:       s.engine.Started(),
			Over:          s.engine.Over(),
			Paused:        s.paused,
			PausedGameID:  s.resumeGameID,
			Monsters:      s.engine.Monsters(),
			TurnCompleted: s.engine.TurnCompleted(),
			CreatedAt:     s.CreatedAt,
		}
	}:
	case <-s.done:
		return nil
	}

	select {
	case v := <-ch:
		return v
	case <-s.done:
		return nil
	}
}
