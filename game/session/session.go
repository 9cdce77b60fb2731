package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/monster-duel/game/engine"
	"github.com/wricardo/monster-duel/game/store"
)

const (
	// persistAttempts bounds retries of store calls on the match-critical
	// path (snapshots, stat commits). Exhausting them fails the session.
	persistAttempts = 3

	// storeTimeout bounds each individual store call.
	storeTimeout = 5 * time.Second
)

// Sender is the outbound half of one player connection. Send reports false
// when the connection can no longer accept messages; Close tears the
// connection down after delivering a reason to the client.
type Sender interface {
	Send(msg any) bool
	Close(reason string)
}

// Session coordinates one match: admission, the command stream, persistence
// and fan-out to connected players.
//
// All state is owned by a single goroutine. Commands arriving from any
// connection are queued on an inbox and processed one at a time to full
// completion, including awaited store calls, so the engine never needs a
// lock and per-session message order is the processing order.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine *engine.GameEngine
	store  store.Store

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once

	clients map[string]Sender // player id -> connection
	userIDs map[string]string // player id -> store user id

	// paused is set while a started match waits for a disconnected
	// participant; moves and end-turns are dropped until resume.
	paused bool

	// resumeGameID and resumePlayers form the resume lock: once a match has
	// a persisted snapshot, admission is restricted to its recorded
	// participants, under their recorded player ids.
	resumeGameID  string
	resumePlayers map[string]string

	failed     bool
	lastAccess atomic.Int64
}

// NewSession creates a session for the given configuration and starts its
// coordinator goroutine.
func NewSession(id string, config *engine.GameConfig, st store.Store) (*Session, error) {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		engine:    eng,
		store:     st,
		inbox:     make(chan func(), 64),
		done:      make(chan struct{}),
		clients:   make(map[string]Sender),
		userIDs:   make(map[string]string),
	}
	s.lastAccess.Store(time.Now().UnixNano())

	go s.run()
	return s, nil
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.inbox:
			fn()
			s.lastAccess.Store(time.Now().UnixNano())
		case <-s.done:
			return
		}
	}
}

// Close stops the coordinator goroutine and disconnects every client.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		closed := make(chan struct{})
		s.do(func() {
			for _, c := range s.clients {
				c.Close("session closed")
			}
			s.clients = make(map[string]Sender)
			close(closed)
		})
		<-closed
		close(s.done)
	})
}

// LastAccessed returns the time of the most recently processed command.
func (s *Session) LastAccessed() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

// do enqueues a command for the coordinator goroutine.
func (s *Session) do(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// Join admits a connection under a username. A non-empty pausedGameID asks
// to resume a persisted match into this session. On success the effective
// player id is returned; for resumed matches this is the id recorded in the
// snapshot, so restored monsters keep their owner.
func (s *Session) Join(username, pausedGameID string, conn Sender) (string, error) {
	type reply struct {
		playerID string
		err      error
	}
	ch := make(chan reply, 1)

	select {
	case s.inbox <- func() {
		playerID, err := s.handleJoin(username, pausedGameID, conn)
		ch <- reply{playerID, err}
	}:
	case <-s.done:
		return "", ErrSessionClosed
	}

	select {
	case r := <-ch:
		return r.playerID, r.err
	case <-s.done:
		return "", ErrSessionClosed
	}
}

// StartGame begins the match on behalf of a player.
func (s *Session) StartGame(playerID string) {
	s.do(func() { s.handleStart(playerID) })
}

// Move applies a monster move on behalf of a player.
func (s *Session) Move(playerID, monsterID string, dest engine.Position) {
	s.do(func() { s.handleMove(playerID, monsterID, dest) })
}

// EndTurn ends the player's turn explicitly.
func (s *Session) EndTurn(playerID string) {
	s.do(func() { s.handleEndTurn(playerID) })
}

// Disconnect detaches a player connection. Mid-game this pauses the match
// and persists a snapshot; in the lobby it just frees the seat.
func (s *Session) Disconnect(playerID string) {
	s.do(func() { s.handleDisconnect(playerID) })
}

func (s *Session) handleJoin(username, pausedGameID string, conn Sender) (string, error) {
	if s.failed {
		return "", ErrSessionClosed
	}
	if s.engine.Over() {
		return "", admissionErrorf("game already finished")
	}

	if pausedGameID != "" {
		if err := s.bindResume(pausedGameID, username); err != nil {
			return "", err
		}
	}

	var playerID string
	if s.resumeGameID != "" {
		// Resume lock: only recorded participants may join, under their
		// recorded player ids.
		for pid, name := range s.resumePlayers {
			if name == username {
				playerID = pid
				break
			}
		}
		if playerID == "" {
			return "", admissionErrorf("%s is not a participant of the paused game", username)
		}
		if _, connected := s.clients[playerID]; connected {
			return "", admissionErrorf("%s is already connected", username)
		}
	} else {
		for pid := range s.clients {
			if s.engine.Username(pid) == username {
				return "", admissionErrorf("%s is already connected", username)
			}
		}
		if s.engine.PlayerCount() >= engine.MaxPlayers {
			return "", admissionErrorf("session already has two players")
		}
		playerID = uuid.NewString()
	}

	user, err := s.findUser(username)
	if err != nil {
		return "", admissionErrorf("could not load profile for %s", username)
	}

	if !s.engine.HasPlayer(playerID) {
		if err := s.engine.AddPlayer(playerID, username); err != nil {
			switch {
			case errors.Is(err, engine.ErrSessionFull):
				return "", admissionErrorf("session already has two players")
			case errors.Is(err, engine.ErrDuplicatePlayer):
				return "", admissionErrorf("%s is already connected", username)
			default:
				return "", admissionErrorf("could not join: %v", err)
			}
		}
	}

	s.clients[playerID] = conn
	s.userIDs[playerID] = user.ID

	conn.Send(InitMessage{Type: MessageInit, ID: s.ID, Players: s.engine.Players()})
	s.broadcastExcept(playerID, PlayerJoinedMessage{Type: MessagePlayerJoined, Players: s.engine.Players()})

	if s.resumeGameID != "" && s.paused && s.allParticipantsConnected() {
		s.resumeGame()
	}

	return playerID, nil
}

// bindResume attaches a persisted match to this session, restoring the
// board and installing the resume lock. Only one snapshot may ever be bound
// to a session, and only a recorded participant may bind it: every rejection
// happens before any session state is touched.
func (s *Session) bindResume(pausedGameID, username string) error {
	if s.resumeGameID != "" {
		if pausedGameID != s.resumeGameID {
			return admissionErrorf("a different paused game is attached to this session")
		}
		return nil
	}
	if s.engine.Started() {
		return admissionErrorf("cannot resume into a game in progress")
	}
	if s.engine.PlayerCount() > 0 {
		return admissionErrorf("cannot resume into a session with players in the lobby")
	}

	var game *store.PersistedGame
	err := s.withRetry("load paused game", func(ctx context.Context) error {
		var loadErr error
		game, loadErr = s.store.LoadGame(ctx, pausedGameID)
		if errors.Is(loadErr, store.ErrGameNotFound) {
			// Not transient, don't retry.
			return nil
		}
		return loadErr
	})
	if err != nil {
		return admissionErrorf("could not load paused game %s", pausedGameID)
	}
	if game == nil {
		return admissionErrorf("no paused game found for id %s", pausedGameID)
	}
	if game.Status != store.StatusPaused {
		return admissionErrorf("game %s is not paused", pausedGameID)
	}

	participant := false
	for _, name := range game.Players {
		if name == username {
			participant = true
			break
		}
	}
	if !participant {
		return admissionErrorf("%s is not a participant of the paused game", username)
	}

	s.engine.Restore(&engine.Snapshot{
		Players:       game.Players,
		Monsters:      game.Monsters,
		TurnCompleted: game.TurnCompleted,
	})
	s.resumeGameID = game.ID
	s.resumePlayers = game.Players
	s.paused = true
	log.Printf("session %s: bound paused game %s for resume", s.ID, game.ID)
	return nil
}

func (s *Session) allParticipantsConnected() bool {
	for pid := range s.resumePlayers {
		if _, ok := s.clients[pid]; !ok {
			return false
		}
	}
	return len(s.resumePlayers) > 0
}

// resumeGame lifts the pause once every recorded participant reconnected
// and re-broadcasts the opening state from the restored board.
func (s *Session) resumeGame() {
	stats, err := s.collectStats()
	if err != nil {
		s.fail("could not load player stats")
		return
	}

	s.paused = false
	log.Printf("session %s: resumed game %s", s.ID, s.resumeGameID)
	s.broadcast(StartMessage{
		Type:          MessageStart,
		Players:       s.engine.Players(),
		Stats:         stats,
		Monsters:      s.engine.Monsters(),
		TurnCompleted: s.engine.TurnCompleted(),
	})
}

func (s *Session) handleStart(playerID string) {
	if s.failed || !s.engine.HasPlayer(playerID) {
		return
	}

	if err := s.engine.Start(); err != nil {
		if c, ok := s.clients[playerID]; ok {
			c.Send(ErrorMessage{Type: MessageError, Reason: err.Error()})
		}
		return
	}

	// Count the match for both players before play begins.
	stats := make(map[string]PlayerStats, len(s.userIDs))
	for pid, userID := range s.userIDs {
		var user *store.User
		err := s.withRetry("count game played", func(ctx context.Context) error {
			var addErr error
			user, addErr = s.store.AddGamePlayed(ctx, userID)
			return addErr
		})
		if err != nil {
			s.fail("could not commit game counters")
			return
		}
		username := s.engine.Username(pid)
		stats[username] = PlayerStats{
			Username: username,
			Games:    user.Games,
			Wins:     user.Wins,
			Losses:   user.Losses,
		}
	}

	log.Printf("session %s: game started with %d players", s.ID, s.engine.PlayerCount())
	s.broadcast(StartMessage{
		Type:          MessageStart,
		Players:       s.engine.Players(),
		Stats:         stats,
		Monsters:      s.engine.Monsters(),
		TurnCompleted: s.engine.TurnCompleted(),
	})
}

func (s *Session) handleMove(playerID, monsterID string, dest engine.Position) {
	if s.failed || s.paused {
		return
	}

	result, err := s.engine.Move(playerID, monsterID, dest)
	if err != nil {
		// Illegal moves are dropped without a reply; the sender's board is
		// already correct and will not change.
		log.Printf("session %s: dropped move from %s: %v", s.ID, s.engine.Username(playerID), err)
		return
	}

	s.broadcast(UpdateMessage{
		Type:          MessageUpdate,
		Monsters:      s.engine.Monsters(),
		TurnCompleted: s.engine.TurnCompleted(),
	})

	if result.GameOver != nil {
		s.finishGame(result.GameOver)
	}
}

func (s *Session) handleEndTurn(playerID string) {
	if s.failed || s.paused {
		return
	}

	if _, err := s.engine.EndTurn(playerID); err != nil {
		log.Printf("session %s: dropped end-turn from %s: %v", s.ID, s.engine.Username(playerID), err)
		return
	}

	s.broadcast(UpdateMessage{
		Type:          MessageUpdate,
		Monsters:      s.engine.Monsters(),
		TurnCompleted: s.engine.TurnCompleted(),
	})
}

func (s *Session) handleDisconnect(playerID string) {
	if _, ok := s.clients[playerID]; !ok {
		return
	}
	delete(s.clients, playerID)
	username := s.engine.Username(playerID)

	if s.engine.Over() || s.failed {
		return
	}

	if !s.engine.Started() {
		// Lobby departure: free the seat.
		s.engine.RemovePlayer(playerID)
		delete(s.userIDs, playerID)
		s.broadcast(PlayerJoinedMessage{Type: MessagePlayerJoined, Players: s.engine.Players()})
		return
	}

	s.pauseGame(username)
}

// pauseGame persists the full match state and halts play until the
// disconnected participant resumes. The snapshot id is stable across
// repeated pauses of the same match.
func (s *Session) pauseGame(username string) {
	s.paused = true

	if s.resumeGameID == "" {
		s.resumeGameID = uuid.NewString()
	}
	snap := s.engine.Snapshot()
	s.resumePlayers = snap.Players

	game := &store.PersistedGame{
		ID:            s.resumeGameID,
		Players:       snap.Players,
		Monsters:      snap.Monsters,
		TurnCompleted: snap.TurnCompleted,
		Status:        store.StatusPaused,
		CreatedAt:     time.Now(),
	}
	if err := s.withRetry("persist paused game", func(ctx context.Context) error {
		return s.store.SaveGame(ctx, game)
	}); err != nil {
		s.fail("could not persist the paused game")
		return
	}

	userIDs := make([]string, 0, len(s.userIDs))
	for _, id := range s.userIDs {
		userIDs = append(userIDs, id)
	}
	if err := s.withRetry("link paused game", func(ctx context.Context) error {
		return s.store.SetActiveGame(ctx, s.resumeGameID, userIDs...)
	}); err != nil {
		s.fail("could not persist the paused game")
		return
	}

	log.Printf("session %s: paused game %s after %s disconnected", s.ID, s.resumeGameID, username)
	s.broadcast(GamePausedMessage{Type: MessageGamePaused, Username: username})
}

// finishGame commits the result to both profiles and announces it. The
// engine already made the terminal transition, so this runs at most once
// per session.
func (s *Session) finishGame(result *engine.GameOverResult) {
	winnerUID := s.userIDs[result.WinnerID]
	loserUID := s.userIDs[result.LoserID]

	if err := s.withRetry("commit result", func(ctx context.Context) error {
		return s.store.RecordResult(ctx, winnerUID, loserUID)
	}); err != nil {
		s.fail("could not commit the match result")
		return
	}

	if s.resumeGameID != "" {
		// Best effort: a stale snapshot only blocks its own resume.
		if err := s.withRetry("retire paused game", func(ctx context.Context) error {
			return s.store.FinishGame(ctx, s.resumeGameID)
		}); err != nil {
			log.Printf("session %s: failed to retire paused game %s: %v", s.ID, s.resumeGameID, err)
		}
		if err := s.withRetry("unlink paused game", func(ctx context.Context) error {
			return s.store.ClearActiveGame(ctx, winnerUID, loserUID)
		}); err != nil {
			log.Printf("session %s: failed to unlink paused game: %v", s.ID, err)
		}
	}

	winner := s.engine.Username(result.WinnerID)
	loser := s.engine.Username(result.LoserID)
	log.Printf("session %s: game over, %s beat %s", s.ID, winner, loser)
	s.broadcast(GameOverMessage{Type: MessageGameOver, Winner: winner, Loser: loser})

	// Terminal cleanup: the board is wiped and the resume lock released.
	// The engine stays terminal, so late joins are still refused.
	s.engine.Clear()
	s.resumeGameID = ""
	s.resumePlayers = nil
	s.paused = false
}

// findUser resolves a username to a profile with bounded retries.
func (s *Session) findUser(username string) (*store.User, error) {
	var user *store.User
	err := s.withRetry("load user", func(ctx context.Context) error {
		var findErr error
		user, findErr = s.store.FindOrCreateUser(ctx, username)
		return findErr
	})
	return user, err
}

// collectStats loads fresh counters for every admitted player.
func (s *Session) collectStats() (map[string]PlayerStats, error) {
	stats := make(map[string]PlayerStats, len(s.userIDs))
	for pid := range s.userIDs {
		username := s.engine.Username(pid)
		var user *store.User
		err := s.withRetry("load user stats", func(ctx context.Context) error {
			var getErr error
			user, getErr = s.store.GetUser(ctx, username)
			return getErr
		})
		if err != nil {
			return nil, err
		}
		stats[username] = PlayerStats{
			Username: username,
			Games:    user.Games,
			Wins:     user.Wins,
			Losses:   user.Losses,
		}
	}
	return stats, nil
}

// withRetry runs a store call up to persistAttempts times with backoff.
func (s *Session) withRetry(op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		err = fn(ctx)
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("session %s: %s failed (attempt %d/%d): %v", s.ID, op, attempt, persistAttempts, err)
		if attempt < persistAttempts {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
	}
	return err
}

// fail makes the session terminal after an unrecoverable persistence
// failure: every client learns the reason and is disconnected.
func (s *Session) fail(reason string) {
	log.Printf("session %s: fatal: %s", s.ID, reason)
	s.failed = true
	s.broadcast(ErrorMessage{Type: MessageError, Reason: reason})
	for _, c := range s.clients {
		c.Close(reason)
	}
	s.clients = make(map[string]Sender)
	s.engine.Clear()
}

func (s *Session) broadcast(msg any) {
	s.broadcastExcept("", msg)
}

func (s *Session) broadcastExcept(skipID string, msg any) {
	for pid, c := range s.clients {
		if pid == skipID {
			continue
		}
		if !c.Send(msg) {
			log.Printf("session %s: dropped message to %s", s.ID, s.engine.Username(pid))
		}
	}
}
