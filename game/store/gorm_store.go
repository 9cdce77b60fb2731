package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wricardo/monster-duel/game/engine"
)

// userRecord is the GORM mapping for user profiles.
type userRecord struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Games        int       `gorm:"default:0"`
	Wins         int       `gorm:"default:0"`
	Losses       int       `gorm:"default:0"`
	ActiveGameID string    `gorm:"index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (userRecord) TableName() string { return "duel_users" }

// gameRecord is the GORM mapping for persisted game snapshots. The board
// maps are stored as JSON columns.
type gameRecord struct {
	ID            string                     `gorm:"primaryKey;type:uuid"`
	Players       map[string]string          `gorm:"serializer:json"`
	Monsters      map[string]*engine.Monster `gorm:"serializer:json"`
	TurnCompleted map[string]bool            `gorm:"serializer:json"`
	Status        string                     `gorm:"type:varchar(16);check:status IN ('paused','finished')"`
	CreatedAt     time.Time                  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time                  `gorm:"autoUpdateTime"`
}

func (gameRecord) TableName() string { return "duel_games" }

// GormStore implements Store on a Postgres database through GORM.
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore connects to Postgres with the given DSN and migrates the
// schema.
func OpenGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing GORM handle and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&userRecord{}, &gameRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormStore{db: db}, nil
}

func toUser(rec *userRecord) *User {
	return &User{
		ID:           rec.ID,
		Username:     rec.Username,
		Games:        rec.Games,
		Wins:         rec.Wins,
		Losses:       rec.Losses,
		ActiveGameID: rec.ActiveGameID,
	}
}

// FindOrCreateUser resolves a username, creating a fresh profile on first sight.
func (s *GormStore) FindOrCreateUser(ctx context.Context, username string) (*User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error
	if err == nil {
		return toUser(&rec), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	rec = userRecord{ID: uuid.NewString(), Username: username}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return toUser(&rec), nil
}

// GetUser returns the profile for a username, or ErrUserNotFound.
func (s *GormStore) GetUser(ctx context.Context, username string) (*User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	return toUser(&rec), nil
}

// AddGamePlayed increments the user's games counter.
func (s *GormStore) AddGamePlayed(ctx context.Context, userID string) (*User, error) {
	tx := s.db.WithContext(ctx).Model(&userRecord{}).
		Where("id = ?", userID).
		UpdateColumn("games", gorm.Expr("games + 1"))
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to increment games for %s: %w", userID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user %s: %w", userID, err)
	}
	return toUser(&rec), nil
}

// RecordResult commits a finished match to both profiles in one transaction.
func (s *GormStore) RecordResult(ctx context.Context, winnerID, loserID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRecord{}).
			Where("id = ?", winnerID).
			UpdateColumn("wins", gorm.Expr("wins + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		res = tx.Model(&userRecord{}).
			Where("id = ?", loserID).
			UpdateColumn("losses", gorm.Expr("losses + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// SetActiveGame links a paused game id into each profile.
func (s *GormStore) SetActiveGame(ctx context.Context, gameID string, userIDs ...string) error {
	res := s.db.WithContext(ctx).Model(&userRecord{}).
		Where("id IN ?", userIDs).
		UpdateColumn("active_game_id", gameID)
	if res.Error != nil {
		return fmt.Errorf("failed to link active game: %w", res.Error)
	}
	if res.RowsAffected != int64(len(userIDs)) {
		return ErrUserNotFound
	}
	return nil
}

// ClearActiveGame removes the paused-game reference from each profile.
func (s *GormStore) ClearActiveGame(ctx context.Context, userIDs ...string) error {
	err := s.db.WithContext(ctx).Model(&userRecord{}).
		Where("id IN ?", userIDs).
		UpdateColumn("active_game_id", "").Error
	if err != nil {
		return fmt.Errorf("failed to clear active game: %w", err)
	}
	return nil
}

// SaveGame creates or updates a persisted game record.
func (s *GormStore) SaveGame(ctx context.Context, game *PersistedGame) error {
	rec := gameRecord{
		ID:            game.ID,
		Players:       game.Players,
		Monsters:      game.Monsters,
		TurnCompleted: game.TurnCompleted,
		Status:        string(game.Status),
		CreatedAt:     game.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save game %s: %w", game.ID, err)
	}
	return nil
}

// LoadGame returns a persisted game by id, or ErrGameNotFound.
func (s *GormStore) LoadGame(ctx context.Context, id string) (*PersistedGame, error) {
	var rec gameRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}

	return &PersistedGame{
		ID:            rec.ID,
		Players:       rec.Players,
		Monsters:      rec.Monsters,
		TurnCompleted: rec.TurnCompleted,
		Status:        GameStatus(rec.Status),
		CreatedAt:     rec.CreatedAt,
	}, nil
}

// FinishGame marks a persisted game as finished.
func (s *GormStore) FinishGame(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&gameRecord{}).
		Where("id = ?", id).
		UpdateColumn("status", string(StatusFinished))
	if res.Error != nil {
		return fmt.Errorf("failed to finish game %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}
