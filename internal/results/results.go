package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/event"
)

const DefaultLimit = 20

// Win is one finished first_to game.
type Win struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Winner      string    `gorm:"size:128;not null" json:"winner"`
	Score       int       `gorm:"not null" json:"score"`
	TargetScore int       `gorm:"not null" json:"targetScore"`
	WonAt       time.Time `gorm:"index;not null" json:"wonAt"`
}

func (Win) TableName() string { return "quiz_wins" }

// Lister is what the HTTP layer needs.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]Win, error)
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// Open connects through pgx and migrates the wins table.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	sqlDB := stdlib.OpenDB(*cfg)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Host, err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&Win{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("results store ready", zap.String("host", cfg.Host), zap.String("database", cfg.Database))
	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) Record(ctx context.Context, w Win) error {
	if err := s.db.WithContext(ctx).Create(&w).Error; err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Win, error) {
	var wins []Win
	err := s.db.WithContext(ctx).Order("won_at desc").Limit(clampLimit(limit)).Find(&wins).Error
	if err != nil {
		return nil, fmt.Errorf("recent wins: %w", err)
	}
	return wins, nil
}

// Subscribe records every game-won event published on the bus.
func (s *Store) Subscribe(bus *event.Bus) {
	bus.Subscribe(string(engine.EvtGameWon), func(ctx context.Context, e event.Event) error {
		w, err := WinFromEvent(e, s.now())
		if err != nil {
			return err
		}
		return s.Record(ctx, w)
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func WinFromEvent(e event.Event, at time.Time) (Win, error) {
	ev, ok := e.(engine.Event)
	if !ok || ev.Type != engine.EvtGameWon {
		return Win{}, errors.New("results: not a game-won event")
	}
	return Win{
		Winner:      ev.Name,
		Score:       ev.Score,
		TargetScore: ev.Target,
		WonAt:       at.UTC(),
	}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, 200)
}
