package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"review-service/configs"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Store struct{ Base *gorm.DB }

func New(base *gorm.DB) *Store { return &Store{Base: base} }

// Open connects to the primary with retries and registers replicas for reads.
func Open(cfg configs.DBConfig) (*Store, error) {
	base, err := openWithRetry(cfg.DSN(), 8, time.Second)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if len(cfg.Replicas) > 0 {
		var replicas []gorm.Dialector
		for _, dsn := range cfg.Replicas {
			replicas = append(replicas, postgres.Open(dsn))
		}
		if err := base.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("dbresolver: %w", err)
		}
	}

	sqlDB, err := base.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &Store{Base: base}, nil
}

// Config is shared by every dialector the service opens.
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
}

func (s *Store) DB(ctx context.Context) *gorm.DB { return s.Base.WithContext(ctx) }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.Base.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.Base.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openWithRetry(dsn string, attempts int, sleep time.Duration) (*gorm.DB, error) {
	var last error
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(postgres.Open(dsn), Config())
		if err == nil {
			s, e := db.DB()
			if e == nil {
				if e = pingWithTimeout(s, 2*time.Second); e == nil {
					return db, nil
				}
			}
			last = e
		} else {
			last = err
		}
		time.Sleep(sleep)
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
	return nil, last
}

func pingWithTimeout(sqlDB *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
