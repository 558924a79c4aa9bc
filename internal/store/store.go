package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"meal-export-backend/internal/model"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// ErrDisabled is returned by stores that do not persist anything.
var ErrDisabled = errors.New("fetch history storage is disabled")

// Store defines the interface for all database operations.
type Store interface {
	RecordFetch(ctx context.Context, entry *model.FetchLog) error
	RecentFetches(ctx context.Context, limit int) ([]model.FetchLog, error)
	Enabled() bool
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// RecordFetch inserts a single audit entry.
func (s *gormStore) RecordFetch(ctx context.Context, entry *model.FetchLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record fetch for %s-%s: %w", entry.Year, entry.Month, err)
	}
	return nil
}

// RecentFetches returns the newest entries first.
func (s *gormStore) RecentFetches(ctx context.Context, limit int) ([]model.FetchLog, error) {
	var logs []model.FetchLog
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(ClampLimit(limit)).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return logs, nil
}

func (s *gormStore) Enabled() bool { return true }

// nopStore is used when no database is configured.
type nopStore struct{}

// NewNopStore returns a store that drops every entry.
func NewNopStore() Store {
	return nopStore{}
}

func (nopStore) RecordFetch(context.Context, *model.FetchLog) error { return nil }

func (nopStore) RecentFetches(context.Context, int) ([]model.FetchLog, error) {
	return nil, ErrDisabled
}

func (nopStore) Enabled() bool { return false }

// ClampLimit applies the default and maximum history page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
