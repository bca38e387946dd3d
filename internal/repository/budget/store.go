// Package budget persists embedding token usage in the key-value store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hukukai/lexcore/internal/db"
	"github.com/hukukai/lexcore/internal/domain"
	"github.com/hukukai/lexcore/internal/domain/usage"
)

// Counter retention. A window's key outlives the window by one more window,
// so a restart just after midnight still sees yesterday's total.
const (
	DailyRetention   = 48 * time.Hour
	MonthlyRetention = 62 * 24 * time.Hour
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	AddToCounter(ctx context.Context, key string, delta int64, retention time.Duration) (int64, error)
}

// Store keeps one counter per provider and UTC window.
type Store struct {
	kv kv
}

// New creates a budget store.
func New(s kv) *Store {
	return &Store{kv: s}
}

// Key returns the counter key, e.g. lexcore:budget:openai:day:2025-06-15.
func Key(provider string, period usage.Period, window time.Time) string {
	layout := "2006-01-02"
	if period == usage.PeriodMonth {
		layout = "2006-01"
	}
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, provider, period, window.UTC().Format(layout))
}

// Add increments the window counter. Retention is set only on the first
// write of a window.
func (s *Store) Add(ctx context.Context, provider string, period usage.Period, window time.Time, tokens int64) error {
	key := Key(provider, period, window)
	if _, err := s.kv.AddToCounter(ctx, key, tokens, retention(period)); err != nil {
		return fmt.Errorf("budget add %s: %w", key, err)
	}
	return nil
}

// Load returns the window counter, 0 when it was never written.
func (s *Store) Load(ctx context.Context, provider string, period usage.Period, window time.Time) (int64, error) {
	key := Key(provider, period, window)
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("budget load %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget load %s: corrupt counter %q: %w", key, data, err)
	}
	return val, nil
}

func retention(p usage.Period) time.Duration {
	if p == usage.PeriodMonth {
		return MonthlyRetention
	}
	return DailyRetention
}
