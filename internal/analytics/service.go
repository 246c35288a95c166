// Package analytics serves aggregated sales figures for the admin dashboard.
// Results are cached in Redis because the underlying queries scan the full
// order history.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-mandi/internal/db"
)

// Querier defines the database access required for analytics.
type Querier interface {
	SalesDaily(ctx context.Context, from, to time.Time) ([]db.SalesDay, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]db.TopProduct, error)
}

// Service provides cached access to sales aggregates.
type Service struct {
	Q           Querier
	R           *redis.Client
	TTL         time.Duration
	DefaultDays int
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) defaultDays() int {
	if s == nil || s.DefaultDays <= 0 {
		return 30
	}
	return s.DefaultDays
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// DefaultRange returns the window used when the caller supplies no bounds:
// the trailing DefaultDays days up to the start of tomorrow.
func (s *Service) DefaultRange() (time.Time, time.Time) {
	now := s.now().UTC()
	to := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -s.defaultDays())
	return from, to
}

// SalesDaily returns per-day order counts and revenue in [from, to).
func (s *Service) SalesDaily(ctx context.Context, from, to time.Time) ([]db.SalesDay, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	key := cacheKey("analytics", "sales", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached []db.SalesDay
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Q.SalesDaily(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, rows)
	return rows, nil
}

// TopProducts ranks products by revenue in [from, to).
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]db.TopProduct, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := cacheKey("analytics", "top", from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	var cached []db.TopProduct
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.Q.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, rows)
	return rows, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dest any) bool {
	if s.R == nil {
		return false
	}
	raw, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, raw, s.TTL).Err()
}
