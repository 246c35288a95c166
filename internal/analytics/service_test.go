package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-mandi/internal/db"
)

type fakeQuerier struct {
	salesCalls int
	topCalls   int
	sales      []db.SalesDay
	top        []db.TopProduct
}

func (f *fakeQuerier) SalesDaily(context.Context, time.Time, time.Time) ([]db.SalesDay, error) {
	f.salesCalls++
	return f.sales, nil
}

func (f *fakeQuerier) TopProducts(context.Context, time.Time, time.Time, int32) ([]db.TopProduct, error) {
	f.topCalls++
	return f.top, nil
}

func newTestService(t *testing.T, q *fakeQuerier) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{Q: q, R: client, TTL: time.Minute, DefaultDays: 7}
}

func TestSalesDailyCachesResult(t *testing.T) {
	q := &fakeQuerier{sales: []db.SalesDay{{
		Day:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Orders:  3,
		Units:   72,
		Revenue: decimal.RequireFromString("6480.00"),
	}}}
	svc := newTestService(t, q)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	first, err := svc.SalesDaily(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, q.salesCalls)

	second, err := svc.SalesDaily(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 1, q.salesCalls)
	require.Equal(t, int64(3), second[0].Orders)
	require.True(t, second[0].Revenue.Equal(first[0].Revenue))
}

func TestTopProductsClampsLimit(t *testing.T) {
	q := &fakeQuerier{top: []db.TopProduct{{
		ProductID: uuid.New(),
		Name:      "Basmati Rice 1kg",
		Units:     120,
		Revenue:   decimal.RequireFromString("10800.00"),
	}}}
	svc := newTestService(t, q)

	from, to := svc.DefaultRange()
	rows, err := svc.TopProducts(context.Background(), from, to, -5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, q.topCalls)
}

func TestDefaultRangeSpansConfiguredDays(t *testing.T) {
	svc := &Service{DefaultDays: 7, Now: func() time.Time {
		return time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	}}
	from, to := svc.DefaultRange()
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), to)
	require.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), from)
}
