package service_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warewolf/demand-engine/internal/detector"
	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/notify"
	"github.com/warewolf/demand-engine/internal/service"
)

type fakeSales struct {
	totals []domain.SaleTotal
}

func (f *fakeSales) LatestSaleDate(ctx context.Context) (time.Time, bool, error) {
	if len(f.totals) == 0 {
		return time.Time{}, false, nil
	}
	latest := f.totals[0].Date
	for _, t := range f.totals {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest, true, nil
}

func (f *fakeSales) DailySaleTotals(ctx context.Context, itemID int64, from, to time.Time) ([]domain.SaleTotal, error) {
	var out []domain.SaleTotal
	for _, t := range f.totals {
		if itemID != 0 && t.ItemID != itemID {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// memAnomalies is an in-memory anomaly store keyed by (item, date), the
// same uniqueness the real table enforces.
type memAnomalies struct {
	rows   map[string]domain.DemandAnomaly
	nextID int64
}

func newMemAnomalies() *memAnomalies {
	return &memAnomalies{rows: make(map[string]domain.DemandAnomaly)}
}

func (m *memAnomalies) key(a *domain.DemandAnomaly) string {
	return fmt.Sprintf("%d|%s", a.ItemID, a.Date.Format("2006-01-02"))
}

func (m *memAnomalies) Upsert(ctx context.Context, a *domain.DemandAnomaly) (bool, error) {
	k := m.key(a)
	existing, exists := m.rows[k]
	if exists {
		a.ID = existing.ID
		m.rows[k] = *a
		return false, nil
	}
	m.nextID++
	a.ID = m.nextID
	m.rows[k] = *a
	return true, nil
}

func (m *memAnomalies) Recent(ctx context.Context, limit int) ([]domain.DemandAnomaly, error) {
	out := make([]domain.DemandAnomaly, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeItems struct{}

func (fakeItems) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return &domain.Item{ID: id, Name: fmt.Sprintf("Item %d", id)}, nil
}

func (fakeItems) GetItemsByID(ctx context.Context, ids []int64) (map[int64]*domain.Item, error) {
	out := make(map[int64]*domain.Item, len(ids))
	for _, id := range ids {
		out[id] = &domain.Item{ID: id, Name: fmt.Sprintf("Item %d", id)}
	}
	return out, nil
}

type fakeNotifications struct {
	recipients []domain.User
	created    []domain.Notification
}

func (f *fakeNotifications) ElevatedRecipients(ctx context.Context) ([]domain.User, error) {
	return f.recipients, nil
}

func (f *fakeNotifications) BulkCreate(ctx context.Context, notifications []domain.Notification) error {
	f.created = append(f.created, notifications...)
	return nil
}

// spikySales builds 40 days of steady low demand for one item with a
// single large spike near the end, enough to trip the scan exactly once.
func spikySales() *fakeSales {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	cycle := []int{1, 2, 3, 2}
	totals := make([]domain.SaleTotal, 0, 40)
	for i := 0; i < 40; i++ {
		qty := cycle[i%4]
		if i == 38 {
			qty = 30
		}
		totals = append(totals, domain.SaleTotal{
			ItemID:   1,
			Date:     start.AddDate(0, 0, i),
			Quantity: qty,
		})
	}
	return &fakeSales{totals: totals}
}

func scanConfig() detector.Config {
	return detector.Config{LookbackDays: 39}
}

func TestRunScanDetectsAndPersists(t *testing.T) {
	store := newMemAnomalies()
	notifications := &fakeNotifications{recipients: []domain.User{
		{ID: 10, Role: "manager"},
		{ID: 11, Role: "admin"},
	}}
	notifier := notify.NewNotifier(fakeItems{}, notifications, 0)
	svc := service.NewAnomalyService(spikySales(), store, notifier, nil)

	summary, results, err := svc.RunScan(context.Background(), scanConfig(), true)
	require.NoError(t, err)

	require.Equal(t, 1, summary.Detected)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 2, summary.Notified)

	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].ItemID)
	assert.Equal(t, 30, results[0].Quantity)
	assert.Equal(t, domain.SeverityHigh, results[0].Severity)

	require.Len(t, notifications.created, 2)
	assert.Contains(t, notifications.created[0].Message, "Item 1")
	assert.Contains(t, notifications.created[0].Message, "30 units sold")
}

func TestRunScanIsIdempotent(t *testing.T) {
	sales := spikySales()
	store := newMemAnomalies()
	svc := service.NewAnomalyService(sales, store, nil, nil)

	first, _, err := svc.RunScan(context.Background(), scanConfig(), false)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	// Same data, second run: detected again, created nothing.
	second, _, err := svc.RunScan(context.Background(), scanConfig(), false)
	require.NoError(t, err)
	assert.Equal(t, first.Detected, second.Detected)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Notified)
	assert.Len(t, store.rows, 1)
}

func TestRunScanWithNoSales(t *testing.T) {
	svc := service.NewAnomalyService(&fakeSales{}, newMemAnomalies(), nil, nil)

	summary, results, err := svc.RunScan(context.Background(), scanConfig(), true)
	require.NoError(t, err)
	assert.Zero(t, summary.Detected)
	assert.Zero(t, summary.Created)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRecentReadsThroughStore(t *testing.T) {
	store := newMemAnomalies()
	for i := 1; i <= 3; i++ {
		a := domain.DemandAnomaly{
			ItemID:   int64(i),
			Date:     time.Date(2026, time.March, i, 0, 0, 0, 0, time.UTC),
			Quantity: 10 * i,
			Score:    float64(i),
			Severity: domain.SeverityHigh,
		}
		_, err := store.Upsert(context.Background(), &a)
		require.NoError(t, err)
	}
	svc := service.NewAnomalyService(&fakeSales{}, store, nil, nil)

	recent, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
