// internal/series/series.go
package series

import (
	"context"
	"time"

	"github.com/warewolf/demand-engine/internal/repository"
)

// Point is one day of demand for an item. Days with no recorded sale
// carry Quantity 0.
type Point struct {
	Date     time.Time
	Quantity int
}

// Series is a contiguous daily demand series for one item. Points spans
// Anchor-daysBack through Anchor inclusive, so a lookback of N days always
// yields N+1 points with no calendar gaps.
type Series struct {
	ItemID int64
	// Anchor is the latest SALE date present in the data, not wall-clock
	// today. Anchoring to the data keeps scans reproducible against
	// historical fixtures.
	Anchor time.Time
	Points []Point
}

// Quantities returns the demand values as floats, in date order.
func (s Series) Quantities() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = float64(p.Quantity)
	}
	return out
}

// Builder turns raw per-item sale totals into gap-filled daily series.
type Builder struct {
	sales repository.SaleRepository
}

func NewBuilder(sales repository.SaleRepository) *Builder {
	return &Builder{sales: sales}
}

// BuildAll builds one series per item that has at least one sale in the
// window. Returns an empty slice when no sale transactions exist at all.
func (b *Builder) BuildAll(ctx context.Context, daysBack int) ([]Series, error) {
	latest, ok, err := b.sales.LatestSaleDate(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Series{}, nil
	}

	anchor := truncateDay(latest)
	from := anchor.AddDate(0, 0, -daysBack)

	totals, err := b.sales.DailySaleTotals(ctx, 0, from, anchor)
	if err != nil {
		return nil, err
	}

	byItem := make(map[int64]map[time.Time]int)
	order := make([]int64, 0)
	for _, t := range totals {
		day := truncateDay(t.Date)
		if _, seen := byItem[t.ItemID]; !seen {
			byItem[t.ItemID] = make(map[time.Time]int)
			order = append(order, t.ItemID)
		}
		byItem[t.ItemID][day] += t.Quantity
	}

	result := make([]Series, 0, len(order))
	for _, itemID := range order {
		result = append(result, fill(itemID, anchor, from, byItem[itemID]))
	}
	return result, nil
}

// BuildItem builds the series for a single item. ok is false when the item
// has no sales in the window (or no sales exist at all).
func (b *Builder) BuildItem(ctx context.Context, itemID int64, daysBack int) (Series, bool, error) {
	latest, ok, err := b.sales.LatestSaleDate(ctx)
	if err != nil {
		return Series{}, false, err
	}
	if !ok {
		return Series{}, false, nil
	}

	anchor := truncateDay(latest)
	from := anchor.AddDate(0, 0, -daysBack)

	totals, err := b.sales.DailySaleTotals(ctx, itemID, from, anchor)
	if err != nil {
		return Series{}, false, err
	}
	if len(totals) == 0 {
		return Series{}, false, nil
	}

	byDay := make(map[time.Time]int, len(totals))
	for _, t := range totals {
		byDay[truncateDay(t.Date)] += t.Quantity
	}
	return fill(itemID, anchor, from, byDay), true, nil
}

// fill expands sparse per-day totals into a contiguous daily series over
// [from, anchor], zero-filling missing days.
func fill(itemID int64, anchor, from time.Time, byDay map[time.Time]int) Series {
	n := int(anchor.Sub(from).Hours()/24) + 1
	points := make([]Point, 0, n)
	for d := from; !d.After(anchor); d = d.AddDate(0, 0, 1) {
		points = append(points, Point{Date: d, Quantity: byDay[d]})
	}
	return Series{ItemID: itemID, Anchor: anchor, Points: points}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
