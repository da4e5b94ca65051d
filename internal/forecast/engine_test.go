package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/forecast"
	"github.com/warewolf/demand-engine/internal/series"
)

// start is a Sunday, so day index i falls on weekday i%7.
var start = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func demandSeries(quantities []int) series.Series {
	points := make([]series.Point, len(quantities))
	for i, q := range quantities {
		points[i] = series.Point{Date: start.AddDate(0, 0, i), Quantity: q}
	}
	return series.Series{ItemID: 1, Anchor: points[len(points)-1].Date, Points: points}
}

func testItem() *domain.Item {
	return &domain.Item{
		ID:           1,
		Name:         "Widget",
		Quantity:     100,
		ReorderLevel: 10,
		SafetyStock:  5,
		LeadTimeDays: 7,
	}
}

func TestRunConstantDemand(t *testing.T) {
	q := make([]int, 30)
	for i := range q {
		q[i] = 5
	}
	sr := demandSeries(q)

	result := forecast.NewEngine(forecast.DefaultConfig()).Run(testItem(), sr, 14, sr.Anchor)

	assert.Len(t, result.History, 30)
	require.Len(t, result.Forecast, 14)

	// A flat series backtests perfectly and forecasts flat.
	assert.Equal(t, "seasonal-trend", result.Metrics.Model)
	assert.InDelta(t, 0, result.Metrics.MAE, 1e-9)
	assert.InDelta(t, 0, result.Metrics.MAPE, 1e-9)
	assert.Empty(t, result.Metrics.Note)
	for _, p := range result.Forecast {
		assert.InDelta(t, 5, p.Value, 1e-9)
	}

	// Forecast dates continue from the day after the anchor.
	assert.Equal(t, sr.Anchor.AddDate(0, 0, 1).Format("02/01/2006"), result.Forecast[0].Date)
	assert.Equal(t, sr.Anchor.AddDate(0, 0, 14).Format("02/01/2006"), result.Forecast[13].Date)

	assert.InDelta(t, 5, result.Recommendation.AvgDailyDemand, 1e-9)
	assert.True(t, result.Recommendation.ShowStockout)
}

func TestRunClipsNegativeForecasts(t *testing.T) {
	// Steeply declining demand: the fitted trend goes below zero inside the
	// horizon.
	q := make([]int, 40)
	for i := range q {
		v := 80 - 2*i
		if v < 0 {
			v = 0
		}
		q[i] = v
	}
	sr := demandSeries(q)

	result := forecast.NewEngine(forecast.DefaultConfig()).Run(testItem(), sr, 30, sr.Anchor)

	require.Len(t, result.Forecast, 30)
	for _, p := range result.Forecast {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.GreaterOrEqual(t, p.Upper, 0.0)
		assert.LessOrEqual(t, p.Lower, p.Upper)
	}
	assert.GreaterOrEqual(t, result.Recommendation.ReorderQty, 0)
}

func TestRunLearnsWeeklyPattern(t *testing.T) {
	// Eight full weeks: quiet weekdays, busy Saturdays.
	q := make([]int, 56)
	for i := range q {
		q[i] = 2
		if i%7 == 6 { // Saturday
			q[i] = 12
		}
	}
	sr := demandSeries(q)

	result := forecast.NewEngine(forecast.DefaultConfig()).Run(testItem(), sr, 14, sr.Anchor)
	require.Len(t, result.Forecast, 14)

	// The first forecast day is a Sunday, so Saturdays fall at offsets 6
	// and 13 within the horizon.
	saturday := result.Forecast[6].Value
	tuesday := result.Forecast[2].Value
	assert.Greater(t, saturday, tuesday+5)
}

func TestRunWithTooLittleHistory(t *testing.T) {
	sr := demandSeries([]int{2, 4, 6, 4, 4})

	result := forecast.NewEngine(forecast.DefaultConfig()).Run(testItem(), sr, 30, sr.Anchor)

	assert.NotNil(t, result.Forecast)
	assert.Empty(t, result.Forecast)
	assert.Equal(t, "Not enough history (<7 days)", result.Metrics.Note)
	assert.Zero(t, result.Metrics.MAE)

	// The recommendation still comes from the observed average.
	assert.InDelta(t, 4, result.Recommendation.AvgDailyDemand, 1e-9)
	assert.Len(t, result.History, 5)
}

func TestDegraded(t *testing.T) {
	q := make([]int, 10)
	for i := range q {
		q[i] = 3
	}
	sr := demandSeries(q)

	result := forecast.Degraded(testItem(), sr, sr.Anchor)

	assert.Empty(t, result.Forecast)
	assert.Equal(t, "Forecast timed out", result.Metrics.Note)
	assert.Len(t, result.History, 10)
	assert.InDelta(t, 3, result.Recommendation.AvgDailyDemand, 1e-9)
}
