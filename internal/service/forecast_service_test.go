package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/forecast"
	"github.com/warewolf/demand-engine/internal/service"
)

func TestForecastItem(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	totals := make([]domain.SaleTotal, 30)
	for i := range totals {
		totals[i] = domain.SaleTotal{ItemID: 1, Date: start.AddDate(0, 0, i), Quantity: 6}
	}
	sales := &fakeSales{totals: totals}

	svc := service.NewForecastService(sales, fakeItems{}, forecast.DefaultConfig(), time.Second)

	result, err := svc.ForecastItem(context.Background(), 1, 14)
	require.NoError(t, err)

	assert.Len(t, result.History, 181) // 180-day lookback, zero-filled
	require.Len(t, result.Forecast, 14)
	assert.Empty(t, result.Metrics.Note)
	assert.GreaterOrEqual(t, result.Recommendation.AvgDailyDemand, 0.0)

	// Dates anchor to the latest sale, not to the wall clock.
	anchor := start.AddDate(0, 0, 29)
	assert.Equal(t, anchor.AddDate(0, 0, 1).Format("02/01/2006"), result.Forecast[0].Date)
}

func TestForecastItemWithoutSales(t *testing.T) {
	svc := service.NewForecastService(&fakeSales{}, fakeItems{}, forecast.DefaultConfig(), time.Second)

	result, err := svc.ForecastItem(context.Background(), 7, 0)
	require.NoError(t, err)

	// No demand history at all: empty forecast with a note, and a
	// rule-based recommendation.
	assert.Empty(t, result.History)
	assert.Empty(t, result.Forecast)
	assert.Equal(t, "Not enough history (<7 days)", result.Metrics.Note)
	assert.Zero(t, result.Recommendation.AvgDailyDemand)
}
