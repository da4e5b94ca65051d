// internal/service/forecast_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/warewolf/demand-engine/internal/forecast"
	"github.com/warewolf/demand-engine/internal/repository"
	"github.com/warewolf/demand-engine/internal/series"
)

// ForecastService produces per-item demand forecasts with reorder
// recommendations. Results are transient; nothing is written back.
type ForecastService struct {
	sales   repository.SaleRepository
	items   repository.ItemRepository
	engine  *forecast.Engine
	cfg     forecast.Config
	timeout time.Duration
}

func NewForecastService(
	sales repository.SaleRepository,
	items repository.ItemRepository,
	cfg forecast.Config,
	timeout time.Duration,
) *ForecastService {
	cfg = cfg.Normalize()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ForecastService{
		sales:   sales,
		items:   items,
		engine:  forecast.NewEngine(cfg),
		cfg:     cfg,
		timeout: timeout,
	}
}

// ForecastItem builds the item's demand series and runs the forecast
// engine, bounded by the per-item timeout. On timeout it returns a
// degraded result (history only, note in metrics) rather than hanging or
// failing.
func (s *ForecastService) ForecastItem(ctx context.Context, itemID int64, horizon int) (*forecast.Result, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	builder := series.NewBuilder(s.sales)
	demand, hasSales, err := builder.BuildItem(ctx, itemID, s.cfg.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to build demand series: %w", err)
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if hasSales {
		asOf = demand.Anchor
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan forecast.Result, 1)
	go func() {
		done <- s.engine.Run(item, demand, horizon, asOf)
	}()

	select {
	case result := <-done:
		return &result, nil
	case <-ctx.Done():
		log.Warn().Int64("item_id", itemID).Dur("timeout", s.timeout).
			Msg("forecast: model fit timed out, returning degraded result")
		result := forecast.Degraded(item, demand, asOf)
		return &result, nil
	}
}
