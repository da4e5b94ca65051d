// internal/service/anomaly_service.go
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/warewolf/demand-engine/internal/cache"
	"github.com/warewolf/demand-engine/internal/detector"
	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/notify"
	"github.com/warewolf/demand-engine/internal/repository"
	"github.com/warewolf/demand-engine/internal/series"
)

// ScanSummary reports what one scan run did.
type ScanSummary struct {
	Detected int `json:"detected"`
	Created  int `json:"created"`
	Notified int `json:"notified"`
}

// AnomalyService runs the demand anomaly scan end to end: detect, persist,
// notify, and serve the persisted feed.
type AnomalyService struct {
	sales     repository.SaleRepository
	anomalies repository.AnomalyRepository
	notifier  *notify.Notifier
	cache     cache.AnomalyCache
}

func NewAnomalyService(
	sales repository.SaleRepository,
	anomalies repository.AnomalyRepository,
	notifier *notify.Notifier,
	cacheImpl cache.AnomalyCache,
) *AnomalyService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnomalyCache()
	}
	return &AnomalyService{
		sales:     sales,
		anomalies: anomalies,
		notifier:  notifier,
		cache:     cacheImpl,
	}
}

// RunScan detects anomalies over the configured lookback window, upserts
// them by (item, date), and optionally notifies elevated users about the
// newly created ones. Running it twice over the same data creates nothing
// the second time.
func (s *AnomalyService) RunScan(ctx context.Context, cfg detector.Config, doNotify bool) (*ScanSummary, []detector.Result, error) {
	builder := series.NewBuilder(s.sales)
	results, err := detector.New(builder, cfg).Scan(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("scan failed: %w", err)
	}

	createdRecords, err := s.persist(ctx, results)
	if err != nil {
		return nil, nil, err
	}

	if len(createdRecords) > 0 {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("anomaly scan: cache invalidation failed")
		}
	}

	notified := 0
	if doNotify && s.notifier != nil {
		notified, err = s.notifier.NotifyCreated(ctx, createdRecords)
		if err != nil {
			// The scan itself succeeded; a notification failure degrades
			// rather than fails the run.
			log.Error().Err(err).Msg("anomaly scan: notification fan-out failed")
		}
	}

	summary := &ScanSummary{
		Detected: len(results),
		Created:  len(createdRecords),
		Notified: notified,
	}
	log.Info().
		Int("detected", summary.Detected).
		Int("created", summary.Created).
		Int("notified", summary.Notified).
		Msg("anomaly scan completed")

	return summary, results, nil
}

// persist upserts every result and returns the newly created records.
// Updates are applied in place and not separately surfaced.
func (s *AnomalyService) persist(ctx context.Context, results []detector.Result) ([]domain.DemandAnomaly, error) {
	var createdRecords []domain.DemandAnomaly
	for _, r := range results {
		record := domain.DemandAnomaly{
			ItemID:   r.ItemID,
			Date:     r.When,
			Quantity: r.Quantity,
			Score:    r.Score,
			Severity: r.Severity,
		}

		created, err := s.anomalies.Upsert(ctx, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to persist anomaly: %w", err)
		}
		if created {
			createdRecords = append(createdRecords, record)
		}
	}
	return createdRecords, nil
}

// Recent returns the newest persisted anomalies for dashboards.
func (s *AnomalyService) Recent(ctx context.Context, limit int) ([]domain.DemandAnomaly, error) {
	if anomalies, ok, err := s.cache.GetRecent(ctx, limit); err == nil && ok {
		return anomalies, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("anomalies: cache get failed")
	}

	anomalies, err := s.anomalies.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRecent(ctx, limit, anomalies); err != nil {
		log.Warn().Err(err).Msg("anomalies: cache set failed")
	}

	return anomalies, nil
}
