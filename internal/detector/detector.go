// internal/detector/detector.go
package detector

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/warewolf/demand-engine/internal/series"
)

// Detector runs the full anomaly scan: build all demand series, score each
// item independently, join and order the results globally.
type Detector struct {
	builder *series.Builder
	cfg     Config
}

func New(builder *series.Builder, cfg Config) *Detector {
	return &Detector{builder: builder, cfg: cfg.Normalize()}
}

// Scan scores every item with sales in the lookback window. Items are
// independent, so they fan out across a bounded worker group and join
// before the global sort. Returns an empty slice when there is no sales
// data at all.
func (d *Detector) Scan(ctx context.Context) ([]Result, error) {
	all, err := d.builder.BuildAll(ctx, d.cfg.LookbackDays)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return []Result{}, nil
	}

	scorer := NewScorer(d.cfg)

	var (
		mu      sync.Mutex
		results []Result
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for _, sr := range all {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found := scorer.ScanSeries(sr)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortResults(results)
	if results == nil {
		results = []Result{}
	}
	return results, nil
}
