// internal/detector/scorer.go
package detector

import (
	"sort"
	"time"

	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/series"
)

// madScale rescales MAD so the score is comparable to a standard z-score
// under normality.
const madScale = 0.6745

// Config carries the scan parameters. Zero values are replaced by
// DefaultConfig values in Normalize.
type Config struct {
	LookbackDays  int     // demand window to build per item
	RecentDays    int     // only the most recent M days can produce candidates
	MinPoints     int     // series shorter than this are skipped entirely
	RollingWindow int     // trailing past-only window per day
	MinHistory    int     // minimum valid past points to score a day
	ZLow          float64 // candidate threshold
	ZMed          float64 // MEDIUM severity threshold
	ZHigh         float64 // HIGH severity threshold
	Workers       int     // per-item fan-out bound
}

func DefaultConfig() Config {
	return Config{
		LookbackDays:  120,
		RecentDays:    14,
		MinPoints:     21,
		RollingWindow: 14,
		MinHistory:    7,
		ZLow:          3.0,
		ZMed:          4.0,
		ZHigh:         5.0,
		Workers:       4,
	}
}

// Normalize fills unset fields from the defaults.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.LookbackDays <= 0 {
		c.LookbackDays = def.LookbackDays
	}
	if c.RecentDays <= 0 {
		c.RecentDays = def.RecentDays
	}
	if c.MinPoints <= 0 {
		c.MinPoints = def.MinPoints
	}
	if c.RollingWindow <= 0 {
		c.RollingWindow = def.RollingWindow
	}
	if c.MinHistory <= 0 {
		c.MinHistory = def.MinHistory
	}
	if c.ZLow <= 0 {
		c.ZLow = def.ZLow
	}
	if c.ZMed <= 0 {
		c.ZMed = def.ZMed
	}
	if c.ZHigh <= 0 {
		c.ZHigh = def.ZHigh
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	return c
}

// Result is one flagged demand day.
type Result struct {
	ItemID   int64           `json:"item_id"`
	Date     string          `json:"date"` // DD/MM/YYYY
	When     time.Time       `json:"-"`
	Quantity int             `json:"quantity"`
	Score    float64         `json:"score"`
	Severity domain.Severity `json:"severity"`
}

// Scorer computes rolling robust z-scores over a demand series.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.Normalize()}
}

// Scores returns one robust z-score per day. Each day is scored against a
// trailing window of past days only; days without enough history score 0.
func (s *Scorer) Scores(y []float64) []float64 {
	scores := make([]float64, len(y))
	for i := range y {
		left := i - s.cfg.RollingWindow
		if left < 0 {
			left = 0
		}
		hist := y[left:i] // past only, day i excluded

		if len(hist) < s.cfg.MinHistory {
			continue // not yet evaluable, score stays 0
		}

		med := median(hist)
		m := mad(hist)

		if m == 0 {
			// Sparse-demand fallback: a flat baseline gives no scale, so
			// force a synthetic score when today's volume is clearly out
			// of line with it.
			switch {
			case med == 0 && y[i] >= 10:
				scores[i] = 6.0
			case med > 0 && y[i] >= med*5:
				scores[i] = 5.0
			}
			continue
		}

		scores[i] = madScale * (y[i] - med) / m
	}
	return scores
}

// ScanSeries scores one item's series and returns its candidate anomalies:
// positive-demand days within the recent window whose score clears the low
// threshold. Series shorter than MinPoints are skipped.
func (s *Scorer) ScanSeries(sr series.Series) []Result {
	if len(sr.Points) < s.cfg.MinPoints {
		return nil
	}

	scores := s.Scores(sr.Quantities())
	startRecent := sr.Anchor.AddDate(0, 0, -s.cfg.RecentDays)

	var results []Result
	for i, p := range sr.Points {
		if p.Date.Before(startRecent) || p.Quantity <= 0 || scores[i] < s.cfg.ZLow {
			continue
		}
		results = append(results, Result{
			ItemID:   sr.ItemID,
			Date:     p.Date.Format("02/01/2006"),
			When:     p.Date,
			Quantity: p.Quantity,
			Score:    scores[i],
			Severity: s.severityFor(scores[i], p.Quantity),
		})
	}
	return results
}

// severityFor classifies a candidate. Evaluated in order, first match wins;
// quantity floors (30/15) can promote a day past its score tier.
func (s *Scorer) severityFor(score float64, quantity int) domain.Severity {
	switch {
	case score >= s.cfg.ZHigh || quantity >= 30:
		return domain.SeverityHigh
	case score >= s.cfg.ZMed || quantity >= 15:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// SortResults orders results HIGH before MEDIUM before LOW, descending by
// score within equal severity. Downstream consumers truncate to a prefix,
// so this ordering decides what survives truncation.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Severity.Rank() != results[j].Severity.Rank() {
			return results[i].Severity.Rank() < results[j].Severity.Rank()
		}
		return results[i].Score > results[j].Score
	})
}

func median(x []float64) float64 {
	c := append([]float64(nil), x...)
	sort.Float64s(c)
	n := len(c)
	if n%2 == 1 {
		return c[n/2]
	}
	return (c[n/2-1] + c[n/2]) / 2
}

// mad is the Median Absolute Deviation: the median of absolute deviations
// from the median.
func mad(x []float64) float64 {
	med := median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		d := v - med
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	return median(dev)
}
