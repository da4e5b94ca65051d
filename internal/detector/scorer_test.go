package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/series"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// testSeries builds a series ending at day(len(q)-1) with the given
// quantities.
func testSeries(itemID int64, quantities []int) series.Series {
	points := make([]series.Point, len(quantities))
	for i, q := range quantities {
		points[i] = series.Point{Date: day(i), Quantity: q}
	}
	return series.Series{ItemID: itemID, Anchor: day(len(quantities) - 1), Points: points}
}

func TestMedianAndMAD(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, 4.0, median(x))
	assert.Equal(t, 2.0, mad(x))

	even := []float64{1, 2, 3, 4}
	assert.Equal(t, 2.5, median(even))

	flat := []float64{3, 3, 3, 3, 3}
	assert.Equal(t, 0.0, mad(flat))
}

func TestScoresUsePastOnlyWindow(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	y := []float64{1, 2, 3, 4, 5, 6, 7, 20}
	scores := scorer.Scores(y)

	// The first seven days lack enough history to be evaluable.
	for i := 0; i < 7; i++ {
		assert.Zero(t, scores[i], "day %d should not be evaluable", i)
	}

	// Day 7 is scored against history [1..7]: median 4, MAD 2.
	assert.InDelta(t, 0.6745*(20-4)/2, scores[7], 1e-9)
}

func TestScoresSparseFallbacks(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	t.Run("flat zero history with a spike", func(t *testing.T) {
		y := make([]float64, 15)
		y[14] = 12
		scores := scorer.Scores(y)
		assert.Equal(t, 6.0, scores[14])
	})

	t.Run("flat zero history with a small day", func(t *testing.T) {
		y := make([]float64, 15)
		y[14] = 9
		scores := scorer.Scores(y)
		assert.Zero(t, scores[14])
	})

	t.Run("flat positive history with a 5x day", func(t *testing.T) {
		y := []float64{2, 2, 2, 2, 2, 2, 2, 2, 10}
		scores := scorer.Scores(y)
		assert.Equal(t, 5.0, scores[8])
	})

	t.Run("flat positive history below 5x", func(t *testing.T) {
		y := []float64{2, 2, 2, 2, 2, 2, 2, 2, 9}
		scores := scorer.Scores(y)
		assert.Zero(t, scores[8])
	})
}

func TestSeverityClassification(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	tests := []struct {
		name     string
		score    float64
		quantity int
		want     domain.Severity
	}{
		{"high by score", 5.2, 5, domain.SeverityHigh},
		{"high by quantity floor", 3.2, 30, domain.SeverityHigh},
		{"medium by score", 4.1, 5, domain.SeverityMedium},
		{"medium by quantity floor", 3.2, 15, domain.SeverityMedium},
		{"low", 3.2, 5, domain.SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.severityFor(tt.score, tt.quantity))
		})
	}
}

func TestScanSeriesSkipsShortSeries(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	q := make([]int, 20) // below the 21-point minimum
	q[19] = 50
	assert.Empty(t, scorer.ScanSeries(testSeries(1, q)))
}

func TestScanSeriesSparseSpikeIsHigh(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	// All-zero history with a single day of quantity 12: forced score 6.0.
	q := make([]int, 30)
	q[29] = 12
	results := scorer.ScanSeries(testSeries(1, q))

	require.Len(t, results, 1)
	assert.Equal(t, 6.0, results[0].Score)
	assert.Equal(t, domain.SeverityHigh, results[0].Severity)
	assert.Equal(t, 12, results[0].Quantity)
	assert.Equal(t, day(29).Format("02/01/2006"), results[0].Date)
}

func TestScanSeriesIgnoresOldAndZeroDays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecentDays = 7
	scorer := NewScorer(cfg)

	// Spike at day 21 of 40 is well outside the 7-day recent window.
	q := make([]int, 40)
	q[21] = 40
	results := scorer.ScanSeries(testSeries(1, q))
	assert.Empty(t, results)
}

func TestSortResults(t *testing.T) {
	results := []Result{
		{Severity: domain.SeverityLow, Score: 3.1},
		{Severity: domain.SeverityHigh, Score: 5.5},
		{Severity: domain.SeverityMedium, Score: 4.0},
		{Severity: domain.SeverityHigh, Score: 7.0},
	}
	SortResults(results)

	require.Len(t, results, 4)
	assert.Equal(t, domain.SeverityHigh, results[0].Severity)
	assert.Equal(t, 7.0, results[0].Score)
	assert.Equal(t, domain.SeverityHigh, results[1].Severity)
	assert.Equal(t, 5.5, results[1].Score)
	assert.Equal(t, domain.SeverityMedium, results[2].Severity)
	assert.Equal(t, domain.SeverityLow, results[3].Severity)
}
