// internal/forecast/model.go
package forecast

import "math"

// seasonalTrend is a least-squares linear trend with additive day-of-week
// offsets. Confidence bounds come from the residual spread. Weekly
// seasonality only; no daily or yearly components.
type seasonalTrend struct {
	intercept float64
	slope     float64
	weekday   [7]float64
	spread    float64 // half-width of the confidence band
}

// fitSeasonalTrend fits the model to a daily series. y[i] is demand on day
// i; weekdayOf maps a day index to its weekday (0=Sunday..6=Saturday).
func fitSeasonalTrend(y []float64, weekdayOf func(i int) int) *seasonalTrend {
	m := &seasonalTrend{}
	n := len(y)
	if n == 0 {
		return m
	}
	if n == 1 {
		m.intercept = y[0]
		return m
	}

	// Trend: ordinary least squares of y on the day index.
	var sumT, sumY, sumTT, sumTY float64
	for i, v := range y {
		t := float64(i)
		sumT += t
		sumY += v
		sumTT += t * t
		sumTY += t * v
	}
	fn := float64(n)
	denom := fn*sumTT - sumT*sumT
	if denom != 0 {
		m.slope = (fn*sumTY - sumT*sumY) / denom
	}
	m.intercept = (sumY - m.slope*sumT) / fn

	// Weekly seasonality: mean detrended residual per weekday.
	var wsum, wcount [7]float64
	for i, v := range y {
		wd := weekdayOf(i)
		wsum[wd] += v - (m.intercept + m.slope*float64(i))
		wcount[wd]++
	}
	for wd := range wsum {
		if wcount[wd] > 0 {
			m.weekday[wd] = wsum[wd] / wcount[wd]
		}
	}

	// Residual spread after removing trend and seasonality; 1.96 standard
	// deviations approximates a 95% band under normal residuals.
	var ss float64
	for i, v := range y {
		r := v - m.predict(i, weekdayOf(i))
		ss += r * r
	}
	m.spread = 1.96 * math.Sqrt(ss/fn)

	return m
}

func (m *seasonalTrend) predict(i, weekday int) float64 {
	return m.intercept + m.slope*float64(i) + m.weekday[weekday]
}

// predictBounds returns the point estimate with its confidence band.
func (m *seasonalTrend) predictBounds(i, weekday int) (yhat, lower, upper float64) {
	yhat = m.predict(i, weekday)
	return yhat, yhat - m.spread, yhat + m.spread
}
