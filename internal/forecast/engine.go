// internal/forecast/engine.go
package forecast

import (
	"math"
	"time"

	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/series"
)

const (
	// modelName identifies the forecasting model in the metrics payload.
	modelName = "seasonal-trend"

	// dateLayout is the DD/MM/YYYY format used in every payload date.
	dateLayout = "02/01/2006"
)

// Config carries the forecast parameters.
type Config struct {
	LookbackDays int // history window to build per item
	HorizonDays  int // days to forecast past the anchor
	BacktestDays int // trailing holdout reserved for accuracy metrics
	MinHistory   int // below this, return an empty forecast with a note
}

func DefaultConfig() Config {
	return Config{
		LookbackDays: 180,
		HorizonDays:  30,
		BacktestDays: 14,
		MinHistory:   7,
	}
}

func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.LookbackDays <= 0 {
		c.LookbackDays = def.LookbackDays
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.BacktestDays <= 0 {
		c.BacktestDays = def.BacktestDays
	}
	if c.MinHistory <= 0 {
		c.MinHistory = def.MinHistory
	}
	return c
}

// HistoryPoint is one observed demand day.
type HistoryPoint struct {
	Date     string  `json:"ds"` // DD/MM/YYYY
	Quantity float64 `json:"y"`
}

// Point is one forecast day with its confidence bounds. All three values
// are clipped to be non-negative, demand cannot go below zero.
type Point struct {
	Date  string  `json:"ds"` // DD/MM/YYYY
	Value float64 `json:"yhat"`
	Lower float64 `json:"yhat_lower"`
	Upper float64 `json:"yhat_upper"`
}

// Metrics reports backtest accuracy, or a note when the forecast could not
// be fitted.
type Metrics struct {
	Model string  `json:"model"`
	MAE   float64 `json:"mae,omitempty"`
	MAPE  float64 `json:"mape,omitempty"`
	Note  string  `json:"note,omitempty"`
}

// Result is the full forecast payload. It is produced fresh per request
// and owned entirely by the caller; nothing here is persisted.
type Result struct {
	History        []HistoryPoint `json:"history"`
	Forecast       []Point        `json:"forecast"`
	Metrics        Metrics        `json:"metrics"`
	Recommendation Recommendation `json:"recommendation"`
}

// Engine fits a per-item demand forecast and derives reorder advice.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.Normalize()}
}

// Run forecasts HorizonDays of demand for an item from its demand series.
// asOf anchors the recommendation dates; callers pass the series anchor so
// results are reproducible against historical data.
//
// With fewer than MinHistory days of history the forecast is empty and the
// metrics carry a note, but a recommendation is still produced from
// whatever average demand is available. Run never fails.
func (e *Engine) Run(item *domain.Item, sr series.Series, horizon int, asOf time.Time) Result {
	if horizon <= 0 {
		horizon = e.cfg.HorizonDays
	}

	y := sr.Quantities()
	history := make([]HistoryPoint, len(sr.Points))
	for i, p := range sr.Points {
		history[i] = HistoryPoint{Date: p.Date.Format(dateLayout), Quantity: float64(p.Quantity)}
	}

	if len(y) < e.cfg.MinHistory {
		avg := 0.0
		if len(y) > 0 {
			avg = mean(y)
		}
		return Result{
			History:        history,
			Forecast:       []Point{},
			Metrics:        Metrics{Model: modelName, Note: "Not enough history (<7 days)"},
			Recommendation: Recommend(item, avg, nil, asOf),
		}
	}

	weekdayAt := func(i int) int {
		return int(sr.Points[0].Date.AddDate(0, 0, i).Weekday())
	}

	// Backtest: hold out the trailing days, fit on the rest, measure
	// prediction error on the holdout.
	split := len(y) - e.cfg.BacktestDays
	if split < 1 {
		split = 1
	}
	trained := fitSeasonalTrend(y[:split], weekdayAt)

	var mae, mape float64
	holdout := len(y) - split
	for i := split; i < len(y); i++ {
		yhat := math.Max(trained.predict(i, weekdayAt(i)), 0)
		err := math.Abs(y[i] - yhat)
		mae += err
		mape += err / math.Max(y[i], 1) // denominator floored at 1
	}
	mae /= float64(holdout)
	mape /= float64(holdout)

	// Refit over the full history and extend past the anchor.
	full := fitSeasonalTrend(y, weekdayAt)
	forecast := make([]Point, horizon)
	var sumValue, sumUpper float64
	for h := 0; h < horizon; h++ {
		i := len(y) + h
		yhat, lower, upper := full.predictBounds(i, weekdayAt(i))
		yhat = math.Max(yhat, 0)
		lower = math.Max(lower, 0)
		upper = math.Max(upper, 0)

		forecast[h] = Point{
			Date:  sr.Anchor.AddDate(0, 0, h+1).Format(dateLayout),
			Value: yhat,
			Lower: lower,
			Upper: upper,
		}
		sumValue += yhat
		sumUpper += upper
	}

	avgDaily := sumValue / float64(horizon)
	avgUpper := sumUpper / float64(horizon)

	return Result{
		History:        history,
		Forecast:       forecast,
		Metrics:        Metrics{Model: modelName, MAE: mae, MAPE: mape},
		Recommendation: Recommend(item, avgDaily, &avgUpper, asOf),
	}
}

// Degraded returns a valid result with no forecast, used when the model
// fit could not complete in time. The recommendation falls back to the
// observed average demand.
func Degraded(item *domain.Item, sr series.Series, asOf time.Time) Result {
	history := make([]HistoryPoint, len(sr.Points))
	avg := 0.0
	if len(sr.Points) > 0 {
		y := sr.Quantities()
		avg = mean(y)
		for i, p := range sr.Points {
			history[i] = HistoryPoint{Date: p.Date.Format(dateLayout), Quantity: float64(p.Quantity)}
		}
	}
	return Result{
		History:        history,
		Forecast:       []Point{},
		Metrics:        Metrics{Model: modelName, Note: "Forecast timed out"},
		Recommendation: Recommend(item, avg, nil, asOf),
	}
}

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}
