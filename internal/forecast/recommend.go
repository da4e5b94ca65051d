// internal/forecast/recommend.go
package forecast

import (
	"math"
	"time"

	"github.com/warewolf/demand-engine/internal/domain"
)

// reviewPeriodDays is the replenishment review cycle the reorder quantity
// covers on top of lead time.
const reviewPeriodDays = 30

// Recommendation is the reorder advice derived from forecasted demand.
// Transient like the forecast itself; never persisted.
type Recommendation struct {
	AvgDailyDemand    float64 `json:"avg_daily_demand"`
	LeadTimeDays      int     `json:"lead_time_days"`
	ReorderQty        int     `json:"reorder_qty"`
	ReorderBy         string  `json:"reorder_by"`                  // DD/MM/YYYY
	ExpectedStockout  string  `json:"expected_stockout,omitempty"` // DD/MM/YYYY, empty when demand is zero
	ShowStockout      bool    `json:"show_stockout"`
	Risk              string  `json:"risk"` // Low | Medium | High
	Reason            string  `json:"reason"`
	LeadTimeNeedUpper float64 `json:"lead_time_need_upper"`
}

// Recommend converts average forecasted daily demand into a reorder
// quantity, timing, and risk level for an item. avgUpper is the average
// upper-bound demand; nil falls back to the point estimate. asOf anchors
// the reorder-by and stockout dates.
//
// Pure function of its inputs; reorder_qty is never negative.
func Recommend(item *domain.Item, avgDaily float64, avgUpper *float64, asOf time.Time) Recommendation {
	leadTime := item.LeadTimeDays
	safety := float64(item.SafetyStock)

	// Expected demand through lead time plus a review period, buffered by
	// safety stock.
	needed := avgDaily*float64(leadTime+reviewPeriodDays) + safety
	reorderQty := int(math.Round(needed - float64(item.Quantity)))
	if reorderQty < 0 {
		reorderQty = 0
	}

	// Out of stock: order at least enough to reach reorder level plus
	// safety stock.
	if item.Quantity <= 0 {
		minTarget := maxInt(item.ReorderLevel, 1) + item.SafetyStock
		reorderQty = maxInt(reorderQty, minTarget)
	} else if item.Quantity <= item.ReorderLevel {
		// Low stock: top up to reorder level plus safety stock.
		minTarget := item.ReorderLevel + item.SafetyStock - item.Quantity
		reorderQty = maxInt(reorderQty, minTarget)
	}

	upper := avgDaily
	if avgUpper != nil {
		upper = *avgUpper
	}

	// Risk uses the forecast's uncertainty: compare stock against the
	// upper-bound demand over lead time.
	leadTimeNeedUpper := upper*float64(leadTime) + safety
	risk := "Low"
	switch {
	case item.Quantity <= 0:
		risk = "High"
	case float64(item.Quantity) < leadTimeNeedUpper:
		risk = "High"
	case float64(item.Quantity) < avgDaily*float64(leadTime)+safety:
		risk = "Medium"
	}

	var expectedStockout string
	if avgDaily > 0 {
		daysLeft := int(float64(item.Quantity) / avgDaily)
		expectedStockout = asOf.AddDate(0, 0, daysLeft).Format(dateLayout)
	}
	reorderBy := asOf.AddDate(0, 0, maxInt(leadTime-2, 0)).Format(dateLayout)

	reason := "Forecast-based recommendation"
	switch {
	case item.Quantity <= 0:
		reason = "Out of stock (min reorder to reorder level)"
	case item.Quantity <= item.ReorderLevel:
		reason = "Below reorder level (min top-up)"
	case avgDaily == 0:
		reason = "No recent demand (rule-based)"
	}

	return Recommendation{
		AvgDailyDemand:    round2(avgDaily),
		LeadTimeDays:      leadTime,
		ReorderQty:        reorderQty,
		ReorderBy:         reorderBy,
		ExpectedStockout:  expectedStockout,
		ShowStockout:      avgDaily*float64(leadTime) >= 1,
		Risk:              risk,
		Reason:            reason,
		LeadTimeNeedUpper: round2(leadTimeNeedUpper),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
