// internal/domain/models.go
package domain

import "time"

// Severity classifies how abnormal a demand day is.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Rank orders severities for sorting: HIGH before MEDIUM before LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 9
}

// Item is an inventory item as the engine reads it. Only the fields the
// recommendation logic needs are mapped.
type Item struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	SKU          string    `json:"sku" db:"sku"`
	Quantity     int       `json:"quantity" db:"quantity"`
	ReorderLevel int       `json:"reorder_level" db:"reorder_level"`
	SafetyStock  int       `json:"safety_stock" db:"safety_stock"`
	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SaleTotal is one aggregation row: total SALE quantity for an item on a date.
type SaleTotal struct {
	ItemID   int64     `db:"item_id"`
	Date     time.Time `db:"sale_date"`
	Quantity int       `db:"total_qty"`
}

// DemandAnomaly is a flagged demand day, uniquely keyed by (item_id, date).
type DemandAnomaly struct {
	ID        int64     `json:"id" db:"id"`
	ItemID    int64     `json:"item_id" db:"item_id"`
	ItemName  string    `json:"item_name" db:"item_name"`
	Date      time.Time `json:"date" db:"date"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Score     float64   `json:"score" db:"score"`
	Severity  Severity  `json:"severity" db:"severity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User is a notification recipient.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Role     string `db:"role"`
}

// Notification is an in-app message for a single user. Delivery beyond the
// notifications table is someone else's job.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
