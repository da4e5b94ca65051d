// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/warewolf/demand-engine/internal/domain"
	"github.com/warewolf/demand-engine/internal/repository"
)

// DefaultCap bounds how many items a single scan may notify about.
const DefaultCap = 25

// Notifier fans newly detected anomalies out as in-app notifications to
// users with elevated roles. It only decides which anomalies are worth a
// notification and what the message says; delivery is the notification
// table's consumer's problem.
type Notifier struct {
	items         repository.ItemRepository
	notifications repository.NotificationRepository
	cap           int
}

func NewNotifier(items repository.ItemRepository, notifications repository.NotificationRepository, cap int) *Notifier {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Notifier{items: items, notifications: notifications, cap: cap}
}

// NotifyCreated builds one notification per (recipient, item) for the
// newly created anomalies. Only MEDIUM and HIGH severities qualify, each
// item is collapsed to its single worst anomaly, and the notified set is
// capped. Returns the number of notification rows written.
func (n *Notifier) NotifyCreated(ctx context.Context, created []domain.DemandAnomaly) (int, error) {
	kept := collapsePerItem(created)
	if len(kept) == 0 {
		return 0, nil
	}
	if len(kept) > n.cap {
		kept = kept[:n.cap]
	}

	itemIDs := make([]int64, len(kept))
	for i, a := range kept {
		itemIDs[i] = a.ItemID
	}
	items, err := n.items.GetItemsByID(ctx, itemIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve item names: %w", err)
	}

	recipients, err := n.notifications.ElevatedRecipients(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		log.Info().Msg("anomaly notify: no elevated recipients, skipping fan-out")
		return 0, nil
	}

	notifications := make([]domain.Notification, 0, len(kept)*len(recipients))
	for _, a := range kept {
		name := a.ItemName
		if item, ok := items[a.ItemID]; ok {
			name = item.Name
		}
		message := Message(name, a)
		for _, user := range recipients {
			notifications = append(notifications, domain.Notification{
				UserID:  user.ID,
				Message: message,
			})
		}
	}

	if err := n.notifications.BulkCreate(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", err)
	}

	return len(notifications), nil
}

// Message formats the notification text for one anomaly.
func Message(itemName string, a domain.DemandAnomaly) string {
	return fmt.Sprintf("Unusual demand for %s on %s: %d units sold (score %.2f)",
		itemName, a.Date.Format("02/01/2006"), a.Quantity, a.Score)
}

// collapsePerItem keeps one anomaly per item: the highest severity,
// tie-broken by higher score. LOW anomalies never notify.
func collapsePerItem(anomalies []domain.DemandAnomaly) []domain.DemandAnomaly {
	best := make(map[int64]domain.DemandAnomaly)
	for _, a := range anomalies {
		if a.Severity != domain.SeverityMedium && a.Severity != domain.SeverityHigh {
			continue
		}
		cur, seen := best[a.ItemID]
		if !seen || worse(a, cur) {
			best[a.ItemID] = a
		}
	}

	kept := make([]domain.DemandAnomaly, 0, len(best))
	for _, a := range best {
		kept = append(kept, a)
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Severity.Rank() != kept[j].Severity.Rank() {
			return kept[i].Severity.Rank() < kept[j].Severity.Rank()
		}
		return kept[i].Score > kept[j].Score
	})
	return kept
}

func worse(a, b domain.DemandAnomaly) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() < b.Severity.Rank()
	}
	return a.Score > b.Score
}
