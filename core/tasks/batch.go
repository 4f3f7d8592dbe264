package tasks

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schallwerk/model"
)

// Supplier lead times. Clothing goes to print earlier than paper products,
// so its deadline sits further ahead of the event date.
const (
	clothingLeadTime = 21 * 24 * time.Hour
	paperLeadTime    = 10 * 24 * time.Hour
)

// UrgencyFor buckets a deadline relative to now.
func UrgencyFor(deadline, now time.Time) model.Urgency {
	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		return model.UrgencyOverdue
	case remaining <= 3*24*time.Hour:
		return model.UrgencyUrgent
	case remaining <= 7*24*time.Hour:
		return model.UrgencySoon
	default:
		return model.UrgencyNormal
	}
}

// DeadlineFor derives a task deadline from the event date and the task kind.
func DeadlineFor(kind model.TaskKind, eventDate time.Time) time.Time {
	if kind == model.TaskClothing {
		return eventDate.Add(-clothingLeadTime)
	}
	return eventDate.Add(-paperLeadTime)
}

// BatchOrders groups Shopify orders into one task per (event, kind) pair.
// eventDates supplies the event date used for the deadline; orders for
// unknown events are skipped. Batches come back sorted by deadline so the
// most pressing task lists first.
func BatchOrders(orders []*model.ShopifyOrder, eventDates map[string]time.Time, now time.Time) []*model.Task {
	type key struct {
		eventID string
		kind    model.TaskKind
	}
	grouped := make(map[key][]string)
	for _, o := range orders {
		if _, ok := eventDates[o.EventID]; !ok {
			continue
		}
		k := key{eventID: o.EventID, kind: o.Kind}
		grouped[k] = append(grouped[k], o.ID)
	}

	batches := make([]*model.Task, 0, len(grouped))
	for k, ids := range grouped {
		sort.Strings(ids)
		deadline := DeadlineFor(k.kind, eventDates[k.eventID])
		batches = append(batches, &model.Task{
			EventID:  k.eventID,
			Kind:     k.kind,
			OrderIDs: ids,
			Deadline: deadline,
			Urgency:  UrgencyFor(deadline, now),
		})
	}

	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].Deadline.Equal(batches[j].Deadline) {
			return batches[i].Deadline.Before(batches[j].Deadline)
		}
		return batches[i].EventID < batches[j].EventID
	})
	return batches
}

// NewGoID mints a supplier order identifier. GO-IDs are stamped onto a task
// when an admin completes it and are referenced on supplier paperwork.
func NewGoID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "GO-" + raw[:10]
}
