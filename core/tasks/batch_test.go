package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schallwerk/model"
)

func TestUrgencyFor(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, model.UrgencyOverdue, UrgencyFor(now.Add(-time.Hour), now))
	assert.Equal(t, model.UrgencyUrgent, UrgencyFor(now.Add(2*24*time.Hour), now))
	assert.Equal(t, model.UrgencyUrgent, UrgencyFor(now.Add(3*24*time.Hour), now))
	assert.Equal(t, model.UrgencySoon, UrgencyFor(now.Add(5*24*time.Hour), now))
	assert.Equal(t, model.UrgencyNormal, UrgencyFor(now.Add(14*24*time.Hour), now))
}

func TestBatchOrders(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	eventDates := map[string]time.Time{
		"evt1": now.Add(30 * 24 * time.Hour),
		"evt2": now.Add(22 * 24 * time.Hour),
	}
	orders := []*model.ShopifyOrder{
		{ID: "ord3", EventID: "evt1", Kind: model.TaskClothing},
		{ID: "ord1", EventID: "evt1", Kind: model.TaskClothing},
		{ID: "ord2", EventID: "evt1", Kind: model.TaskPaper},
		{ID: "ord4", EventID: "evt2", Kind: model.TaskClothing},
		{ID: "ord5", EventID: "evtUnknown", Kind: model.TaskPaper},
	}

	batches := BatchOrders(orders, eventDates, now)
	require.Len(t, batches, 3)

	// evt2 clothing has the nearest deadline (22d - 21d lead = tomorrow).
	assert.Equal(t, "evt2", batches[0].EventID)
	assert.Equal(t, model.TaskClothing, batches[0].Kind)
	assert.Equal(t, model.UrgencyUrgent, batches[0].Urgency)

	// evt1 clothing groups both clothing orders, sorted.
	assert.Equal(t, "evt1", batches[1].EventID)
	assert.Equal(t, []string{"ord1", "ord3"}, batches[1].OrderIDs)

	// Orders for unknown events are dropped, not batched.
	for _, b := range batches {
		assert.NotEqual(t, "evtUnknown", b.EventID)
	}
}

func TestDeadlineFor(t *testing.T) {
	eventDate := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, eventDate.Add(-21*24*time.Hour), DeadlineFor(model.TaskClothing, eventDate))
	assert.Equal(t, eventDate.Add(-10*24*time.Hour), DeadlineFor(model.TaskPaper, eventDate))
}

func TestNewGoID(t *testing.T) {
	id := NewGoID()
	assert.True(t, strings.HasPrefix(id, "GO-"))
	assert.Len(t, id, 13)
	assert.NotEqual(t, id, NewGoID())
}
