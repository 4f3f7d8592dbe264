package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schallwerk/apperr"
	"schallwerk/model"
)

func TestCreateEventFromBooking(t *testing.T) {
	events := newFakeEventRepo()
	bookings := &fakeBookings{bookings: map[string]*model.Booking{
		"bk1": {ID: "bk1", SchoolName: "GS Nord", Start: time.Now().Add(48 * time.Hour), Confirmed: true},
		"bk2": {ID: "bk2", SchoolName: "GS Sued", Confirmed: false},
	}}
	svc := NewAdminService(events, newFakeSongRepo(), newFakeTaskRepo(), newFakeOrderRepo(), &fakeShop{}, bookings)
	ctx := context.Background()

	event, code, err := svc.CreateEventFromBooking(ctx, "bk1", "schulsong")
	require.NoError(t, err)
	assert.Equal(t, "GS Nord", event.SchoolName)
	assert.Equal(t, "bk1", event.SimplybookID)
	assert.Equal(t, model.StagePending, event.PipelineStage)
	assert.Len(t, code, 8)

	// The minted code logs the teacher in.
	byCode, err := events.GetByTeacherCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, event.ID, byCode.ID)

	// Importing the same booking again conflicts.
	_, _, err = svc.CreateEventFromBooking(ctx, "bk1", "schulsong")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Unconfirmed bookings cannot become events.
	_, _, err = svc.CreateEventFromBooking(ctx, "bk2", "schulsong")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestListEventsAggregatesApproval(t *testing.T) {
	events := newFakeEventRepo(&model.Event{ID: "evt1"})
	songs := newFakeSongRepo(
		&model.Song{ID: "sng1", EventID: "evt1", FinalMP3Key: "a.mp3", ApprovalStatus: model.ApprovalApproved},
		&model.Song{ID: "sng2", EventID: "evt1", FinalMP3Key: "b.mp3", ApprovalStatus: model.ApprovalPending},
	)
	svc := NewAdminService(events, songs, newFakeTaskRepo(), newFakeOrderRepo(), &fakeShop{}, &fakeBookings{})

	overviews, err := svc.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, model.AdminApprovalReady, overviews[0].ApprovalStatus)
}

func TestPublishEventRequiresFullApproval(t *testing.T) {
	events := newFakeEventRepo(&model.Event{ID: "evt1"})
	songs := newFakeSongRepo(
		&model.Song{ID: "sng1", EventID: "evt1", FinalMP3Key: "a.mp3", ApprovalStatus: model.ApprovalApproved},
		&model.Song{ID: "sng2", EventID: "evt1", FinalMP3Key: "b.mp3", ApprovalStatus: model.ApprovalPending},
	)
	svc := NewAdminService(events, songs, newFakeTaskRepo(), newFakeOrderRepo(), &fakeShop{}, &fakeBookings{})
	ctx := context.Background()

	err := svc.PublishEvent(ctx, "evt1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Not all tracks are approved yet", apperr.Message(err))

	require.NoError(t, songs.SetApproval(ctx, "sng2", model.ApprovalApproved, nil))
	require.NoError(t, svc.PublishEvent(ctx, "evt1"))

	event, _ := events.GetByID(ctx, "evt1")
	assert.True(t, event.Published)
}

func TestUpdatePortalStatusForwardOnly(t *testing.T) {
	events := newFakeEventRepo(&model.Event{ID: "evt1", PortalStatus: model.PortalClassesAdded})
	svc := NewAdminService(events, newFakeSongRepo(), newFakeTaskRepo(), newFakeOrderRepo(), &fakeShop{}, &fakeBookings{})
	ctx := context.Background()

	require.NoError(t, svc.UpdatePortalStatus(ctx, "evt1", model.PortalReady))

	err := svc.UpdatePortalStatus(ctx, "evt1", model.PortalPendingSetup)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	err = svc.UpdatePortalStatus(ctx, "evt1", "bogus")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	// Same-status update is a no-op, not an error.
	require.NoError(t, svc.UpdatePortalStatus(ctx, "evt1", model.PortalReady))
}

func TestRefreshTasksBatchesPerEventAndKind(t *testing.T) {
	eventDate := time.Now().Add(30 * 24 * time.Hour)
	events := newFakeEventRepo(&model.Event{ID: "evt1", Date: eventDate})
	shop := &fakeShop{orders: []*model.ShopifyOrder{
		{ID: "o1", EventID: "evt1", Kind: model.TaskClothing},
		{ID: "o2", EventID: "evt1", Kind: model.TaskClothing},
		{ID: "o3", EventID: "evt1", Kind: model.TaskPaper},
		{ID: "o4", EventID: "ghost", Kind: model.TaskClothing},
	}}
	taskRepo := newFakeTaskRepo()
	svc := NewAdminService(events, newFakeSongRepo(), taskRepo, newFakeOrderRepo(), shop, &fakeBookings{})
	ctx := context.Background()

	created, err := svc.RefreshTasks(ctx)
	require.NoError(t, err)
	// Two orders collapse into one clothing task; the paper order gets its
	// own; the order for an unknown event is skipped.
	require.Len(t, created, 2)

	byKind := map[model.TaskKind]*model.Task{}
	for _, task := range created {
		byKind[task.Kind] = task
	}
	require.Contains(t, byKind, model.TaskClothing)
	require.Contains(t, byKind, model.TaskPaper)
	assert.Len(t, byKind[model.TaskClothing].OrderIDs, 2)
	// Clothing lead time is longer, so its deadline comes first.
	assert.True(t, byKind[model.TaskClothing].Deadline.Before(byKind[model.TaskPaper].Deadline))

	// A second refresh reuses the open tasks instead of duplicating them.
	again, err := svc.RefreshTasks(ctx)
	require.NoError(t, err)
	require.Len(t, again, 2)
	open, _ := taskRepo.ListOpen(ctx)
	assert.Len(t, open, 2)
}

func TestCompleteTask(t *testing.T) {
	events := newFakeEventRepo(&model.Event{ID: "evt1"})
	taskRepo := newFakeTaskRepo()
	orders := newFakeOrderRepo()
	ctx := context.Background()

	_, err := orders.Upsert(ctx, &model.ClothingOrder{EventID: "evt1", Sizes: map[string]int{"M": 2}})
	require.NoError(t, err)
	task, err := taskRepo.Create(ctx, &model.Task{EventID: "evt1", Kind: model.TaskClothing})
	require.NoError(t, err)

	svc := NewAdminService(events, newFakeSongRepo(), taskRepo, orders, &fakeShop{}, &fakeBookings{})

	goID, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(goID, "GO-"))
	assert.Len(t, goID, 13)
	assert.Equal(t, strings.ToUpper(goID), goID)

	// The GO-ID lands on the event's clothing order too.
	order, err := orders.GetByEvent(ctx, "evt1")
	require.NoError(t, err)
	assert.Equal(t, goID, order.GoID)

	_, err = svc.CompleteTask(ctx, task.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
