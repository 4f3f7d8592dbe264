package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"schallwerk/apperr"
	"schallwerk/core/pipeline"
	"schallwerk/core/tasks"
	"schallwerk/logger"
	"schallwerk/model"
	"schallwerk/repository"
)

// AdminService implements the back-office operations: event setup from
// bookings, aggregated approval status, publishing, and supplier task
// handling.
type AdminService struct {
	events   repository.EventRepository
	songs    repository.SongRepository
	taskRepo repository.TaskRepository
	orders   repository.OrderRepository

	shop     OrderSource
	bookings BookingSource

	now func() time.Time
}

// NewAdminService wires an AdminService.
func NewAdminService(
	events repository.EventRepository,
	songs repository.SongRepository,
	taskRepo repository.TaskRepository,
	orders repository.OrderRepository,
	shop OrderSource,
	bookings BookingSource,
) *AdminService {
	return &AdminService{
		events:   events,
		songs:    songs,
		taskRepo: taskRepo,
		orders:   orders,
		shop:     shop,
		bookings: bookings,
		now:      time.Now,
	}
}

// EventOverview is one row of the admin dashboard.
type EventOverview struct {
	*model.Event
	ApprovalStatus model.AdminApprovalStatus `json:"approvalStatus"`
}

// ListEvents returns every event with its aggregated approval status.
func (s *AdminService) ListEvents(ctx context.Context) ([]*EventOverview, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	overviews := make([]*EventOverview, 0, len(events))
	for _, event := range events {
		songs, err := s.songs.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, &EventOverview{
			Event:          event,
			ApprovalStatus: pipeline.AggregateApproval(songs),
		})
	}
	return overviews, nil
}

// ListBookings returns the upcoming SimplyBook reservations that can be
// turned into events.
func (s *AdminService) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.ListUpcomingBookings(ctx)
}

// CreateEventFromBooking materializes a SimplyBook booking as a portal event
// and mints the access code the school's teacher logs in with.
func (s *AdminService) CreateEventFromBooking(ctx context.Context, bookingID, eventType string) (*model.Event, string, error) {
	booking, err := s.bookings.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if !booking.Confirmed {
		return nil, "", apperr.E(apperr.KindInvalid, "Booking is not confirmed yet")
	}

	// Guard against importing the same booking twice.
	if _, err := s.events.GetBySimplybookID(ctx, booking.ID); err == nil {
		return nil, "", apperr.E(apperr.KindConflict, "Booking was already imported")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, "", err
	}

	teacherCode := uuid.NewString()[:8]
	event, err := s.events.Create(ctx, &model.Event{
		SchoolName:   booking.SchoolName,
		Date:         booking.Start,
		Type:         eventType,
		SimplybookID: booking.ID,
	}, teacherCode)
	if err != nil {
		return nil, "", err
	}
	logger.Info("[CreateEventFromBooking] event created",
		logger.String("event", event.ID),
		logger.String("booking", booking.ID))
	return event, teacherCode, nil
}

// ReleaseSchulsong marks the schulsong as released for teacher approval.
func (s *AdminService) ReleaseSchulsong(ctx context.Context, eventID string) error {
	song, err := s.songs.GetSchulsong(ctx, eventID)
	if err != nil {
		return err
	}
	if !song.HasFinal() {
		return apperr.E(apperr.KindInvalid, "Schulsong has no final file yet")
	}
	return s.songs.SetAdminApproved(ctx, song.ID, true)
}

// PublishEvent flips the parent-facing published flag. Publishing requires
// the aggregate approval to be complete.
func (s *AdminService) PublishEvent(ctx context.Context, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	songs, err := s.songs.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if pipeline.AggregateApproval(songs) != model.AdminApprovalDone {
		return apperr.E(apperr.KindConflict, "Not all tracks are approved yet")
	}
	return s.events.SetPublished(ctx, event.ID, true)
}

// UpdatePortalStatus moves a booking's setup progress forward. The portal
// status follows the same forward-only discipline as the pipeline stage.
func (s *AdminService) UpdatePortalStatus(ctx context.Context, eventID string, status model.PortalStatus) error {
	rank := map[model.PortalStatus]int{
		model.PortalPendingSetup: 0,
		model.PortalClassesAdded: 1,
		model.PortalReady:        2,
	}
	next, ok := rank[status]
	if !ok {
		return apperr.Ef(apperr.KindInvalid, "unknown portal status %q", status)
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if next < rank[event.PortalStatus] {
		return apperr.Ef(apperr.KindConflict, "portal status cannot move back from %s to %s", event.PortalStatus, status)
	}
	return s.events.UpdatePortalStatus(ctx, eventID, status)
}

// RefreshTasks pulls open shop orders, batches them per event and kind, and
// creates task records for batches that do not exist yet. Existing open
// tasks keep their identity; their urgency is recomputed from now.
func (s *AdminService) RefreshTasks(ctx context.Context) ([]*model.Task, error) {
	orders, err := s.shop.ListOrdersForEvents(ctx, 0)
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	eventDates := make(map[string]time.Time, len(events))
	for _, e := range events {
		eventDates[e.ID] = e.Date
	}

	now := s.now()
	batches := tasks.BatchOrders(orders, eventDates, now)

	open, err := s.taskRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]*model.Task, len(open))
	for _, t := range open {
		existing[string(t.Kind)+"|"+t.EventID] = t
		t.Urgency = tasks.UrgencyFor(t.Deadline, now)
	}

	result := make([]*model.Task, 0, len(batches))
	for _, batch := range batches {
		if t, ok := existing[string(batch.Kind)+"|"+batch.EventID]; ok {
			result = append(result, t)
			continue
		}
		created, err := s.taskRepo.Create(ctx, batch)
		if err != nil {
			return nil, err
		}
		result = append(result, created)
	}
	return result, nil
}

// CompleteTask closes a task and mints its GO-ID, the identifier the
// supplier order runs under. The GO-ID is also stamped onto the event's
// clothing order record when one exists.
func (s *AdminService) CompleteTask(ctx context.Context, taskID string) (string, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	if task.Done {
		return "", apperr.E(apperr.KindConflict, "Task is already completed")
	}

	goID := tasks.NewGoID()
	if err := s.taskRepo.Complete(ctx, task.ID, goID); err != nil {
		return "", err
	}

	if task.Kind == model.TaskClothing {
		order, err := s.orders.GetByEvent(ctx, task.EventID)
		if err == nil {
			if err := s.orders.SetGoID(ctx, order.ID, goID); err != nil {
				logger.Error("[CompleteTask] failed to stamp GO-ID on order",
					logger.String("order", order.ID),
					logger.ErrorField(err))
			}
		} else if apperr.KindOf(err) != apperr.KindNotFound {
			logger.Error("[CompleteTask] order lookup failed",
				logger.String("event", task.EventID),
				logger.ErrorField(err))
		}
	}

	logger.Info("[CompleteTask] task completed",
		logger.String("task", task.ID),
		logger.String("goId", goID))
	return goID, nil
}
