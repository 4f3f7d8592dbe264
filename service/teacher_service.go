package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"schallwerk/apperr"
	"schallwerk/core/pipeline"
	"schallwerk/logger"
	"schallwerk/model"
	"schallwerk/notify"
	"schallwerk/repository"
)

// TeacherService implements the teacher-portal operations. Teacher sessions
// are scoped to one event; every method re-checks that scope before touching
// records.
type TeacherService struct {
	events  repository.EventRepository
	classes repository.ClassRepository
	groups  repository.GroupRepository
	songs   repository.SongRepository
	orders  repository.OrderRepository

	notifier   Notifier
	adminEmail string

	// Schulsong approval is two-step when true: the admin releases the
	// track before the teacher can sign it off.
	requireAdminRelease bool

	now func() time.Time
}

// NewTeacherService wires a TeacherService.
func NewTeacherService(
	events repository.EventRepository,
	classes repository.ClassRepository,
	groups repository.GroupRepository,
	songs repository.SongRepository,
	orders repository.OrderRepository,
	notifier Notifier,
	adminEmail string,
	requireAdminRelease bool,
) *TeacherService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &TeacherService{
		events:              events,
		classes:             classes,
		groups:              groups,
		songs:               songs,
		orders:              orders,
		notifier:            notifier,
		adminEmail:          adminEmail,
		requireAdminRelease: requireAdminRelease,
		now:                 time.Now,
	}
}

// ResolveEvent looks an event up by its canonical record ID first, falling
// back to the legacy SimplyBook ID. When a record ID collides with another
// event's SimplyBook ID, the record ID match wins.
func (s *TeacherService) ResolveEvent(ctx context.Context, ref string) (*model.Event, error) {
	if ref == "" {
		return nil, apperr.E(apperr.KindInvalid, "event reference is required")
	}
	event, err := s.events.GetByID(ctx, ref)
	if err == nil {
		return event, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}
	event, err = s.events.GetBySimplybookID(ctx, ref)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.E(apperr.KindNotFound, "Event not found")
		}
		return nil, err
	}
	return event, nil
}

// EventForSession resolves the event a teacher session is scoped to.
func (s *TeacherService) EventForSession(ctx context.Context, sess *model.Session) (*model.Event, error) {
	return s.ResolveEvent(ctx, sess.EventID)
}

// ListClasses returns the event's roster.
func (s *TeacherService) ListClasses(ctx context.Context, eventRef string) ([]*model.Class, error) {
	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	return s.classes.ListByEvent(ctx, event.ID)
}

// ListSongs returns the event's songs with approval state.
func (s *TeacherService) ListSongs(ctx context.Context, eventRef string) ([]*model.Song, error) {
	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	return s.songs.ListByEvent(ctx, event.ID)
}

// CreateGroup creates a named group of at least two classes that perform
// together. Member classes must belong to the event, and completed events
// accept no new groups.
func (s *TeacherService) CreateGroup(ctx context.Context, eventRef, name string, memberClassIDs []string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.E(apperr.KindInvalid, "Group name is required")
	}
	if len(memberClassIDs) < 2 {
		return nil, apperr.E(apperr.KindInvalid, "A group needs at least 2 classes")
	}

	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	if event.Status == model.EventCompleted {
		return nil, apperr.E(apperr.KindInvalid, "Cannot add groups to completed events")
	}
	if !pipeline.CanManageClasses(event.PortalStatus) {
		return nil, apperr.E(apperr.KindForbidden, "Event setup is not complete yet")
	}

	classes, err := s.classes.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(classes))
	for _, c := range classes {
		known[c.ID] = true
	}
	seen := make(map[string]bool, len(memberClassIDs))
	for _, id := range memberClassIDs {
		if !known[id] {
			return nil, apperr.Ef(apperr.KindInvalid, "Class %s does not belong to this event", id)
		}
		if seen[id] {
			return nil, apperr.E(apperr.KindInvalid, "Duplicate class in group")
		}
		seen[id] = true
	}

	group, err := s.groups.Create(ctx, &model.Group{
		EventID:        event.ID,
		Name:           name,
		MemberClassIDs: memberClassIDs,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("[CreateGroup] group created",
		logger.String("event", event.ID),
		logger.String("group", group.ID),
		logger.String("name", name))
	return group, nil
}

// songForEvent loads a song and verifies it belongs to the event. A song
// from another event reports as not found rather than forbidden, so song IDs
// cannot be probed across events.
func (s *TeacherService) songForEvent(ctx context.Context, eventID, songID string) (*model.Song, error) {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song.EventID != eventID {
		return nil, apperr.E(apperr.KindNotFound, "Song not found")
	}
	return song, nil
}

// SetSongApproval records the teacher's verdict on one track. Approval
// requires a final file; rejection is allowed at any point.
func (s *TeacherService) SetSongApproval(ctx context.Context, eventRef, songID string, status model.ApprovalStatus) (*model.Song, error) {
	if status != model.ApprovalApproved && status != model.ApprovalRejected {
		return nil, apperr.E(apperr.KindInvalid, "Approval status must be approved or rejected")
	}

	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	song, err := s.songForEvent(ctx, event.ID, songID)
	if err != nil {
		return nil, err
	}
	if status == model.ApprovalApproved && !song.HasFinal() {
		return nil, apperr.E(apperr.KindInvalid, "Song has no final file to approve")
	}

	now := s.now().UTC()
	var approvedAt *time.Time
	if status == model.ApprovalApproved {
		approvedAt = &now
	}
	if err := s.songs.SetApproval(ctx, song.ID, status, approvedAt); err != nil {
		return nil, err
	}
	song.ApprovalStatus = status
	song.ApprovedAt = approvedAt
	return song, nil
}

// ApproveSchulsong signs off the whole-school track. The schulsong must have
// a final mix, and when two-step approval is on, the admin must have
// released it first. Returns the approval timestamp. The notification email
// is fire-and-forget: a dispatch failure is logged, never surfaced.
func (s *TeacherService) ApproveSchulsong(ctx context.Context, eventRef string) (time.Time, error) {
	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return time.Time{}, err
	}
	song, err := s.songs.GetSchulsong(ctx, event.ID)
	if err != nil {
		return time.Time{}, err
	}
	if !song.HasFinal() {
		return time.Time{}, apperr.E(apperr.KindInvalid, "Schulsong has no final file yet")
	}
	if s.requireAdminRelease && !song.AdminApproved {
		return time.Time{}, apperr.E(apperr.KindConflict, "Schulsong has not been released for approval yet")
	}
	if song.ApprovalStatus == model.ApprovalApproved && song.ApprovedAt != nil {
		// Approving twice keeps the original timestamp.
		return *song.ApprovedAt, nil
	}

	approvedAt := s.now().UTC()
	if err := s.songs.SetApproval(ctx, song.ID, model.ApprovalApproved, &approvedAt); err != nil {
		return time.Time{}, err
	}

	s.notifier.Enqueue(ctx, &notify.Message{
		To:      s.adminEmail,
		Subject: fmt.Sprintf("Schulsong approved: %s", event.SchoolName),
		Body: fmt.Sprintf("The teacher of %s approved the schulsong on %s.",
			event.SchoolName, approvedAt.Format(time.RFC3339)),
	})

	logger.Info("[ApproveSchulsong] approved",
		logger.String("event", event.ID),
		logger.String("song", song.ID))
	return approvedAt, nil
}

// ClothingOrderSummary is what the teacher order page shows: live per-size
// aggregation plus the stored order record, when one exists.
type ClothingOrderSummary struct {
	Sizes     map[string]int `json:"sizes"`
	Total     int            `json:"total"`
	Submitted bool           `json:"submitted"`
	GoID      string         `json:"goId,omitempty"`
}

// GetClothingOrder aggregates the per-size quantities from the event's order
// items and overlays the stored order record.
func (s *TeacherService) GetClothingOrder(ctx context.Context, eventRef string) (*ClothingOrderSummary, error) {
	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	sizes, err := s.orders.AggregateSizes(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, qty := range sizes {
		total += qty
	}
	summary := &ClothingOrderSummary{Sizes: sizes, Total: total}

	order, err := s.orders.GetByEvent(ctx, event.ID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return summary, nil
		}
		return nil, err
	}
	summary.Submitted = true
	summary.GoID = order.GoID
	return summary, nil
}

// SubmitClothingOrder snapshots the current aggregation into the single
// order record for the event, creating or updating it.
func (s *TeacherService) SubmitClothingOrder(ctx context.Context, eventRef string) (*model.ClothingOrder, error) {
	event, err := s.ResolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	if event.Status == model.EventCompleted {
		return nil, apperr.E(apperr.KindInvalid, "Cannot submit orders for completed events")
	}
	sizes, err := s.orders.AggregateSizes(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, apperr.E(apperr.KindInvalid, "No order items to submit")
	}
	return s.orders.Upsert(ctx, &model.ClothingOrder{EventID: event.ID, Sizes: sizes})
}
