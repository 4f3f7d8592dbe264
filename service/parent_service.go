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
	"schallwerk/shopify"
)

// ParentService implements the parent-facing operations: registration,
// preview listening once the event is released, and merch checkout.
type ParentService struct {
	events  repository.EventRepository
	classes repository.ClassRepository
	songs   repository.SongRepository
	parents repository.ParentRepository
	store   ObjectStore

	shop     *shopify.Client
	notifier Notifier

	now func() time.Time
}

// NewParentService wires a ParentService.
func NewParentService(
	events repository.EventRepository,
	classes repository.ClassRepository,
	songs repository.SongRepository,
	parents repository.ParentRepository,
	store ObjectStore,
	shop *shopify.Client,
	notifier Notifier,
) *ParentService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &ParentService{
		events:   events,
		classes:  classes,
		songs:    songs,
		parents:  parents,
		store:    store,
		shop:     shop,
		notifier: notifier,
		now:      time.Now,
	}
}

// Register creates a parent record linked to a class of the event. The
// welcome email is fire-and-forget.
func (s *ParentService) Register(ctx context.Context, eventID, classID, name, email string) (*model.Parent, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, apperr.E(apperr.KindInvalid, "Name and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.E(apperr.KindInvalid, "Email address is invalid")
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.EventID != event.ID {
		return nil, apperr.E(apperr.KindNotFound, "Class not found")
	}

	// Registering twice with the same email just returns the existing
	// record; parents re-register from every device.
	if existing, err := s.parents.GetByEmailAndEvent(ctx, email, event.ID); err == nil {
		return existing, nil
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	parent, err := s.parents.Create(ctx, &model.Parent{
		EventID: event.ID,
		ClassID: class.ID,
		Name:    name,
		Email:   email,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Enqueue(ctx, &notify.Message{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Welcome to the %s recording portal", event.SchoolName),
		Body: fmt.Sprintf("Hello %s,\n\nyour registration for %s (%s) is confirmed. "+
			"You will be able to listen to the previews here once they are released.",
			name, event.SchoolName, class.Name),
	})
	logger.Info("[ParentRegister] parent registered",
		logger.String("event", event.ID),
		logger.String("parent", parent.ID))
	return parent, nil
}

// Login resolves an existing registration by email.
func (s *ParentService) Login(ctx context.Context, eventID, email string) (*model.Parent, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperr.E(apperr.KindInvalid, "Email is required")
	}
	parent, err := s.parents.GetByEmailAndEvent(ctx, email, eventID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.E(apperr.KindUnauthorized, "No registration found for this email")
		}
		return nil, err
	}
	return parent, nil
}

// Preview is one listenable track.
type Preview struct {
	SongID    string `json:"songId"`
	Title     string `json:"title"`
	SignedURL string `json:"signedUrl"`
}

// PreviewListing is what the parent player page renders. When the event is
// not yet released, Previews stays empty and AvailableAt tells the parent
// when to come back (zero when approval is still outstanding).
type PreviewListing struct {
	Visible     bool       `json:"visible"`
	AvailableAt *time.Time `json:"availableAt,omitempty"`
	Previews    []*Preview `json:"previews,omitempty"`
}

// ListPreviews gates the event's previews behind the visibility rule: every
// track approved AND at least 7 days past the event date. Both conditions
// are required; there is no partial visibility.
func (s *ParentService) ListPreviews(ctx context.Context, sess *model.Session) (*PreviewListing, error) {
	event, err := s.events.GetByID(ctx, sess.EventID)
	if err != nil {
		return nil, err
	}
	songs, err := s.songs.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	allApproved := pipeline.AggregateApproval(songs) == model.AdminApprovalDone
	if !pipeline.PreviewVisible(allApproved, event.Date, s.now()) {
		listing := &PreviewListing{Visible: false}
		if allApproved {
			// Only the waiting period is outstanding; tell them when.
			at := event.Date.UTC().Add(7 * 24 * time.Hour)
			listing.AvailableAt = &at
		}
		return listing, nil
	}

	previews := make([]*Preview, 0, len(songs))
	for _, song := range songs {
		if song.PreviewKey == "" {
			continue
		}
		url, err := s.store.PresignGet(ctx, song.PreviewKey, "")
		if err != nil {
			return nil, err
		}
		previews = append(previews, &Preview{
			SongID:    song.ID,
			Title:     song.Title,
			SignedURL: url,
		})
	}
	return &PreviewListing{Visible: true, Previews: previews}, nil
}

// CreateCheckout opens a Shopify cart for merch tied to the parent's event
// and returns the hosted checkout URL.
func (s *ParentService) CreateCheckout(ctx context.Context, sess *model.Session, lines []shopify.CartLine) (string, error) {
	if s.shop == nil {
		return "", apperr.E(apperr.KindUnavailable, "Shop is not configured")
	}
	event, err := s.events.GetByID(ctx, sess.EventID)
	if err != nil {
		return "", err
	}
	return s.shop.CreateCart(ctx, event.ID, lines)
}
