package service

import (
	"context"
	"time"

	"schallwerk/apperr"
	"schallwerk/core/pipeline"
	"schallwerk/logger"
	"schallwerk/model"
	"schallwerk/repository"
	"schallwerk/storage"
)

// StaffService implements the recording-day operations: raw uploads arrive
// here as a two-phase protocol (presign, then confirm) so the binaries go
// straight from the browser to R2.
type StaffService struct {
	events  repository.EventRepository
	classes repository.ClassRepository
	files   repository.AudioFileRepository
	store   ObjectStore

	now func() time.Time
}

// NewStaffService wires a StaffService.
func NewStaffService(
	events repository.EventRepository,
	classes repository.ClassRepository,
	files repository.AudioFileRepository,
	store ObjectStore,
) *StaffService {
	return &StaffService{
		events:  events,
		classes: classes,
		files:   files,
		store:   store,
		now:     time.Now,
	}
}

// ListEvents returns the events the staff member is assigned to.
func (s *StaffService) ListEvents(ctx context.Context, staffID string) ([]*model.Event, error) {
	return s.events.ListForStaff(ctx, staffID)
}

// eventForStaff loads an event and verifies the staff assignment.
func (s *StaffService) eventForStaff(ctx context.Context, staffID, eventID string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, id := range event.StaffIDs {
		if id == staffID {
			return event, nil
		}
	}
	return nil, apperr.E(apperr.KindForbidden, "You are not assigned to this event")
}

// PresignedUpload is the first half of the upload protocol: the storage key
// and the URL the client PUTs the file to.
type PresignedUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PresignRawUpload issues a presigned PUT for one raw recording.
func (s *StaffService) PresignRawUpload(ctx context.Context, staffID, eventID, classID, filename string) (*PresignedUpload, error) {
	if filename == "" {
		return nil, apperr.E(apperr.KindInvalid, "Filename is required")
	}
	event, err := s.eventForStaff(ctx, staffID, eventID)
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

	key := storage.ObjectKey(event.ID, class.ID, "", model.AudioRaw, filename)
	url, err := s.store.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	return &PresignedUpload{Key: key, URL: url}, nil
}

// ConfirmRawUpload is the second half of the protocol: after the client PUT
// the object, this verifies it landed and writes the metadata record. When
// the raw count reaches the expected track count, the event's pipeline stage
// advances to staff_uploaded.
func (s *StaffService) ConfirmRawUpload(ctx context.Context, staffID, eventID, classID, key, filename string) (*model.AudioFile, error) {
	if key == "" {
		return nil, apperr.E(apperr.KindInvalid, "Storage key is required")
	}
	event, err := s.eventForStaff(ctx, staffID, eventID)
	if err != nil {
		return nil, err
	}

	size, err := s.store.StatObject(ctx, key)
	if err != nil {
		return nil, err
	}

	file, err := s.files.Create(ctx, &model.AudioFile{
		EventID:    event.ID,
		ClassID:    classID,
		Type:       model.AudioRaw,
		StorageKey: key,
		Filename:   filename,
		Size:       size,
		UploadedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.maybeAdvanceToStaffUploaded(ctx, event); err != nil {
		// The upload itself succeeded; a stage bookkeeping failure is
		// logged and the record returned anyway.
		logger.Error("[ConfirmRawUpload] stage update failed",
			logger.String("event", event.ID),
			logger.ErrorField(err))
	}
	return file, nil
}

func (s *StaffService) maybeAdvanceToStaffUploaded(ctx context.Context, event *model.Event) error {
	if event.PipelineStage != model.StagePending {
		return nil
	}
	expected, err := s.expectedTrackCount(ctx, event.ID)
	if err != nil {
		return err
	}
	rawCount, err := s.files.CountByEventAndType(ctx, event.ID, model.AudioRaw)
	if err != nil {
		return err
	}
	if !pipeline.StaffUploadComplete(rawCount, expected) {
		return nil
	}
	next, err := pipeline.AdvanceStage(event.PipelineStage, model.StageStaffUploaded)
	if err != nil {
		return err
	}
	if err := s.events.UpdatePipelineStage(ctx, event.ID, next); err != nil {
		return err
	}
	event.PipelineStage = next
	logger.Info("[Pipeline] staff upload complete",
		logger.String("event", event.ID),
		logger.Int("raw", rawCount),
		logger.Int("expected", expected))
	return nil
}

// expectedTrackCount sums the expected songs over the event's classes.
func (s *StaffService) expectedTrackCount(ctx context.Context, eventID string) (int, error) {
	classes, err := s.classes.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	expected := 0
	for _, c := range classes {
		expected += c.ExpectedSongs
	}
	return expected, nil
}

// UploadProgress reports how far the raw-upload phase is for an event.
type UploadProgress struct {
	RawCount      int  `json:"rawCount"`
	ExpectedCount int  `json:"expectedCount"`
	Complete      bool `json:"complete"`
}

// Progress computes the staff upload progress for an assigned event.
func (s *StaffService) Progress(ctx context.Context, staffID, eventID string) (*UploadProgress, error) {
	event, err := s.eventForStaff(ctx, staffID, eventID)
	if err != nil {
		return nil, err
	}
	expected, err := s.expectedTrackCount(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	rawCount, err := s.files.CountByEventAndType(ctx, event.ID, model.AudioRaw)
	if err != nil {
		return nil, err
	}
	return &UploadProgress{
		RawCount:      rawCount,
		ExpectedCount: expected,
		Complete:      pipeline.StaffUploadComplete(rawCount, expected),
	}, nil
}
