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
	"schallwerk/storage"
)

// EngineerService implements the mixing/mastering operations. Engineers pull
// raw material down via signed URLs and push previews and finals back
// through the same presign/confirm protocol the staff side uses.
type EngineerService struct {
	events repository.EventRepository
	songs  repository.SongRepository
	files  repository.AudioFileRepository
	store  ObjectStore

	notifier   Notifier
	adminEmail string

	michaID string
	jakobID string

	now func() time.Time
}

// NewEngineerService wires an EngineerService.
func NewEngineerService(
	events repository.EventRepository,
	songs repository.SongRepository,
	files repository.AudioFileRepository,
	store ObjectStore,
	notifier Notifier,
	adminEmail string,
	michaID, jakobID string,
) *EngineerService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &EngineerService{
		events:     events,
		songs:      songs,
		files:      files,
		store:      store,
		notifier:   notifier,
		adminEmail: adminEmail,
		michaID:    michaID,
		jakobID:    jakobID,
		now:        time.Now,
	}
}

// ListEvents returns the events the engineer is assigned to.
func (s *EngineerService) ListEvents(ctx context.Context, engineerID string) ([]*model.Event, error) {
	return s.events.ListForEngineer(ctx, engineerID)
}

// eventForEngineer loads an event and verifies the engineer assignment.
func (s *EngineerService) eventForEngineer(ctx context.Context, engineerID, eventID string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, id := range event.EngineerIDs {
		if id == engineerID {
			return event, nil
		}
	}
	return nil, apperr.E(apperr.KindForbidden, "You are not assigned to this event")
}

// EnsureAssignments assigns an engineer to every unassigned song of the
// event: the schulsong to Micha, everything else to Jakob. Songs that
// already have an engineer are untouched, so the call is idempotent. Only
// engineers assigned to the event may trigger it.
func (s *EngineerService) EnsureAssignments(ctx context.Context, engineerID, eventID string) ([]*model.Song, error) {
	event, err := s.eventForEngineer(ctx, engineerID, eventID)
	if err != nil {
		return nil, err
	}
	songs, err := s.songs.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	for _, song := range songs {
		assigned := pipeline.AssignEngineer(song, s.michaID, s.jakobID)
		if assigned == song.EngineerID {
			continue
		}
		if err := s.songs.SetEngineer(ctx, song.ID, assigned); err != nil {
			return nil, err
		}
		song.EngineerID = assigned
		logger.Info("[EnsureAssignments] engineer assigned",
			logger.String("song", song.ID),
			logger.String("engineer", assigned),
			logger.Bool("schulsong", song.IsSchulsong))
	}
	return songs, nil
}

// DownloadRawFiles signs download URLs for every raw recording of the event.
func (s *EngineerService) DownloadRawFiles(ctx context.Context, engineerID, eventID string) ([]*model.AudioFile, error) {
	event, err := s.eventForEngineer(ctx, engineerID, eventID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	raws := make([]*model.AudioFile, 0, len(files))
	for _, f := range files {
		if f.Type != model.AudioRaw {
			continue
		}
		url, err := s.store.PresignGet(ctx, f.StorageKey, f.Filename)
		if err != nil {
			return nil, err
		}
		f.SignedURL = url
		raws = append(raws, f)
	}
	return raws, nil
}

// PresignMixUpload issues a presigned PUT for a preview or final mix of one
// song.
func (s *EngineerService) PresignMixUpload(ctx context.Context, engineerID, eventID, songID string, fileType model.AudioFileType, filename string) (*PresignedUpload, error) {
	if fileType != model.AudioPreview && fileType != model.AudioFinal {
		return nil, apperr.E(apperr.KindInvalid, "Upload type must be preview or final")
	}
	if filename == "" {
		return nil, apperr.E(apperr.KindInvalid, "Filename is required")
	}
	event, err := s.eventForEngineer(ctx, engineerID, eventID)
	if err != nil {
		return nil, err
	}
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song.EventID != event.ID {
		return nil, apperr.E(apperr.KindNotFound, "Song not found")
	}

	key := storage.ObjectKey(event.ID, song.ClassID, song.ID, fileType, filename)
	url, err := s.store.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	return &PresignedUpload{Key: key, URL: url}, nil
}

// ConfirmMixUpload records a finished preview/final upload against the song.
// Final WAV and MP3 are told apart by extension. Once every song carries a
// final mix, the event advances to finals_submitted and the admin is
// notified (fire-and-forget).
func (s *EngineerService) ConfirmMixUpload(ctx context.Context, engineerID, eventID, songID, key, filename string, fileType model.AudioFileType) (*model.AudioFile, error) {
	if key == "" {
		return nil, apperr.E(apperr.KindInvalid, "Storage key is required")
	}
	if fileType != model.AudioPreview && fileType != model.AudioFinal {
		return nil, apperr.E(apperr.KindInvalid, "Upload type must be preview or final")
	}
	event, err := s.eventForEngineer(ctx, engineerID, eventID)
	if err != nil {
		return nil, err
	}
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song.EventID != event.ID {
		return nil, apperr.E(apperr.KindNotFound, "Song not found")
	}

	size, err := s.store.StatObject(ctx, key)
	if err != nil {
		return nil, err
	}

	file, err := s.files.Create(ctx, &model.AudioFile{
		EventID:    event.ID,
		ClassID:    song.ClassID,
		SongID:     song.ID,
		Type:       fileType,
		StorageKey: key,
		Filename:   filename,
		Size:       size,
		UploadedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	isWAV := strings.EqualFold(strings.TrimPrefix(filenameExt(filename), "."), "wav")
	if err := s.songs.SetFileKey(ctx, song.ID, fileType, key, isWAV); err != nil {
		return nil, err
	}

	if fileType == model.AudioFinal {
		if err := s.maybeAdvanceToFinalsSubmitted(ctx, event); err != nil {
			logger.Error("[ConfirmMixUpload] stage update failed",
				logger.String("event", event.ID),
				logger.ErrorField(err))
		}
	}
	return file, nil
}

func filenameExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

func (s *EngineerService) maybeAdvanceToFinalsSubmitted(ctx context.Context, event *model.Event) error {
	if event.PipelineStage != model.StageStaffUploaded {
		return nil
	}
	songs, err := s.songs.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	finalCount := 0
	for _, song := range songs {
		if song.HasFinal() {
			finalCount++
		}
	}
	if !pipeline.MixMasterComplete(finalCount, len(songs)) {
		return nil
	}
	next, err := pipeline.AdvanceStage(event.PipelineStage, model.StageFinalsSubmitted)
	if err != nil {
		return err
	}
	if err := s.events.UpdatePipelineStage(ctx, event.ID, next); err != nil {
		return err
	}
	event.PipelineStage = next

	s.notifier.Enqueue(ctx, &notify.Message{
		To:      s.adminEmail,
		Subject: fmt.Sprintf("Finals submitted: %s", event.SchoolName),
		Body: fmt.Sprintf("All %d tracks of %s now have final mixes and are ready for approval.",
			finalCount, event.SchoolName),
	})
	logger.Info("[Pipeline] finals submitted",
		logger.String("event", event.ID),
		logger.Int("finals", finalCount))
	return nil
}
