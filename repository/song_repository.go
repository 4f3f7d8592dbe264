package repository

import (
	"context"
	"time"

	"schallwerk/airtable"
	"schallwerk/apperr"
	"schallwerk/model"
)

// SongRepository defines the song data operations.
type SongRepository interface {
	GetByID(ctx context.Context, id string) (*model.Song, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Song, error)
	ListByClass(ctx context.Context, classID string) ([]*model.Song, error)
	GetSchulsong(ctx context.Context, eventID string) (*model.Song, error)
	Create(ctx context.Context, song *model.Song) (*model.Song, error)
	SetFileKey(ctx context.Context, id string, fileType model.AudioFileType, key string, wav bool) error
	SetEngineer(ctx context.Context, id, engineerID string) error
	SetApproval(ctx context.Context, id string, status model.ApprovalStatus, approvedAt *time.Time) error
	SetAdminApproved(ctx context.Context, id string, approved bool) error
}

type airtableSongRepository struct {
	client *airtable.Client
}

// NewAirtableSongRepository creates a new instance of airtableSongRepository.
func NewAirtableSongRepository(client *airtable.Client) SongRepository {
	return &airtableSongRepository{client: client}
}

func decodeSong(rec *airtable.Record) (*model.Song, error) {
	eventID, err := rec.FirstString(airtable.FieldSongEvent)
	if err != nil {
		return nil, err
	}
	classID, err := rec.FirstString(airtable.FieldSongClass)
	if err != nil {
		return nil, err
	}
	title, err := rec.String(airtable.FieldSongTitle)
	if err != nil {
		return nil, err
	}
	isSchulsong, err := rec.Bool(airtable.FieldSongIsSchulsong)
	if err != nil {
		return nil, err
	}
	previewKey, err := rec.String(airtable.FieldSongPreviewKey)
	if err != nil {
		return nil, err
	}
	mp3Key, err := rec.String(airtable.FieldSongFinalMP3Key)
	if err != nil {
		return nil, err
	}
	wavKey, err := rec.String(airtable.FieldSongFinalWAVKey)
	if err != nil {
		return nil, err
	}
	engineerID, err := rec.FirstString(airtable.FieldSongEngineer)
	if err != nil {
		return nil, err
	}
	approval, err := rec.String(airtable.FieldSongApproval)
	if err != nil {
		return nil, err
	}
	if approval == "" {
		approval = string(model.ApprovalPending)
	}
	adminApproved, err := rec.Bool(airtable.FieldSongAdminApproved)
	if err != nil {
		return nil, err
	}
	approvedAt, err := rec.Time(airtable.FieldSongApprovedAt)
	if err != nil {
		return nil, err
	}

	song := &model.Song{
		ID:             rec.ID,
		EventID:        eventID,
		ClassID:        classID,
		Title:          title,
		IsSchulsong:    isSchulsong,
		PreviewKey:     previewKey,
		FinalMP3Key:    mp3Key,
		FinalWAVKey:    wavKey,
		EngineerID:     engineerID,
		ApprovalStatus: model.ApprovalStatus(approval),
		AdminApproved:  adminApproved,
	}
	if !approvedAt.IsZero() {
		song.ApprovedAt = &approvedAt
	}
	return song, nil
}

func decodeSongs(records []*airtable.Record) ([]*model.Song, error) {
	songs := make([]*model.Song, 0, len(records))
	for _, rec := range records {
		song, err := decodeSong(rec)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, nil
}

func (r *airtableSongRepository) GetByID(ctx context.Context, id string) (*model.Song, error) {
	rec, err := r.client.Get(ctx, airtable.TableSongs, id)
	if err != nil {
		return nil, err
	}
	return decodeSong(rec)
}

func (r *airtableSongRepository) ListByEvent(ctx context.Context, eventID string) ([]*model.Song, error) {
	records, err := r.client.List(ctx, airtable.TableSongs, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldSongEvent, eventID),
	})
	if err != nil {
		return nil, err
	}
	return decodeSongs(records)
}

func (r *airtableSongRepository) ListByClass(ctx context.Context, classID string) ([]*model.Song, error) {
	records, err := r.client.List(ctx, airtable.TableSongs, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldSongClass, classID),
	})
	if err != nil {
		return nil, err
	}
	return decodeSongs(records)
}

func (r *airtableSongRepository) GetSchulsong(ctx context.Context, eventID string) (*model.Song, error) {
	songs, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, song := range songs {
		if song.IsSchulsong {
			return song, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "schulsong not found for event")
}

func (r *airtableSongRepository) Create(ctx context.Context, song *model.Song) (*model.Song, error) {
	fields := map[string]interface{}{
		airtable.FieldSongEvent:       []string{song.EventID},
		airtable.FieldSongClass:       []string{song.ClassID},
		airtable.FieldSongTitle:       song.Title,
		airtable.FieldSongIsSchulsong: song.IsSchulsong,
		airtable.FieldSongApproval:    string(model.ApprovalPending),
	}
	rec, err := r.client.Create(ctx, airtable.TableSongs, fields)
	if err != nil {
		return nil, err
	}
	created := *song
	created.ID = rec.ID
	created.ApprovalStatus = model.ApprovalPending
	return &created, nil
}

func (r *airtableSongRepository) SetFileKey(ctx context.Context, id string, fileType model.AudioFileType, key string, wav bool) error {
	field := ""
	switch fileType {
	case model.AudioPreview:
		field = airtable.FieldSongPreviewKey
	case model.AudioFinal:
		if wav {
			field = airtable.FieldSongFinalWAVKey
		} else {
			field = airtable.FieldSongFinalMP3Key
		}
	default:
		return apperr.Ef(apperr.KindInvalid, "file type %q does not attach to a song", fileType)
	}
	_, err := r.client.Update(ctx, airtable.TableSongs, id, map[string]interface{}{field: key})
	return err
}

func (r *airtableSongRepository) SetEngineer(ctx context.Context, id, engineerID string) error {
	_, err := r.client.Update(ctx, airtable.TableSongs, id, map[string]interface{}{
		airtable.FieldSongEngineer: []string{engineerID},
	})
	return err
}

func (r *airtableSongRepository) SetApproval(ctx context.Context, id string, status model.ApprovalStatus, approvedAt *time.Time) error {
	fields := map[string]interface{}{
		airtable.FieldSongApproval: string(status),
	}
	if approvedAt != nil {
		fields[airtable.FieldSongApprovedAt] = approvedAt.UTC().Format(time.RFC3339)
	}
	_, err := r.client.Update(ctx, airtable.TableSongs, id, fields)
	return err
}

func (r *airtableSongRepository) SetAdminApproved(ctx context.Context, id string, approved bool) error {
	_, err := r.client.Update(ctx, airtable.TableSongs, id, map[string]interface{}{
		airtable.FieldSongAdminApproved: approved,
	})
	return err
}
