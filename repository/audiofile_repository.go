package repository

import (
	"context"
	"fmt"
	"time"

	"schallwerk/airtable"
	"schallwerk/model"
)

// AudioFileRepository defines the upload-metadata operations.
type AudioFileRepository interface {
	Create(ctx context.Context, file *model.AudioFile) (*model.AudioFile, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.AudioFile, error)
	ListByClass(ctx context.Context, classID string) ([]*model.AudioFile, error)
	CountByEventAndType(ctx context.Context, eventID string, fileType model.AudioFileType) (int, error)
	GetByStorageKey(ctx context.Context, key string) (*model.AudioFile, error)
}

type airtableAudioFileRepository struct {
	client *airtable.Client
}

// NewAirtableAudioFileRepository creates a new instance of airtableAudioFileRepository.
func NewAirtableAudioFileRepository(client *airtable.Client) AudioFileRepository {
	return &airtableAudioFileRepository{client: client}
}

func decodeAudioFile(rec *airtable.Record) (*model.AudioFile, error) {
	eventID, err := rec.FirstString(airtable.FieldAudioEvent)
	if err != nil {
		return nil, err
	}
	classID, err := rec.FirstString(airtable.FieldAudioClass)
	if err != nil {
		return nil, err
	}
	songID, err := rec.FirstString(airtable.FieldAudioSong)
	if err != nil {
		return nil, err
	}
	fileType, err := rec.String(airtable.FieldAudioType)
	if err != nil {
		return nil, err
	}
	key, err := rec.String(airtable.FieldAudioStorageKey)
	if err != nil {
		return nil, err
	}
	filename, err := rec.String(airtable.FieldAudioFilename)
	if err != nil {
		return nil, err
	}
	size, err := rec.Float(airtable.FieldAudioSize)
	if err != nil {
		return nil, err
	}
	uploadedAt, err := rec.Time(airtable.FieldAudioUploadedAt)
	if err != nil {
		return nil, err
	}

	return &model.AudioFile{
		ID:         rec.ID,
		EventID:    eventID,
		ClassID:    classID,
		SongID:     songID,
		Type:       model.AudioFileType(fileType),
		StorageKey: key,
		Filename:   filename,
		Size:       int64(size),
		UploadedAt: uploadedAt,
	}, nil
}

func decodeAudioFiles(records []*airtable.Record) ([]*model.AudioFile, error) {
	files := make([]*model.AudioFile, 0, len(records))
	for _, rec := range records {
		file, err := decodeAudioFile(rec)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (r *airtableAudioFileRepository) Create(ctx context.Context, file *model.AudioFile) (*model.AudioFile, error) {
	fields := map[string]interface{}{
		airtable.FieldAudioEvent:      []string{file.EventID},
		airtable.FieldAudioClass:      []string{file.ClassID},
		airtable.FieldAudioType:       string(file.Type),
		airtable.FieldAudioStorageKey: file.StorageKey,
		airtable.FieldAudioFilename:   file.Filename,
		airtable.FieldAudioSize:       file.Size,
		airtable.FieldAudioUploadedAt: file.UploadedAt.UTC().Format(time.RFC3339),
	}
	if file.SongID != "" {
		fields[airtable.FieldAudioSong] = []string{file.SongID}
	}
	rec, err := r.client.Create(ctx, airtable.TableAudioFiles, fields)
	if err != nil {
		return nil, err
	}
	created := *file
	created.ID = rec.ID
	return &created, nil
}

func (r *airtableAudioFileRepository) ListByEvent(ctx context.Context, eventID string) ([]*model.AudioFile, error) {
	records, err := r.client.List(ctx, airtable.TableAudioFiles, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldAudioEvent, eventID),
	})
	if err != nil {
		return nil, err
	}
	return decodeAudioFiles(records)
}

func (r *airtableAudioFileRepository) ListByClass(ctx context.Context, classID string) ([]*model.AudioFile, error) {
	records, err := r.client.List(ctx, airtable.TableAudioFiles, airtable.ListOptions{
		FilterByFormula: airtable.LinkedToFormula(airtable.FieldAudioClass, classID),
	})
	if err != nil {
		return nil, err
	}
	return decodeAudioFiles(records)
}

func (r *airtableAudioFileRepository) CountByEventAndType(ctx context.Context, eventID string, fileType model.AudioFileType) (int, error) {
	formula := fmt.Sprintf("AND(%s, %s)",
		airtable.LinkedToFormula(airtable.FieldAudioEvent, eventID),
		airtable.EqualsFormula(airtable.FieldAudioType, string(fileType)))
	records, err := r.client.List(ctx, airtable.TableAudioFiles, airtable.ListOptions{FilterByFormula: formula})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (r *airtableAudioFileRepository) GetByStorageKey(ctx context.Context, key string) (*model.AudioFile, error) {
	rec, err := r.client.First(ctx, airtable.TableAudioFiles,
		airtable.EqualsFormula(airtable.FieldAudioStorageKey, key))
	if err != nil {
		return nil, err
	}
	return decodeAudioFile(rec)
}
