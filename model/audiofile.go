package model

import "time"

// AudioFileType tells which pipeline stage produced an upload.
type AudioFileType string

const (
	AudioRaw     AudioFileType = "raw"
	AudioPreview AudioFileType = "preview"
	AudioFinal   AudioFileType = "final"
)

// AudioFile is the metadata record for one uploaded object. The binary lives
// in R2; SignedURL is derived per request and never persisted.
type AudioFile struct {
	ID         string        `json:"id"`
	EventID    string        `json:"eventId"`
	ClassID    string        `json:"classId"`
	SongID     string        `json:"songId,omitempty"`
	Type       AudioFileType `json:"type"`
	StorageKey string        `json:"-"`
	Filename   string        `json:"filename"`
	Size       int64         `json:"size"`
	UploadedAt time.Time     `json:"uploadedAt"`
	SignedURL  string        `json:"signedUrl,omitempty"`
}
