package model

import "time"

// ApprovalStatus is the per-track approval tri-state.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// AdminApprovalStatus is the per-event aggregate the admin dashboard shows.
type AdminApprovalStatus string

const (
	AdminApprovalPending AdminApprovalStatus = "pending"
	AdminApprovalReady   AdminApprovalStatus = "ready_for_approval"
	AdminApprovalDone    AdminApprovalStatus = "approved"
)

// Song is one unit of audio content belonging to a class. The three storage
// keys are optional; a song starts with none and accumulates them as the
// pipeline progresses. IsSchulsong marks the whole-school track, which has
// its own approval and upload path.
type Song struct {
	ID             string         `json:"id"`
	EventID        string         `json:"eventId"`
	ClassID        string         `json:"classId"`
	Title          string         `json:"title"`
	IsSchulsong    bool           `json:"isSchulsong"`
	PreviewKey     string         `json:"-"`
	FinalMP3Key    string         `json:"-"`
	FinalWAVKey    string         `json:"-"`
	EngineerID     string         `json:"engineerId,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	AdminApproved  bool           `json:"adminApproved"`
	ApprovedAt     *time.Time     `json:"approvedAt,omitempty"`
}

// HasFinal reports whether a final mix exists for the song.
func (s *Song) HasFinal() bool {
	return s.FinalMP3Key != "" || s.FinalWAVKey != ""
}
