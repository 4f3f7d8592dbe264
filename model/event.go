package model

import "time"

// PipelineStage tracks how far an event's audio has progressed. Transitions
// are one-directional: pending -> staff_uploaded -> finals_submitted.
type PipelineStage string

const (
	StagePending         PipelineStage = "pending"
	StageStaffUploaded   PipelineStage = "staff_uploaded"
	StageFinalsSubmitted PipelineStage = "finals_submitted"
)

// PortalStatus tracks a booking's setup progress and gates teacher-portal
// actions.
type PortalStatus string

const (
	PortalPendingSetup PortalStatus = "pending_setup"
	PortalClassesAdded PortalStatus = "classes_added"
	PortalReady        PortalStatus = "ready"
)

// EventStatus distinguishes bookings that are still ahead from finished ones.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCompleted EventStatus = "completed"
)

// Event is one booked school visit. The record of truth lives in Airtable;
// SimplybookID is the legacy booking identifier reconciled by fallback lookup.
type Event struct {
	ID            string        `json:"id"`
	SchoolName    string        `json:"schoolName"`
	Date          time.Time     `json:"date"`
	Type          string        `json:"type"`
	SimplybookID  string        `json:"simplybookId,omitempty"`
	StaffIDs      []string      `json:"staffIds"`
	EngineerIDs   []string      `json:"engineerIds"`
	PipelineStage PipelineStage `json:"pipelineStage"`
	PortalStatus  PortalStatus  `json:"portalStatus"`
	Status        EventStatus   `json:"status"`
	Published     bool          `json:"published"`
}
