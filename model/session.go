package model

import "time"

// Role names one of the five portal user types. Each role has its own cookie
// and signing secret; sessions never cross role boundaries.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTeacher  Role = "teacher"
	RoleStaff    Role = "staff"
	RoleEngineer Role = "engineer"
	RoleParent   Role = "parent"
)

// Session is the verified content of a role cookie. SubjectID is the
// account/parent record ID; EventID is set for teacher and parent sessions,
// which are scoped to a single event.
type Session struct {
	Role      Role      `json:"role"`
	SubjectID string    `json:"subjectId"`
	EventID   string    `json:"eventId,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}
