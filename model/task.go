package model

import "time"

// TaskKind separates clothing orders from paper (certificate/booklet) orders.
type TaskKind string

const (
	TaskClothing TaskKind = "clothing"
	TaskPaper    TaskKind = "paper"
)

// Urgency buckets a task by how close its deadline is.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent"
	UrgencySoon    Urgency = "soon"
	UrgencyNormal  Urgency = "normal"
)

// Task is one admin to-do aggregating the Shopify orders of an event that
// must go to a supplier together. Completing it mints a GO-ID.
type Task struct {
	ID       string    `json:"id"`
	EventID  string    `json:"eventId"`
	Kind     TaskKind  `json:"kind"`
	OrderIDs []string  `json:"orderIds"`
	Deadline time.Time `json:"deadline"`
	Urgency  Urgency   `json:"urgency"`
	Done     bool      `json:"done"`
	GoID     string    `json:"goId,omitempty"`
}
