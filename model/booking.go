package model

import "time"

// Booking is a SimplyBook reservation before it becomes a portal event.
type Booking struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	SchoolName string    `json:"schoolName"`
	Start      time.Time `json:"start"`
	ServiceID  string    `json:"serviceId"`
	Confirmed  bool      `json:"confirmed"`
}
