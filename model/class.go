package model

// Class is a roster group within an event. It owns zero or more songs.
type Class struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
	Name    string `json:"name"`
	// ExpectedSongs is how many tracks this class records; completion flags
	// for the staff and engineer pipelines derive from it.
	ExpectedSongs int `json:"expectedSongs"`
}

// Group joins two or more classes that perform together.
type Group struct {
	ID             string   `json:"id"`
	EventID        string   `json:"eventId"`
	Name           string   `json:"name"`
	MemberClassIDs []string `json:"memberClassIds"`
}
