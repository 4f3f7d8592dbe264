package model

// Account is an internal login (admin, staff or engineer). Teachers and
// parents authenticate with event-scoped access codes instead.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// Parent is a registered parent, linked to the class of their child.
type Parent struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
	ClassID string `json:"classId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
