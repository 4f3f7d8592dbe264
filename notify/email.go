package notify

// Message is one outgoing notification email. Bodies are plain text; the
// portal sends short operational notices, not marketing mail.
type Message struct {
	To      string `json:"to"`
	ToName  string `json:"toName,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Valid reports whether the message can be sent at all.
func (m *Message) Valid() bool {
	return m.To != "" && m.Subject != "" && m.Body != ""
}

// EmailService delivers messages. Implementations must be safe for
// concurrent use; delivery failures are the implementation's to log, never
// the caller's to handle.
type EmailService interface {
	Send(msg *Message) error
}
