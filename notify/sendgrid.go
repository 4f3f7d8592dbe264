package notify

import (
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"schallwerk/apperr"
)

type sendgridService struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendgridService creates the production email backend.
func NewSendgridService(apiKey, fromAddress, fromName string) EmailService {
	return &sendgridService{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
	}
}

func (s *sendgridService) Send(msg *Message) error {
	if !msg.Valid() {
		return apperr.E(apperr.KindInvalid, "email message is missing recipient, subject or body")
	}
	to := sgmail.NewEmail(msg.ToName, msg.To)
	mail := sgmail.NewSingleEmail(s.from, msg.Subject, to, msg.Body, "")
	resp, err := s.client.Send(mail)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "sendgrid send failed", err)
	}
	if resp.StatusCode >= 400 {
		return apperr.Ef(apperr.KindUnavailable, "sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
