package notify

import (
	"schallwerk/logger"
)

type consoleService struct{}

// NewConsoleService creates an email backend that only logs. Used in
// development and whenever no SendGrid key is configured.
func NewConsoleService() EmailService {
	return consoleService{}
}

func (consoleService) Send(msg *Message) error {
	logger.Info("[Email] console delivery",
		logger.String("to", msg.To),
		logger.String("subject", msg.Subject))
	return nil
}
