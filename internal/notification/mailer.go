package notification

import (
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const mailSubject = "Salary Credited"

//go:generate mockgen -source=mailer.go -destination=mock/mailer_mock.go -package=mock
type Mailer interface {
	Send(toEmail, toName, content string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailerFromEnv builds a mailer from SMTP_HOST, SMTP_PORT,
// SMTP_USERNAME, SMTP_PASSWORD and SMTP_FROM.
func NewSMTPMailerFromEnv(logger ...*zap.Logger) Mailer {
	l := zap.L().Named("notification.mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.mailer")
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(
			os.Getenv("SMTP_HOST"),
			port,
			os.Getenv("SMTP_USERNAME"),
			os.Getenv("SMTP_PASSWORD"),
		),
		from:   from,
		logger: l,
	}
}

func (m *smtpMailer) Send(toEmail, toName, content string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", mailSubject)
	msg.SetBody("text/plain", content)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warn("smtp send failed",
			zap.String("to", toEmail),
			zap.Error(err),
		)
		return err
	}

	return nil
}
