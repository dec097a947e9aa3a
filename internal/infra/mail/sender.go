package mail

import (
	"time"

	"key_expiry_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// dialer is the slice of gomail.Dialer the sender needs. Tests substitute
// a fake transport here.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers notifications over SMTP with a bounded retry loop.
// It implements domain mail.Sender.
type SMTPSender struct {
	dialer        dialer
	senderAddress string
	senderName    string
	retryCount    int
	retryDelay    time.Duration
	sleep         func(time.Duration)
	logger        *logrus.Logger
}

func NewSMTPSender(cfg *config.AppConfig, logger *logrus.Logger) *SMTPSender {
	logger.Infof("Initializing mail sender for host: %s, port: %d, user: %s", cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser)
	return &SMTPSender{
		dialer:        gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
		retryCount:    cfg.MailRetryCount,
		retryDelay:    cfg.MailRetryDelay,
		sleep:         time.Sleep,
		logger:        logger,
	}
}

// Send makes up to retryCount delivery attempts with a fixed delay between
// them. No deduplication happens across attempts; a retry after a
// false-negative transport error may produce a duplicate mail.
func (s *SMTPSender) Send(recipients []string, subject, htmlBody, textBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= s.retryCount; attempt++ {
		err := s.dialer.DialAndSend(msg)
		if err == nil {
			s.logger.Infof("Mail sent successfully to %d recipients on attempt %d", len(recipients), attempt)
			return nil
		}
		lastErr = err
		if attempt < s.retryCount {
			s.logger.Warnf("Send attempt %d failed: %v. Retrying in %s...", attempt, err, s.retryDelay)
			s.sleep(s.retryDelay)
		}
	}
	s.logger.Errorf("All %d attempts failed: %v", s.retryCount, lastErr)
	return lastErr
}
