package mail

// Sender delivers a rendered notification to a list of recipients.
// Implementations are expected to retry transient transport failures
// internally; an error return means the retry budget is exhausted.
// This interface decouples the notification pipeline from the SMTP
// library so tests can substitute a fake transport.
type Sender interface {
	Send(recipients []string, subject, htmlBody, textBody string) error
}
