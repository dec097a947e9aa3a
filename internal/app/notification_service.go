// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"key_expiry_notifier/internal/domain/key"
	domainMail "key_expiry_notifier/internal/domain/mail"
	"key_expiry_notifier/internal/infra/config"
	infraMail "key_expiry_notifier/internal/infra/mail"

	"github.com/sirupsen/logrus"
)

// NotificationService defines the operations for running one expiry
// notification pass over the key manifest.
type NotificationService interface {
	// Run executes the whole pipeline for the given reference date:
	// load -> evaluate -> aggregate -> render -> send. Only a manifest
	// load failure is returned as an error; row-level and send-level
	// failures are contained in the RunResult counters.
	Run(ctx context.Context, today time.Time) (*RunResult, error)
}

// RunResult carries the per-run statistics. It is created fresh for every
// invocation and never persisted.
type RunResult struct {
	Processed int // manifest data rows seen
	Notified  int // successful notification sends
	Errors    int // parse failures plus exhausted-retry send failures
}

// Summary renders the human-readable run summary reported at the
// invocation boundary.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("Processed %d keys, sent %d notifications, encountered %d errors", r.Processed, r.Notified, r.Errors)
}

// ExpiryNotificationService implements NotificationService.
type ExpiryNotificationService struct {
	source        key.Source
	sender        domainMail.Sender
	policy        key.Policy
	mode          string // config.ModeSingle or config.ModeConsolidated
	failurePolicy string // config.FailurePropagate or config.FailureSwallow
	logger        *logrus.Logger
}

func NewExpiryNotificationService(
	source key.Source,
	sender domainMail.Sender,
	policy key.Policy,
	mode string,
	failurePolicy string,
	logger *logrus.Logger,
) *ExpiryNotificationService {
	return &ExpiryNotificationService{
		source:        source,
		sender:        sender,
		policy:        policy,
		mode:          mode,
		failurePolicy: failurePolicy,
		logger:        logger,
	}
}

// Run executes one notification pass.
func (s *ExpiryNotificationService) Run(ctx context.Context, today time.Time) (*RunResult, error) {
	s.logger.Infof("Current date: %s", today.Format(key.ExpiryDateLayout))
	s.logger.Infof("Notification policy: %s, mode: %s", s.policy, s.mode)

	manifest, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error in key expiration monitoring: %w", err)
	}

	result := &RunResult{
		Processed: manifest.Rows,
		Errors:    manifest.Errors,
	}
	if manifest.Skipped > 0 {
		s.logger.Infof("Skipped %d rows without a usable expiry date.", manifest.Skipped)
	}

	aggregator := key.NewAggregator()
	for _, record := range manifest.Records {
		evaluated, ok := key.Evaluate(record, today, s.policy)
		if !ok {
			continue
		}
		s.logger.Infof("Key: %s, Expiry: %s, Days until expiry: %d",
			evaluated.KeyName, evaluated.ExpiryDateString(), evaluated.DaysUntilExpiry)
		if !evaluated.Notifiable {
			continue
		}

		if s.mode == config.ModeSingle {
			s.notifySingle(evaluated, result)
		} else {
			aggregator.Add(evaluated)
		}
	}

	if s.mode == config.ModeConsolidated {
		for _, bundle := range aggregator.Bundles() {
			s.notifyBundle(bundle, result)
		}
	}

	s.logger.Infof("Summary: %s", result.Summary())
	return result, nil
}

// notifySingle sends one per-key alert to every recipient listed on the key.
func (s *ExpiryNotificationService) notifySingle(evaluated key.Evaluated, result *RunResult) {
	if len(evaluated.Recipients) == 0 {
		s.logger.Warnf("Key %s is notifiable but lists no recipients. Skipping.", evaluated.KeyName)
		return
	}

	subject, htmlBody, textBody, err := infraMail.RenderSingle(evaluated)
	if err != nil {
		s.logger.Errorf("Failed to render notification for key %s: %v", evaluated.KeyName, err)
		result.Errors++
		return
	}

	if err := s.sender.Send(evaluated.Recipients, subject, htmlBody, textBody); err != nil {
		s.logger.Errorf("Failed to send notification for key %s to %v: %v", evaluated.KeyName, evaluated.Recipients, err)
		if s.failurePolicy == config.FailurePropagate {
			result.Errors++
		}
		return
	}
	result.Notified++
	s.logger.Infof("Notification sent for key %s to %v", evaluated.KeyName, evaluated.Recipients)
}

// notifyBundle sends one consolidated alert covering all of a recipient's keys.
func (s *ExpiryNotificationService) notifyBundle(bundle *key.Bundle, result *RunResult) {
	s.logger.Infof("Sending notification to %s for %d keys", bundle.Recipient, len(bundle.Keys))

	subject, htmlBody, textBody, err := infraMail.RenderConsolidated(bundle)
	if err != nil {
		s.logger.Errorf("Failed to render consolidated notification for %s: %v", bundle.Recipient, err)
		result.Errors++
		return
	}

	if err := s.sender.Send([]string{bundle.Recipient}, subject, htmlBody, textBody); err != nil {
		s.logger.Errorf("Error sending email to %s: %v", bundle.Recipient, err)
		if s.failurePolicy == config.FailurePropagate {
			result.Errors++
		}
		return
	}
	result.Notified++
	s.logger.Infof("Email successfully sent to %s", bundle.Recipient)
}
