package scheduler

import (
	"context"
	"time"

	"key_expiry_notifier/internal/app" // For NotificationService interface
	"key_expiry_notifier/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds one whole notification pass, including every mail
// retry loop.
const runTimeout = 10 * time.Minute

// NotificationScheduler triggers the expiry notification run on a cron
// spec and optionally reports each run's summary to an admin Telegram chat.
type NotificationScheduler struct {
	cronEngine      *cron.Cron
	notifService    app.NotificationService
	summaryClient   telegram.Client // nil when Telegram reporting is disabled
	adminTelegramID int64
	logger          *logrus.Logger
	cronSpec        string
}

func NewNotificationScheduler(
	notifService app.NotificationService,
	summaryClient telegram.Client,
	adminTelegramID int64,
	logger *logrus.Logger,
	cronSpec string, // e.g., "0 9 * * *" (9:00 AM daily)
) *NotificationScheduler {
	return &NotificationScheduler{
		cronEngine:      cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		notifService:    notifService,
		summaryClient:   summaryClient,
		adminTelegramID: adminTelegramID,
		logger:          logger,
		cronSpec:        cronSpec,
	}
}

func (s *NotificationScheduler) Start() error {
	s.logger.Info("Starting notification scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce)
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("Notification scheduler started with spec %q.", s.cronSpec)
	return nil
}

// RunOnce executes a single notification pass immediately. The cron job
// calls it on schedule; cmd/notifier also calls it directly for ad-hoc runs.
func (s *NotificationScheduler) RunOnce() {
	s.logger.Info("Cron job triggered for key expiry notification run.")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := s.notifService.Run(ctx, time.Now())
	if err != nil {
		s.logger.Errorf("Error during notification run: %v", err)
		s.reportSummary("Key expiry notification run FAILED: " + err.Error())
		return
	}
	s.reportSummary("Key expiry notification run finished. " + result.Summary())
}

func (s *NotificationScheduler) reportSummary(text string) {
	if s.summaryClient == nil {
		return
	}
	if err := s.summaryClient.SendMessage(s.adminTelegramID, text); err != nil {
		s.logger.Errorf("Failed to send run summary to admin chat %d: %v", s.adminTelegramID, err)
	}
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Notification scheduler gracefully stopped.")
}
