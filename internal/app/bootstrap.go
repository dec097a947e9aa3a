package app

import (
	"context"
	"fmt"

	"key_expiry_notifier/internal/domain/key"
	"key_expiry_notifier/internal/infra/config"
	"key_expiry_notifier/internal/infra/database"
	infraMail "key_expiry_notifier/internal/infra/mail"
	"key_expiry_notifier/internal/infra/manifest"
	"key_expiry_notifier/internal/infra/storage"

	"github.com/sirupsen/logrus"
)

// BuildNotificationService wires the configured manifest source, mail
// sender and policy into a ready-to-run service. Both entry points (the
// cron service and the cloud function) share this wiring. The returned
// cleanup function releases storage or database handles and is safe to
// call once.
func BuildNotificationService(ctx context.Context, cfg *config.AppConfig, logger *logrus.Logger) (NotificationService, func() error, error) {
	policy, err := key.ParsePolicy(cfg.PolicySpec)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid NOTIFY_POLICY: %w", err)
	}

	var (
		source  key.Source
		cleanup func() error
	)
	switch cfg.ManifestSource {
	case config.SourcePostgres:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to database: %w", err)
		}
		source = database.NewPostgresKeySource(db, logger)
		cleanup = db.Close
	default:
		reader, err := storage.NewGCSObjectReader(ctx, cfg.GCSBucket, cfg.GCSObject, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create manifest reader: %w", err)
		}
		source = manifest.NewCSVSource(reader, manifest.NewParser(logger))
		cleanup = reader.Close
	}

	sender := infraMail.NewSMTPSender(cfg, logger)
	service := NewExpiryNotificationService(source, sender, policy, cfg.NotificationMode, cfg.FailurePolicy, logger)
	return service, cleanup, nil
}
