package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Manifest source kinds.
const (
	SourceGCS      = "gcs"
	SourcePostgres = "postgres"
)

// Notification modes. Single sends one alert per notifiable key as it is
// found; consolidated batches a recipient's keys into one tabular alert.
const (
	ModeSingle       = "single"
	ModeConsolidated = "consolidated"
)

// Failure policies applied when the mail retry budget is exhausted.
const (
	FailurePropagate = "propagate"
	FailureSwallow   = "swallow"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	ManifestSource string // "gcs" or "postgres"
	GCSBucket      string
	GCSObject      string
	DatabaseURL    string

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SenderAddress string
	SenderName    string

	NotificationMode string // "single" or "consolidated"
	PolicySpec       string // band list, e.g. "14,1-3" or "0-30"
	FailurePolicy    string // "propagate" or "swallow"
	MailRetryCount   int
	MailRetryDelay   time.Duration

	CronSpec        string
	TelegramToken   string // optional; run summaries are skipped when empty
	AdminTelegramID int64  // chat receiving run summaries
	LogLevel        string
	Environment     string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.ManifestSource = strings.ToLower(os.Getenv("MANIFEST_SOURCE"))
	if cfg.ManifestSource == "" {
		cfg.ManifestSource = SourceGCS
	}
	switch cfg.ManifestSource {
	case SourceGCS:
		cfg.GCSBucket = os.Getenv("GCS_BUCKET")
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is not set")
		}
		cfg.GCSObject = os.Getenv("GCS_OBJECT")
		if cfg.GCSObject == "" {
			cfg.GCSObject = "keys.csv"
		}
	case SourcePostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid MANIFEST_SOURCE %q (want %q or %q)", cfg.ManifestSource, SourceGCS, SourcePostgres)
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set")
	}
	portStr := os.Getenv("SMTP_PORT")
	if portStr == "" {
		portStr = "587"
	}
	cfg.SMTPPort, err = strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	cfg.SenderAddress = os.Getenv("SENDER_ADDRESS")
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("SENDER_ADDRESS is not set")
	}
	cfg.SenderName = os.Getenv("SENDER_NAME")
	if cfg.SenderName == "" {
		cfg.SenderName = "Key Expiry Notifier"
	}

	cfg.NotificationMode = strings.ToLower(os.Getenv("NOTIFICATION_MODE"))
	if cfg.NotificationMode == "" {
		cfg.NotificationMode = ModeConsolidated
	}
	if cfg.NotificationMode != ModeSingle && cfg.NotificationMode != ModeConsolidated {
		return nil, fmt.Errorf("invalid NOTIFICATION_MODE %q (want %q or %q)", cfg.NotificationMode, ModeSingle, ModeConsolidated)
	}

	cfg.PolicySpec = os.Getenv("NOTIFY_POLICY")
	if cfg.PolicySpec == "" {
		// Default matches the notification mode: the per-key variant
		// historically used the two-band policy, the consolidated one a
		// 31-day lead window.
		if cfg.NotificationMode == ModeSingle {
			cfg.PolicySpec = "14,1-3"
		} else {
			cfg.PolicySpec = "0-30"
		}
	}

	cfg.FailurePolicy = strings.ToLower(os.Getenv("SEND_FAILURE_POLICY"))
	if cfg.FailurePolicy == "" {
		// Historical pairing: the per-key variant aborted the key on send
		// exhaustion, the consolidated variant carried on.
		if cfg.NotificationMode == ModeSingle {
			cfg.FailurePolicy = FailurePropagate
		} else {
			cfg.FailurePolicy = FailureSwallow
		}
	}
	if cfg.FailurePolicy != FailurePropagate && cfg.FailurePolicy != FailureSwallow {
		return nil, fmt.Errorf("invalid SEND_FAILURE_POLICY %q (want %q or %q)", cfg.FailurePolicy, FailurePropagate, FailureSwallow)
	}

	retryStr := os.Getenv("MAIL_RETRY_COUNT")
	if retryStr == "" {
		retryStr = "3"
	}
	cfg.MailRetryCount, err = strconv.Atoi(retryStr)
	if err != nil || cfg.MailRetryCount < 1 {
		return nil, fmt.Errorf("invalid MAIL_RETRY_COUNT %q", retryStr)
	}

	delayStr := os.Getenv("MAIL_RETRY_DELAY")
	if delayStr == "" {
		delayStr = "1s"
	}
	cfg.MailRetryDelay, err = time.ParseDuration(delayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_RETRY_DELAY: %w", err)
	}

	cfg.CronSpec = os.Getenv("CRON_SPEC")
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 9 * * *" // Default: 9:00 AM daily
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set but TELEGRAM_TOKEN is")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}
