package key

import (
	"strings"
	"time"
)

// UnknownName is the fallback for records that omit a key or feed name.
const UnknownName = "unknown"

// ExpiryDateLayout is the textual format expiry dates use in the manifest,
// day-month-year (e.g. "28-02-2026").
const ExpiryDateLayout = "02-01-2006"

// Record is one normalized row of the key manifest.
type Record struct {
	FeedName   string
	KeyName    string
	ExpiryDate time.Time // zero when the manifest carried no usable date
	Recipients []string
}

// HasExpiry reports whether the record carries a parseable expiry date.
// Records without one are excluded from evaluation entirely.
func (r Record) HasExpiry() bool {
	return !r.ExpiryDate.IsZero()
}

// ExpiryDateString renders the expiry date back in manifest format.
func (r Record) ExpiryDateString() string {
	if !r.HasExpiry() {
		return "N/A"
	}
	return r.ExpiryDate.Format(ExpiryDateLayout)
}

// SplitRecipients turns a comma-separated address field into a clean
// recipient list: addresses are trimmed and empty segments dropped.
func SplitRecipients(field string) []string {
	var recipients []string
	for _, part := range strings.Split(field, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		recipients = append(recipients, addr)
	}
	return recipients
}

// Evaluated is a Record annotated with the outcome of policy evaluation.
type Evaluated struct {
	Record
	DaysUntilExpiry int // negative means already expired
	Notifiable      bool
}

// Manifest is the result of loading a key source: the usable records plus
// the row-level bookkeeping the run summary reports.
type Manifest struct {
	Records []Record
	Rows    int // data rows seen, including skipped and failed ones
	Skipped int // rows without a usable expiry date (absent or "N/A")
	Errors  int // rows dropped because they could not be parsed
}
