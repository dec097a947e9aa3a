package key

import "time"

// DaysUntil counts the whole days from today to the expiry date, using the
// date component only. A key expiring later today yields 0; a key that
// expired yesterday yields -1.
func DaysUntil(expiry, today time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

// Evaluate annotates a record with its days-until-expiry and the policy
// verdict. The second return value is false for records without a usable
// expiry date; those never produce an Evaluated entry.
func Evaluate(record Record, today time.Time, policy Policy) (Evaluated, bool) {
	if !record.HasExpiry() {
		return Evaluated{}, false
	}
	days := DaysUntil(record.ExpiryDate, today)
	return Evaluated{
		Record:          record,
		DaysUntilExpiry: days,
		Notifiable:      policy.Notifiable(days),
	}, true
}
