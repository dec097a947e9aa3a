package key

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysUntil(t *testing.T) {
	today := date(2026, time.March, 1)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{name: "two weeks out", expiry: date(2026, time.March, 15), want: 14},
		{name: "same day", expiry: date(2026, time.March, 1), want: 0},
		{name: "yesterday", expiry: date(2026, time.February, 28), want: -1},
		{name: "across a month boundary", expiry: date(2026, time.April, 5), want: 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.expiry, today))
		})
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	// A run late in the evening must count the same whole days as one at
	// midnight.
	today := time.Date(2026, time.March, 1, 23, 55, 0, 0, time.Local)
	expiry := date(2026, time.March, 15)
	assert.Equal(t, 14, DaysUntil(expiry, today))
}

func TestEvaluate(t *testing.T) {
	today := date(2026, time.March, 1)
	policy := ExactOrSoonPolicy()

	t.Run("notifiable record", func(t *testing.T) {
		record := Record{KeyName: "K1", ExpiryDate: date(2026, time.March, 15)}
		evaluated, ok := Evaluate(record, today, policy)
		require.True(t, ok)
		assert.Equal(t, 14, evaluated.DaysUntilExpiry)
		assert.True(t, evaluated.Notifiable)
	})

	t.Run("non-notifiable record is not an error", func(t *testing.T) {
		record := Record{KeyName: "K2", ExpiryDate: date(2026, time.March, 6)}
		evaluated, ok := Evaluate(record, today, policy)
		require.True(t, ok)
		assert.Equal(t, 5, evaluated.DaysUntilExpiry)
		assert.False(t, evaluated.Notifiable)
	})

	t.Run("record without expiry is excluded", func(t *testing.T) {
		record := Record{KeyName: "K3"}
		_, ok := Evaluate(record, today, policy)
		assert.False(t, ok)
	})
}

func TestRecordExpiryDateString(t *testing.T) {
	record := Record{ExpiryDate: date(2026, time.March, 15)}
	assert.Equal(t, "15-03-2026", record.ExpiryDateString())
	assert.Equal(t, "N/A", Record{}.ExpiryDateString())
}
