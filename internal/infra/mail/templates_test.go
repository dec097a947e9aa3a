package mail

import (
	"strings"
	"testing"
	"time"

	"key_expiry_notifier/internal/domain/key"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluated(feed, name string, expiry time.Time, days int) key.Evaluated {
	return key.Evaluated{
		Record:          key.Record{FeedName: feed, KeyName: name, ExpiryDate: expiry},
		DaysUntilExpiry: days,
		Notifiable:      true,
	}
}

func TestRenderSingle(t *testing.T) {
	e := evaluated("orders", "K1", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), 14)

	subject, htmlBody, textBody, err := RenderSingle(e)
	require.NoError(t, err)

	assert.Equal(t, "Key Expiration Alert: K1 - Action Required", subject)

	for _, body := range []string{htmlBody, textBody} {
		assert.Contains(t, body, "K1")
		assert.Contains(t, body, "15-03-2026")
		assert.Contains(t, body, "14")
	}
	assert.Contains(t, htmlBody, "Action Required")
	assert.Contains(t, textBody, "ACTION REQUIRED")
}

func TestRenderSingleEscapesHTML(t *testing.T) {
	e := evaluated("orders", "<script>alert(1)</script>", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), 14)

	_, htmlBody, _, err := RenderSingle(e)
	require.NoError(t, err)
	assert.NotContains(t, htmlBody, "<script>")
}

func TestRenderConsolidated(t *testing.T) {
	expiry1 := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	expiry2 := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	bundle := &key.Bundle{
		Recipient: "a@x.com",
		Keys: []key.Evaluated{
			evaluated("orders", "K1", expiry1, 14),
			evaluated("billing", "K2", expiry2, 19),
		},
	}

	subject, htmlBody, textBody, err := RenderConsolidated(bundle)
	require.NoError(t, err)

	assert.Equal(t, "GPG Key Expiration ALERT - Action Required", subject)

	// Exactly two table rows, numbered from 1 in bundle order.
	assert.Equal(t, 2, strings.Count(htmlBody, "<tr>")-1, "one header row plus one row per key")
	k1 := strings.Index(htmlBody, "K1")
	k2 := strings.Index(htmlBody, "K2")
	require.Positive(t, k1)
	require.Positive(t, k2)
	assert.Less(t, k1, k2, "rows follow bundle order")

	assert.Contains(t, textBody, "1. orders | K1 | 15-03-2026 | 14 days")
	assert.Contains(t, textBody, "2. billing | K2 | 20-03-2026 | 19 days")

	for _, col := range []string{"S.No", "Feed Name", "GPG Private Key", "Expiry Date", "Days Remaining"} {
		assert.Contains(t, htmlBody, col)
	}
}
