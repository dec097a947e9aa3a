package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"key_expiry_notifier/internal/domain/key"
	"key_expiry_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	manifest *key.Manifest
	err      error
}

func (f *fakeSource) Load(ctx context.Context) (*key.Manifest, error) {
	return f.manifest, f.err
}

type sentMail struct {
	recipients []string
	subject    string
	htmlBody   string
	textBody   string
}

type fakeSender struct {
	sent []sentMail
	err  error // returned for every send when set
}

func (f *fakeSender) Send(recipients []string, subject, htmlBody, textBody string) error {
	f.sent = append(f.sent, sentMail{recipients, subject, htmlBody, textBody})
	return f.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func today() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func record(name string, expiry time.Time, recipients ...string) key.Record {
	return key.Record{FeedName: "orders", KeyName: name, ExpiryDate: expiry, Recipients: recipients}
}

func TestRunSingleModeEndToEnd(t *testing.T) {
	// One row, key K1, expiry today+14, one recipient: exactly one send
	// with the key name in the subject.
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{record("K1", today().AddDate(0, 0, 14), "r@x.com")},
		Rows:    1,
	}}
	sender := &fakeSender{}
	service := NewExpiryNotificationService(source, sender, key.ExactOrSoonPolicy(),
		config.ModeSingle, config.FailurePropagate, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Notified)
	assert.Zero(t, result.Errors)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"r@x.com"}, sender.sent[0].recipients)
	assert.Contains(t, sender.sent[0].subject, "K1")
	assert.Equal(t, "Processed 1 keys, sent 1 notifications, encountered 0 errors", result.Summary())
}

func TestRunSingleModeSkipsNonNotifiable(t *testing.T) {
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{record("K1", today().AddDate(0, 0, 5), "r@x.com")},
		Rows:    1,
	}}
	sender := &fakeSender{}
	service := NewExpiryNotificationService(source, sender, key.ExactOrSoonPolicy(),
		config.ModeSingle, config.FailurePropagate, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Notified)
	assert.Zero(t, result.Errors)
	assert.Empty(t, sender.sent)
}

func TestRunConsolidatedModeBundlesPerRecipient(t *testing.T) {
	// Two keys sharing one recipient produce one consolidated mail for
	// that recipient and one for the second recipient.
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{
			record("K1", today().AddDate(0, 0, 10), "a@x.com", "b@x.com"),
			record("K2", today().AddDate(0, 0, 20), "a@x.com"),
		},
		Rows: 2,
	}}
	sender := &fakeSender{}
	service := NewExpiryNotificationService(source, sender, key.WindowPolicy(),
		config.ModeConsolidated, config.FailureSwallow, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Notified)
	require.Len(t, sender.sent, 2)

	assert.Equal(t, []string{"a@x.com"}, sender.sent[0].recipients)
	assert.Equal(t, []string{"b@x.com"}, sender.sent[1].recipients)

	// a@x.com's mail carries both keys in manifest order, numbered 1 and 2.
	assert.Contains(t, sender.sent[0].textBody, "1. orders | K1")
	assert.Contains(t, sender.sent[0].textBody, "2. orders | K2")
	assert.NotContains(t, sender.sent[1].textBody, "K2")
}

func TestRunPropagatesSendFailures(t *testing.T) {
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{record("K1", today().AddDate(0, 0, 14), "r@x.com")},
		Rows:    1,
	}}
	sender := &fakeSender{err: errors.New("smtp down")}
	service := NewExpiryNotificationService(source, sender, key.ExactOrSoonPolicy(),
		config.ModeSingle, config.FailurePropagate, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err, "send failures never abort the run")

	assert.Zero(t, result.Notified)
	assert.Equal(t, 1, result.Errors)
}

func TestRunSwallowsSendFailures(t *testing.T) {
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{
			record("K1", today().AddDate(0, 0, 10), "a@x.com"),
			record("K2", today().AddDate(0, 0, 10), "b@x.com"),
		},
		Rows: 2,
	}}
	sender := &fakeSender{err: errors.New("smtp down")}
	service := NewExpiryNotificationService(source, sender, key.WindowPolicy(),
		config.ModeConsolidated, config.FailureSwallow, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err)

	assert.Zero(t, result.Notified, "zero successes counted")
	assert.Zero(t, result.Errors, "swallow policy records no errors")
	assert.Len(t, sender.sent, 2, "one recipient's failure must not stop the next")
}

func TestRunCarriesManifestErrors(t *testing.T) {
	// A row that failed to parse shows up in the run counters.
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{record("K1", today().AddDate(0, 0, 14), "r@x.com")},
		Rows:    2,
		Errors:  1,
	}}
	sender := &fakeSender{}
	service := NewExpiryNotificationService(source, sender, key.ExactOrSoonPolicy(),
		config.ModeSingle, config.FailurePropagate, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, 1, result.Errors)
}

func TestRunFailsWhenManifestUnreachable(t *testing.T) {
	source := &fakeSource{err: errors.New("bucket unreachable")}
	service := NewExpiryNotificationService(source, &fakeSender{}, key.WindowPolicy(),
		config.ModeConsolidated, config.FailureSwallow, testLogger())

	result, err := service.Run(context.Background(), today())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "bucket unreachable")
}

func TestRunSingleModeWithoutRecipients(t *testing.T) {
	source := &fakeSource{manifest: &key.Manifest{
		Records: []key.Record{record("K1", today().AddDate(0, 0, 14))},
		Rows:    1,
	}}
	sender := &fakeSender{}
	service := NewExpiryNotificationService(source, sender, key.ExactOrSoonPolicy(),
		config.ModeSingle, config.FailurePropagate, testLogger())

	result, err := service.Run(context.Background(), today())
	require.NoError(t, err)

	assert.Empty(t, sender.sent)
	assert.Zero(t, result.Errors, "a notifiable key without recipients is logged, not an error")
}
