package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"waconsole/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func imageEventPayload(t *testing.T) *models.WebhookPayload {
	t.Helper()
	raw := `{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"field": "messages", "value": {
			"messages": [{"from": "111", "id": "wamid.1", "type": "image",
				"image": {"id": "m1", "mime_type": "image/jpeg", "caption": "sunset"}}]
		}}]}]
	}`
	var payload models.WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return &payload
}

func statusEventPayload(t *testing.T, status string) *models.WebhookPayload {
	t.Helper()
	raw := fmt.Sprintf(`{
		"entry": [{"changes": [{"value": {
			"statuses": [{"recipient_id": "222", "status": %q}]
		}}]}]
	}`, status)
	var payload models.WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return &payload
}

func TestProcessEventMediaMessage(t *testing.T) {
	store := &mockStore{}
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, remoteID, mimeType string) (string, error) {
			assert.Equal(t, "m1", remoteID)
			assert.Equal(t, "image/jpeg", mimeType)
			return "/media/m1.jpg", nil
		},
	}
	notifier := &mockNotifier{}
	svc := NewWebhookService(store, fetcher, notifier, testLogger(), 5*time.Second)

	require.NoError(t, svc.ProcessEvent(context.Background(), imageEventPayload(t)))

	require.Len(t, store.savedMessages, 1)
	saved := store.savedMessages[0]
	assert.Equal(t, "111", saved.Sender)
	assert.Equal(t, "sunset", saved.Text)
	assert.Equal(t, models.DirectionInbound, saved.Direction)
	assert.Equal(t, models.MessageStatusSeen, saved.Status)
	require.NotNil(t, saved.Media)
	assert.Equal(t, "/media/m1.jpg", saved.Media.LocalRef)

	require.Len(t, notifier.published, 1)
	assert.Same(t, saved, notifier.published[0])
}

func TestProcessEventMediaFetchFailure(t *testing.T) {
	store := &mockStore{}
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, remoteID, mimeType string) (string, error) {
			return "", fmt.Errorf("download failed")
		},
	}
	svc := NewWebhookService(store, fetcher, &mockNotifier{}, testLogger(), 5*time.Second)

	// A failed fetch does not fail the event: the message is still recorded,
	// just without a local reference.
	require.NoError(t, svc.ProcessEvent(context.Background(), imageEventPayload(t)))

	require.Len(t, store.savedMessages, 1)
	saved := store.savedMessages[0]
	require.NotNil(t, saved.Media)
	assert.Empty(t, saved.Media.LocalRef)
	assert.Equal(t, "m1", saved.Media.RemoteID)
}

func TestProcessEventFetchTimeout(t *testing.T) {
	store := &mockStore{}
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, remoteID, mimeType string) (string, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Millisecond), deadline, time.Second)
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	svc := NewWebhookService(store, fetcher, nil, testLogger(), time.Millisecond)

	require.NoError(t, svc.ProcessEvent(context.Background(), imageEventPayload(t)))
	require.Len(t, store.savedMessages, 1)
	assert.Empty(t, store.savedMessages[0].Media.LocalRef)
}

func TestProcessEventStoreFailure(t *testing.T) {
	store := &mockStore{
		saveMessageFn: func(ctx context.Context, msg *models.Message) error {
			return fmt.Errorf("disk full")
		},
	}
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, remoteID, mimeType string) (string, error) {
			return "/media/m1.jpg", nil
		},
	}
	notifier := &mockNotifier{}
	svc := NewWebhookService(store, fetcher, notifier, testLogger(), time.Second)

	err := svc.ProcessEvent(context.Background(), imageEventPayload(t))
	assert.Error(t, err)
	assert.Empty(t, notifier.published)
}

func TestProcessEventStatusUpdate(t *testing.T) {
	store := &mockStore{}
	svc := NewWebhookService(store, &mockFetcher{}, nil, testLogger(), time.Second)

	require.NoError(t, svc.ProcessEvent(context.Background(), statusEventPayload(t, "read")))

	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, "222", store.statusUpdates[0].RecipientID)
	assert.Equal(t, models.MessageStatusSeen, store.statusUpdates[0].Status)
	assert.Empty(t, store.savedMessages)
}

func TestProcessEventUnknownStatusIgnored(t *testing.T) {
	store := &mockStore{}
	svc := NewWebhookService(store, &mockFetcher{}, nil, testLogger(), time.Second)

	require.NoError(t, svc.ProcessEvent(context.Background(), statusEventPayload(t, "failed")))
	assert.Empty(t, store.statusUpdates)
}

func TestProcessEventEmptyEnvelope(t *testing.T) {
	store := &mockStore{}
	svc := NewWebhookService(store, &mockFetcher{}, nil, testLogger(), time.Second)

	require.NoError(t, svc.ProcessEvent(context.Background(), &models.WebhookPayload{}))
	assert.Empty(t, store.savedMessages)
	assert.Empty(t, store.statusUpdates)
}
