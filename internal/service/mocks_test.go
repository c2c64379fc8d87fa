package service

import (
	"context"
	"io"

	"waconsole/internal/models"
	"waconsole/pkg/whatsapp"
)

type mockStore struct {
	saveMessageFn  func(ctx context.Context, msg *models.Message) error
	updateStatusFn func(ctx context.Context, recipientID string, status models.MessageStatus) error
	savedMessages  []*models.Message
	statusUpdates  []models.StatusUpdate
}

func (m *mockStore) SaveMessage(ctx context.Context, msg *models.Message) error {
	if m.saveMessageFn != nil {
		return m.saveMessageFn(ctx, msg)
	}
	m.savedMessages = append(m.savedMessages, msg)
	return nil
}

func (m *mockStore) UpdateStatusByRecipient(ctx context.Context, recipientID string, status models.MessageStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, recipientID, status)
	}
	m.statusUpdates = append(m.statusUpdates, models.StatusUpdate{RecipientID: recipientID, Status: status})
	return nil
}

type mockFetcher struct {
	fetchFn func(ctx context.Context, remoteID, mimeType string) (string, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, remoteID, mimeType string) (string, error) {
	return m.fetchFn(ctx, remoteID, mimeType)
}

type mockNotifier struct {
	published []*models.Message
}

func (m *mockNotifier) PublishMessage(msg *models.Message) {
	m.published = append(m.published, msg)
}

type mockChatStore struct {
	summariesFn    func(ctx context.Context) ([]models.ChatSummary, error)
	conversationFn func(ctx context.Context, contactID string) ([]models.Message, error)
	markSeenFn     func(ctx context.Context, contactID string) error
	seenContacts   []string
}

func (m *mockChatStore) GetChatSummaries(ctx context.Context) ([]models.ChatSummary, error) {
	return m.summariesFn(ctx)
}

func (m *mockChatStore) GetConversation(ctx context.Context, contactID string) ([]models.Message, error) {
	return m.conversationFn(ctx, contactID)
}

func (m *mockChatStore) MarkInboundSeen(ctx context.Context, contactID string) error {
	if m.markSeenFn != nil {
		return m.markSeenFn(ctx, contactID)
	}
	m.seenContacts = append(m.seenContacts, contactID)
	return nil
}

type mockWhatsAppClient struct {
	sendTextFn    func(ctx context.Context, to, body string) (*whatsapp.SendMessageResponse, error)
	sendMediaFn   func(ctx context.Context, to, mediaType, mediaID, caption string) (*whatsapp.SendMessageResponse, error)
	uploadMediaFn func(ctx context.Context, filename, mimeType string, r io.Reader) (string, error)
}

func (m *mockWhatsAppClient) GetMediaURL(ctx context.Context, mediaID string) (string, error) {
	return "", nil
}

func (m *mockWhatsAppClient) DownloadMedia(ctx context.Context, url string) (io.ReadCloser, error) {
	return nil, nil
}

func (m *mockWhatsAppClient) SendText(ctx context.Context, to, body string) (*whatsapp.SendMessageResponse, error) {
	return m.sendTextFn(ctx, to, body)
}

func (m *mockWhatsAppClient) UploadMedia(ctx context.Context, filename, mimeType string, r io.Reader) (string, error) {
	return m.uploadMediaFn(ctx, filename, mimeType, r)
}

func (m *mockWhatsAppClient) SendMedia(ctx context.Context, to, mediaType, mediaID, caption string) (*whatsapp.SendMessageResponse, error) {
	return m.sendMediaFn(ctx, to, mediaType, mediaID, caption)
}
