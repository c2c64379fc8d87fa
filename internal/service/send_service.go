package service

import (
	"context"
	"fmt"
	"io"
	"os"

	apperrors "waconsole/internal/errors"
	"waconsole/internal/metrics"
	"waconsole/internal/models"
	"waconsole/pkg/whatsapp"

	"github.com/sirupsen/logrus"
)

// SendService sends operator replies through the provider and records the
// resulting outbound messages. Local records are created only after the
// provider has confirmed the send; a failed provider call leaves no trace in
// the store.
type SendService struct {
	client          whatsapp.Client
	store           MessageStore
	logger          *logrus.Logger
	maxUploadSizeMB int
}

func NewSendService(client whatsapp.Client, store MessageStore, logger *logrus.Logger, maxUploadSizeMB int) *SendService {
	return &SendService{
		client:          client,
		store:           store,
		logger:          logger,
		maxUploadSizeMB: maxUploadSizeMB,
	}
}

// SendText sends a text reply and persists the outbound message.
func (s *SendService) SendText(ctx context.Context, to, text string) (*models.Message, error) {
	if to == "" || text == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "recipient and text are required")
	}

	resp, err := s.client.SendText(ctx, to, text)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProviderAPI, "failed to send text message")
	}

	msg := &models.Message{
		Recipient: to,
		Text:      text,
		Direction: models.DirectionOutbound,
		Status:    models.MessageStatusSent,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("message sent but failed to record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"recipient":   to,
		"provider_id": resp.MessageID(),
	}).Info("Text message sent")
	metrics.IncrementCounter("outbound_messages_total", map[string]string{"type": "text"}, "Sent outbound messages")

	return msg, nil
}

// SendMedia uploads a binary payload, sends a message referencing the issued
// handle and persists the outbound message. The upload is staged through a
// temp file that is removed regardless of outcome. LocalRef stays empty: the
// binary lives with the provider, not locally.
func (s *SendService) SendMedia(ctx context.Context, to, filename, mimeType string, content io.Reader, caption string) (*models.Message, error) {
	if to == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "recipient is required")
	}

	tempFile, err := os.CreateTemp("", "upload_*")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMediaUpload, "failed to stage upload")
	}
	defer func() {
		tempFile.Close()
		os.Remove(tempFile.Name())
	}()

	maxBytes := int64(s.maxUploadSizeMB) * 1024 * 1024
	size, err := io.Copy(tempFile, io.LimitReader(content, maxBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMediaUpload, "failed to read upload")
	}
	if size == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "upload is empty")
	}
	if size > maxBytes {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
			fmt.Sprintf("upload exceeds %d MB limit", s.maxUploadSizeMB))
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMediaUpload, "failed to rewind upload")
	}

	mediaID, err := s.client.UploadMedia(ctx, filename, mimeType, tempFile)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMediaUpload, "failed to upload media")
	}

	kind := models.KindForMimeType(mimeType)
	resp, err := s.client.SendMedia(ctx, to, string(kind), mediaID, caption)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProviderAPI, "failed to send media message")
	}

	text := caption
	if text == "" {
		text = fmt.Sprintf("[%s]", kind)
	}

	msg := &models.Message{
		Recipient: to,
		Text:      text,
		Media: &models.Media{
			Kind:     kind,
			RemoteID: mediaID,
			MimeType: mimeType,
			Caption:  caption,
		},
		Direction: models.DirectionOutbound,
		Status:    models.MessageStatusSent,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("message sent but failed to record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"recipient":   to,
		"media_kind":  kind,
		"provider_id": resp.MessageID(),
	}).Info("Media message sent")
	metrics.IncrementCounter("outbound_messages_total", map[string]string{"type": string(kind)}, "Sent outbound messages")

	return msg, nil
}
