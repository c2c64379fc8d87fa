package service

import (
	"context"
	"errors"
	"time"

	"waconsole/internal/metrics"
	"waconsole/internal/models"

	"github.com/sirupsen/logrus"
)

// AckAlways is the webhook acknowledgment policy: the endpoint returns 200 to
// the upstream sender regardless of internal processing outcome. Failed
// events are logged and lost rather than redelivered, because the upstream
// retry semantics are unknown and a failure-triggered retry storm would be
// worse. Revisit deliberately, not by "fixing" a handler.
const AckAlways = true

// MessageStore is the persistence surface the inbound pipeline needs.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	UpdateStatusByRecipient(ctx context.Context, recipientID string, status models.MessageStatus) error
}

// MediaFetcher resolves a remote media handle to a local reference.
type MediaFetcher interface {
	Fetch(ctx context.Context, remoteID, mimeType string) (string, error)
}

// Notifier receives newly recorded inbound messages for console push.
type Notifier interface {
	PublishMessage(msg *models.Message)
}

// WebhookService runs the inbound pipeline: normalize, fetch media, persist,
// reconcile status.
type WebhookService struct {
	store        MessageStore
	fetcher      MediaFetcher
	notifier     Notifier
	logger       *logrus.Logger
	fetchTimeout time.Duration
}

func NewWebhookService(store MessageStore, fetcher MediaFetcher, notifier Notifier, logger *logrus.Logger, fetchTimeout time.Duration) *WebhookService {
	return &WebhookService{
		store:        store,
		fetcher:      fetcher,
		notifier:     notifier,
		logger:       logger,
		fetchTimeout: fetchTimeout,
	}
}

// ProcessEvent applies one webhook envelope. The returned error is for
// logging only; under AckAlways the caller acknowledges receipt either way.
func (s *WebhookService) ProcessEvent(ctx context.Context, payload *models.WebhookPayload) error {
	msg, status := NormalizeEvent(payload)

	var errs []error

	if msg != nil {
		if err := s.recordInboundMessage(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}

	if status != nil {
		if err := s.applyStatusUpdate(ctx, status); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *WebhookService) recordInboundMessage(ctx context.Context, msg *models.Message) error {
	if msg.Media != nil {
		// Bounded inline fetch: a slow or hanging download times out and the
		// message is recorded without a local reference. No retry.
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		ref, err := s.fetcher.Fetch(fetchCtx, msg.Media.RemoteID, msg.Media.MimeType)
		cancel()
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"media_id":   msg.Media.RemoteID,
				"media_kind": msg.Media.Kind,
			}).WithError(err).Warn("Media fetch failed, recording message without local reference")
			metrics.IncrementCounter("media_fetch_failures_total", nil, "Failed media downloads")
		} else {
			msg.Media.LocalRef = ref
		}
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		s.logger.WithField("sender", msg.Sender).WithError(err).Error("Failed to persist inbound message")
		return err
	}

	metrics.IncrementCounter("inbound_messages_total", nil, "Recorded inbound messages")

	if s.notifier != nil {
		s.notifier.PublishMessage(msg)
	}

	return nil
}

func (s *WebhookService) applyStatusUpdate(ctx context.Context, update *models.StatusUpdate) error {
	if err := s.store.UpdateStatusByRecipient(ctx, update.RecipientID, update.Status); err != nil {
		s.logger.WithFields(logrus.Fields{
			"recipient": update.RecipientID,
			"status":    update.Status,
		}).WithError(err).Error("Failed to apply status update")
		return err
	}

	metrics.IncrementCounter("status_updates_total", map[string]string{
		"status": string(update.Status),
	}, "Applied delivery status updates")

	return nil
}
