package service

import (
	"waconsole/internal/models"
)

// NormalizeEvent parses one webhook envelope into canonical commands: an
// inbound message to record and/or a status update to apply. Either or both
// may be nil; missing or unrecognized fields drop the corresponding command
// instead of failing.
func NormalizeEvent(payload *models.WebhookPayload) (*models.Message, *models.StatusUpdate) {
	value := payload.FirstValue()
	if value == nil {
		return nil, nil
	}

	var msg *models.Message
	if len(value.Messages) > 0 {
		msg = normalizeMessage(&value.Messages[0])
	}

	var status *models.StatusUpdate
	if len(value.Statuses) > 0 {
		status = normalizeStatus(&value.Statuses[0])
	}

	return msg, status
}

func normalizeMessage(wm *models.WebhookMessage) *models.Message {
	if wm.From == "" {
		return nil
	}

	media := extractMedia(wm)

	text := ""
	if wm.Text != nil {
		text = wm.Text.Body
	}
	// Caption backfill happens here, before persistence.
	if text == "" && media != nil && media.Caption != "" {
		text = media.Caption
	}

	return &models.Message{
		Sender:    wm.From,
		Text:      text,
		Media:     media,
		Direction: models.DirectionInbound,
		Status:    models.MessageStatusSeen,
	}
}

// extractMedia pattern-matches the declared type tag against its sub-object.
// Any other or absent type is treated as plain text and yields no media.
func extractMedia(wm *models.WebhookMessage) *models.Media {
	var (
		kind models.MediaKind
		obj  *models.WebhookMediaObject
	)

	switch wm.Type {
	case "image":
		kind, obj = models.MediaKindImage, wm.Image
	case "document":
		kind, obj = models.MediaKindDocument, wm.Document
	case "audio":
		kind, obj = models.MediaKindAudio, wm.Audio
	case "video":
		kind, obj = models.MediaKindVideo, wm.Video
	case "sticker":
		kind, obj = models.MediaKindSticker, wm.Sticker
	default:
		return nil
	}

	// A recognized type tag without its sub-object, or without a remote id,
	// cannot form a valid media record.
	if obj == nil || obj.ID == "" {
		return nil
	}

	return &models.Media{
		Kind:     kind,
		RemoteID: obj.ID,
		MimeType: obj.MimeType,
		Caption:  obj.Caption,
	}
}

func normalizeStatus(ws *models.WebhookStatus) *models.StatusUpdate {
	if ws.RecipientID == "" {
		return nil
	}
	status, ok := models.ParseMessageStatus(ws.Status)
	if !ok {
		return nil
	}
	return &models.StatusUpdate{
		RecipientID: ws.RecipientID,
		Status:      status,
	}
}
