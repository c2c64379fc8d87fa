package models

import (
	"strings"
	"time"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusSeen      MessageStatus = "seen"
)

// ParseMessageStatus maps a provider status string onto the local status enum.
// The provider reports "read" where the store uses "seen". Unknown values
// return false so callers can drop the update instead of widening the enum.
func ParseMessageStatus(s string) (MessageStatus, bool) {
	switch s {
	case "sent":
		return MessageStatusSent, true
	case "delivered":
		return MessageStatusDelivered, true
	case "read", "seen":
		return MessageStatusSeen, true
	default:
		return "", false
	}
}

type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindDocument MediaKind = "document"
	MediaKindAudio    MediaKind = "audio"
	MediaKindVideo    MediaKind = "video"
	MediaKindSticker  MediaKind = "sticker"
)

// KindForMimeType derives the media kind for an outbound upload from its MIME
// type. Anything that is not image, audio or video is sent as a document.
func KindForMimeType(mimeType string) MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaKindImage
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaKindAudio
	case strings.HasPrefix(mimeType, "video/"):
		return MediaKindVideo
	default:
		return MediaKindDocument
	}
}

// Media describes an attachment carried by a message. LocalRef is empty when
// the download failed or when the binary only exists at the provider.
type Media struct {
	Kind     MediaKind `json:"kind"`
	RemoteID string    `json:"remoteId"`
	MimeType string    `json:"mimeType,omitempty"`
	LocalRef string    `json:"localRef,omitempty"`
	Caption  string    `json:"caption,omitempty"`
}

// Message is the persisted conversation entity. Exactly one of Sender or
// Recipient is populated, depending on Direction.
type Message struct {
	ID        int64         `json:"id"`
	Sender    string        `json:"sender,omitempty"`
	Recipient string        `json:"recipient,omitempty"`
	Text      string        `json:"text,omitempty"`
	Media     *Media        `json:"media,omitempty"`
	Direction Direction     `json:"direction"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// StatusUpdate is the command produced from a webhook status event.
type StatusUpdate struct {
	RecipientID string
	Status      MessageStatus
}

// ChatSummary is one row of the conversation list: the latest message seen
// from a contact.
type ChatSummary struct {
	Contact       string    `json:"contact"`
	LastText      string    `json:"lastText,omitempty"`
	LastMediaKind MediaKind `json:"lastMediaKind,omitempty"`
	LastAt        time.Time `json:"lastAt"`
}
