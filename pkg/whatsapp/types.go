package whatsapp

import "time"

// ClientConfig configures the Graph API client. AccessToken is the bearer
// credential held by the surrounding process.
type ClientConfig struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// SendMessageResponse is the provider's reply to a message send.
type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the provider message id of the first accepted message.
func (r *SendMessageResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

type mediaURLResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

type mediaUploadResponse struct {
	ID string `json:"id"`
}

type textMessageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type,omitempty"`
	Text             textPayload `json:"text"`
}

type textPayload struct {
	Body string `json:"body"`
}

type mediaMessageRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Image            *mediaPayload `json:"image,omitempty"`
	Document         *mediaPayload `json:"document,omitempty"`
	Audio            *mediaPayload `json:"audio,omitempty"`
	Video            *mediaPayload `json:"video,omitempty"`
	Sticker          *mediaPayload `json:"sticker,omitempty"`
}

type mediaPayload struct {
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
}
