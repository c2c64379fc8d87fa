package models

// WebhookPayload is the envelope delivered by the provider. Every level is
// optional: retries, status-only deliveries and future event shapes all arrive
// through the same endpoint, so absent fields are normal, not errors.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages"`
	Statuses         []WebhookStatus  `json:"statuses"`
}

// WebhookMessage carries one per-kind payload pointer matching its Type tag.
// Unrecognized types leave all pointers nil and the message is treated as
// plain text.
type WebhookMessage struct {
	ID        string              `json:"id"`
	From      string              `json:"from"`
	Timestamp string              `json:"timestamp"`
	Type      string              `json:"type"`
	Text      *WebhookText        `json:"text,omitempty"`
	Image     *WebhookMediaObject `json:"image,omitempty"`
	Document  *WebhookMediaObject `json:"document,omitempty"`
	Audio     *WebhookMediaObject `json:"audio,omitempty"`
	Video     *WebhookMediaObject `json:"video,omitempty"`
	Sticker   *WebhookMediaObject `json:"sticker,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookMediaObject struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}

type WebhookStatus struct {
	ID          string `json:"id"`
	RecipientID string `json:"recipient_id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

// FirstValue returns the first change value in the envelope, or nil when the
// envelope carries none.
func (p *WebhookPayload) FirstValue() *WebhookValue {
	if p == nil || len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	return &p.Entry[0].Changes[0].Value
}
