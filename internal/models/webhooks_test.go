package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstValue(t *testing.T) {
	t.Run("nil payload", func(t *testing.T) {
		var p *WebhookPayload
		assert.Nil(t, p.FirstValue())
	})

	t.Run("empty envelope", func(t *testing.T) {
		assert.Nil(t, (&WebhookPayload{}).FirstValue())
	})

	t.Run("entry without changes", func(t *testing.T) {
		p := &WebhookPayload{Entry: []WebhookEntry{{ID: "1"}}}
		assert.Nil(t, p.FirstValue())
	})

	t.Run("full envelope", func(t *testing.T) {
		p := &WebhookPayload{Entry: []WebhookEntry{{
			Changes: []WebhookChange{{Value: WebhookValue{MessagingProduct: "whatsapp"}}},
		}}}
		value := p.FirstValue()
		require.NotNil(t, value)
		assert.Equal(t, "whatsapp", value.MessagingProduct)
	})
}

func TestWebhookPayloadDecoding(t *testing.T) {
	raw := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"messages": [{
						"from": "111",
						"id": "wamid.1",
						"type": "image",
						"image": {"id": "m1", "mime_type": "image/jpeg", "caption": "sunset"}
					}],
					"statuses": [{
						"id": "wamid.2",
						"recipient_id": "222",
						"status": "delivered"
					}]
				}
			}]
		}]
	}`

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	value := payload.FirstValue()
	require.NotNil(t, value)
	require.Len(t, value.Messages, 1)
	require.Len(t, value.Statuses, 1)

	msg := value.Messages[0]
	assert.Equal(t, "111", msg.From)
	assert.Equal(t, "image", msg.Type)
	require.NotNil(t, msg.Image)
	assert.Equal(t, "m1", msg.Image.ID)
	assert.Equal(t, "image/jpeg", msg.Image.MimeType)
	assert.Equal(t, "sunset", msg.Image.Caption)
	assert.Nil(t, msg.Text)
	assert.Nil(t, msg.Document)

	status := value.Statuses[0]
	assert.Equal(t, "222", status.RecipientID)
	assert.Equal(t, "delivered", status.Status)
}

func TestWebhookPayloadDecodingPartialShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"status only", `{"entry":[{"changes":[{"value":{"statuses":[{"recipient_id":"9"}]}}]}]}`},
		{"unknown fields ignored", `{"entry":[{"changes":[{"value":{"metadata":{"x":1}}}]}],"extra":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload WebhookPayload
			assert.NoError(t, json.Unmarshal([]byte(tt.raw), &payload))
		})
	}
}
