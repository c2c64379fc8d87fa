package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionForMimeType(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		expected string
	}{
		{"jpeg", "image/jpeg", "jpg"},
		{"png", "image/png", "png"},
		{"ogg audio", "audio/ogg", "ogg"},
		{"pdf", "application/pdf", "pdf"},
		{"plain text", "text/plain", "txt"},
		{"msword", "application/msword", "doc"},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
		{"with parameters", "audio/ogg; codecs=opus", "ogg"},
		{"uppercase", "IMAGE/JPEG", "jpg"},
		{"unknown subtype falls back", "application/zip", "zip"},
		{"word-ish subtype normalized", "application/x-word", "docx"},
		{"plain subtype normalized", "text2/plain", "txt"},
		{"empty", "", "bin"},
		{"no slash", "gibberish", "bin"},
		{"trailing slash", "application/", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtensionForMimeType(tt.mimeType))
		})
	}
}
