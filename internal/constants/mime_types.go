package constants

import "strings"

// MimeTypeExtensions maps the MIME types the provider is known to deliver to
// the extension used for locally stored media files.
var MimeTypeExtensions = map[string]string{
	// Image formats
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",

	// Audio formats
	"audio/ogg":  "ogg",
	"audio/mpeg": "mp3",
	"audio/mp4":  "m4a",
	"audio/aac":  "aac",
	"audio/amr":  "amr",
	"audio/wav":  "wav",

	// Video formats
	"video/mp4":  "mp4",
	"video/3gpp": "3gp",

	// Document formats
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.ms-excel": "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"text/plain": "txt",
}

// DefaultExtension is used when a MIME type yields no usable subtype.
const DefaultExtension = "bin"

// ExtensionForMimeType resolves a file extension for a MIME type. Types
// outside the explicit table fall back to their subtype, normalizing the
// irregular cases ("plain" means text, anything word-ish is a docx).
func ExtensionForMimeType(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	if ext, ok := MimeTypeExtensions[mt]; ok {
		return ext
	}

	slash := strings.Index(mt, "/")
	if slash < 0 || slash == len(mt)-1 {
		return DefaultExtension
	}

	subtype := mt[slash+1:]
	switch {
	case subtype == "plain":
		return "txt"
	case strings.Contains(subtype, "word"):
		return "docx"
	}
	return subtype
}
