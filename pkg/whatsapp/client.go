package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client is the outbound dependency on the remote provider: media-URL
// resolution, binary download, message send and media upload.
type Client interface {
	GetMediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, url string) (io.ReadCloser, error)
	SendText(ctx context.Context, to, body string) (*SendMessageResponse, error)
	UploadMedia(ctx context.Context, filename, mimeType string, r io.Reader) (string, error)
	SendMedia(ctx context.Context, to, mediaType, mediaID, caption string) (*SendMessageResponse, error)
}

type client struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

func NewClient(cfg ClientConfig) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// GetMediaURL resolves the short-lived download URL for a media handle.
func (c *client) GetMediaURL(ctx context.Context, mediaID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media URL resolution failed with status %d", resp.StatusCode)
	}

	var result mediaURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode media URL response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("media URL response missing url field")
	}

	return result.URL, nil
}

// DownloadMedia fetches the binary body behind a resolved media URL. The
// caller owns the returned body.
func (c *client) DownloadMedia(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("media download failed with status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func (c *client) SendText(ctx context.Context, to, body string) (*SendMessageResponse, error) {
	payload := textMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Text:             textPayload{Body: body},
	}
	return c.sendMessageRequest(ctx, payload)
}

// SendMedia sends a message referencing an uploaded media handle. mediaType
// must be one of the provider's media kinds (image, document, audio, video,
// sticker).
func (c *client) SendMedia(ctx context.Context, to, mediaType, mediaID, caption string) (*SendMessageResponse, error) {
	payload := mediaMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             mediaType,
	}

	media := &mediaPayload{ID: mediaID, Caption: caption}
	switch mediaType {
	case "image":
		payload.Image = media
	case "document":
		payload.Document = media
	case "audio":
		media.Caption = ""
		payload.Audio = media
	case "video":
		payload.Video = media
	case "sticker":
		media.Caption = ""
		payload.Sticker = media
	default:
		return nil, fmt.Errorf("unsupported media type: %s", mediaType)
	}

	return c.sendMessageRequest(ctx, payload)
}

// UploadMedia pushes a binary payload to the provider's media endpoint and
// returns the issued media handle.
func (c *client) UploadMedia(ctx context.Context, filename, mimeType string, r io.Reader) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.WriteField("type", mimeType); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/%s/media", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media upload failed with status %d", resp.StatusCode)
	}

	var result mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("upload response missing media id")
	}

	return result.ID, nil
}

func (c *client) sendMessageRequest(ctx context.Context, payload interface{}) (*SendMessageResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (c *client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
}
