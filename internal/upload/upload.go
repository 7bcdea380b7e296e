// Package upload validates user images and pushes them to the external image
// host, returning a public URL.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wander/internal/config"
	"wander/internal/models"
)

// MaxImageBytes caps uploaded image size.
const MaxImageBytes = 500000

// allowedTypes maps accepted content types to their canonical extension.
var allowedTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Validate rejects images that are too large or not png/jpeg/jpg.
func Validate(contentType string, size int64) *models.AppError {
	if _, ok := allowedTypes[contentType]; !ok {
		return models.NewBadRequest("Only png, jpeg and jpg images are allowed")
	}
	if size > MaxImageBytes {
		return models.NewBadRequest(fmt.Sprintf("Image must be at most %d bytes", MaxImageBytes))
	}
	return nil
}

// ToDataURI encodes raw image bytes as a base64 data URI, the format the
// image host ingests.
func ToDataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// Uploader pushes an encoded image to the image host.
type Uploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}

// Client is an HTTP Uploader against a Cloudinary-style unsigned upload
// endpoint: POST {base} with {"file": dataURI, "api_key": key} returning
// {"secure_url": ...}.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds an upload client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.ImageHostURL,
		apiKey:  cfg.ImageHostAPIKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadRequest struct {
	File   string `json:"file"`
	APIKey string `json:"api_key,omitempty"`
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (c *Client) Upload(ctx context.Context, dataURI string) (string, error) {
	if c.baseURL == "" {
		return "", models.NewInternal(fmt.Errorf("image host not configured"))
	}

	payload, err := json.Marshal(uploadRequest{File: dataURI, APIKey: c.apiKey})
	if err != nil {
		return "", models.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", models.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", models.NewInternal(fmt.Errorf("image upload failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", models.NewInternal(fmt.Errorf("image host returned status %d", resp.StatusCode))
	}

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", models.NewInternal(fmt.Errorf("decoding image host response: %w", err))
	}
	if body.SecureURL == "" {
		return "", models.NewInternal(fmt.Errorf("image host returned no URL"))
	}
	return body.SecureURL, nil
}
