// Package geocode resolves street addresses into coordinates through a
// HERE-style forward geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"wander/internal/config"
	"wander/internal/models"
)

// ErrNoMatch is the client-facing failure when the geocoder has no result
// for the given address.
var ErrNoMatch = models.NewUnprocessable("Could not find location for the specified address.")

// Resolver turns a free-form address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) (*models.Location, error)
}

// Client is an HTTP Resolver against a HERE-style geocoding endpoint:
// GET {base}?q={address}&apiKey={key} returning {"items":[{"position":
// {"lat":..,"lng":..}}, ...]}.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a geocoding client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.GeocoderURL,
		apiKey:  cfg.GeocoderAPIKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Items []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position"`
	} `json:"items"`
}

// Resolve geocodes the address. The first match wins; no match is an
// UnprocessableEntity so the caller can surface it as a user error rather
// than a server fault.
func (c *Client) Resolve(ctx context.Context, address string) (*models.Location, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, models.NewInternal(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, models.NewInternal(fmt.Errorf("geocoding request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewInternal(fmt.Errorf("geocoder returned status %d", resp.StatusCode))
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, models.NewInternal(fmt.Errorf("decoding geocoder response: %w", err))
	}

	if len(body.Items) == 0 {
		return nil, ErrNoMatch
	}

	pos := body.Items[0].Position
	return &models.Location{Lat: pos.Lat, Lng: pos.Lng}, nil
}
