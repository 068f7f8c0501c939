// Package geo resolves device coordinates into a locality through a
// Nominatim-compatible reverse geocoding service.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pathfinder-backend/internal/shared/apperr"
)

const serviceName = "geocoder"

// Address is the subset of the reverse geocoding address block we read.
type Address struct {
	State  string `json:"state"`
	City   string `json:"city"`
	County string `json:"county"`
	Town   string `json:"town"`
}

// Locality is a state and city pair used to drive a college search.
type Locality struct {
	State string `json:"state"`
	City  string `json:"city"`
}

// Resolve picks the locality from the address, defaulting each missing field.
// City prefers city, then county, then town.
func (a Address) Resolve(def Locality) Locality {
	out := def
	if s := strings.TrimSpace(a.State); s != "" {
		out.State = s
	}
	for _, candidate := range []string{a.City, a.County, a.Town} {
		if c := strings.TrimSpace(candidate); c != "" {
			out.City = c
			return out
		}
	}
	return out
}

// ReverseGeocoder turns coordinates into an address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

// Client implements ReverseGeocoder against the Nominatim /reverse endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient constructs a reverse geocoding client.
func NewClient(baseURL, userAgent string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("GEOCODER_BASE_URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type reverseResponse struct {
	Address *Address `json:"address"`
	Error   string   `json:"error"`
}

// Reverse looks up the address at lat/lon.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return Address{}, apperr.Transport(serviceName, "reverse", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, apperr.Transport(serviceName, "reverse", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Address{}, apperr.Transport(serviceName, "reverse", err)
	}
	if resp.StatusCode >= 400 {
		return Address{}, &apperr.TransportError{Service: serviceName, Op: "reverse", StatusCode: resp.StatusCode}
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Address{}, apperr.Transport(serviceName, "reverse", fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != "" {
		return Address{}, apperr.Transport(serviceName, "reverse", errors.New(parsed.Error))
	}
	if parsed.Address == nil {
		return Address{}, apperr.EmptyResult(serviceName, "reverse")
	}
	return *parsed.Address, nil
}

var _ ReverseGeocoder = (*Client)(nil)
