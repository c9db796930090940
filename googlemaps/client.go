// Package googlemaps wraps the Google Geocoding and Places APIs. The
// backend proxies these for the mobile client (keeps the API key
// server-side) and uses reverse geocoding to resolve the district of a
// report from its coordinates.
package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"safe2gether/metrics"
)

const (
	geocodeURL      = "https://maps.googleapis.com/maps/api/geocode/json"
	autocompleteURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
)

// districtComponentTypes is the priority order used to pick the
// administrative district from a reverse-geocoding response.
var districtComponentTypes = []string{
	"sublocality_level_1",
	"sublocality_level_2",
	"sublocality",
	"administrative_area_level_3",
	"locality",
}

// ErrNoDistrict is returned when no address component matches any of
// the district types.
var ErrNoDistrict = errors.New("googlemaps: no district component found")

// UpstreamError marks a failure reaching or reading the Google Maps
// API, as opposed to a well-formed response reporting an error status.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "googlemaps: " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client calls the Google Maps web services.
type Client struct {
	apiKey     string
	language   string
	country    string
	httpClient *http.Client
	baseURL    string // overridable in tests
	placesURL  string
}

// NewClient creates a Google Maps client.
func NewClient(apiKey, language, country string, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		language: language,
		country:  country,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   geocodeURL,
		placesURL: autocompleteURL,
	}
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type geocodeResponse struct {
	Results      []geocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
}

// ReverseGeocode returns the raw Google Geocoding response for the
// given coordinates, for the /places/reverse-geocode proxy endpoint.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := url.Values{
		"latlng":   {fmt.Sprintf("%f,%f", lat, lon)},
		"key":      {c.apiKey},
		"language": {c.language},
	}
	return c.get(ctx, c.baseURL, params)
}

// DistrictFor resolves the administrative district name for the given
// coordinates, honoring the component-type priority order. Returns
// ErrNoDistrict when geocoding succeeds but no component matches.
func (c *Client) DistrictFor(ctx context.Context, lat, lon float64) (string, error) {
	raw, err := c.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		metrics.GeocodeTotal.WithLabelValues("error").Inc()
		return "", err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.GeocodeTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("decode geocode response: %w", err)
	}
	if resp.Status != "OK" {
		metrics.GeocodeTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("geocode status %s: %s", resp.Status, resp.ErrorMessage)
	}

	district, ok := pickDistrict(resp.Results)
	if !ok {
		metrics.GeocodeTotal.WithLabelValues("miss").Inc()
		return "", ErrNoDistrict
	}
	metrics.GeocodeTotal.WithLabelValues("ok").Inc()
	return district, nil
}

// pickDistrict scans results for the first component matching the
// priority list. Higher-priority types win across all results.
func pickDistrict(results []geocodeResult) (string, bool) {
	for _, wanted := range districtComponentTypes {
		for _, res := range results {
			for _, comp := range res.AddressComponents {
				for _, t := range comp.Types {
					if t == wanted {
						return comp.LongName, true
					}
				}
			}
		}
	}
	return "", false
}

// Autocomplete returns the raw Google Places Autocomplete response for
// the /places/autocomplete proxy endpoint.
func (c *Client) Autocomplete(ctx context.Context, input, country string) (json.RawMessage, error) {
	if country == "" {
		country = c.country
	}
	params := url.Values{
		"input":      {input},
		"types":      {"address"},
		"components": {"country:" + country},
		"language":   {c.language},
		"key":        {c.apiKey},
	}
	return c.get(ctx, c.placesURL, params)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
	return body, nil
}
