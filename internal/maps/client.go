// Package maps provides a minimal client for the Google Maps web services.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"maps-mcp/internal/apperr"
)

// Upstream endpoints, relative to the base URL.
const (
	pathGeocode        = "geocode/json"
	pathPlaceSearch    = "place/textsearch/json"
	pathPlaceDetails   = "place/details/json"
	pathDistanceMatrix = "distancematrix/json"
	pathElevation      = "elevation/json"
	pathDirections     = "directions/json"

	statusOK = "OK"

	maxErrorBody = 4 << 10
)

// Travel modes accepted by distance matrix and directions.
const (
	ModeDriving   = "driving"
	ModeWalking   = "walking"
	ModeBicycling = "bicycling"
	ModeTransit   = "transit"
)

// Modes lists the accepted travel modes.
var Modes = []string{ModeDriving, ModeWalking, ModeBicycling, ModeTransit}

// Client is a minimal HTTP client for the Maps web services. One client is
// bound to one API key.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with a 10s timeout is used.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, HTTP: httpClient}
}

// Geocode converts an address into coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	q := url.Values{}
	q.Set("address", address)
	return fetch(ctx, c, "geocode", pathGeocode, q, ShapeGeocode)
}

// ReverseGeocode converts coordinates into an address.
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*ReverseGeocodeResult, error) {
	q := url.Values{}
	q.Set("latlng", LatLng{Lat: latitude, Lng: longitude}.String())
	return fetch(ctx, c, "reverse_geocode", pathGeocode, q, ShapeReverseGeocode)
}

// SearchPlaces runs a text search, optionally biased to a location and radius
// in meters. A zero radius is not sent.
func (c *Client) SearchPlaces(ctx context.Context, query string, location *LatLng, radius int) (*SearchPlacesResult, error) {
	q := url.Values{}
	q.Set("query", query)
	if location != nil {
		q.Set("location", location.String())
		if radius > 0 {
			q.Set("radius", strconv.Itoa(radius))
		}
	}
	return fetch(ctx, c, "search_places", pathPlaceSearch, q, ShapeSearchPlaces)
}

// PlaceDetails fetches details for a place id.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetailsResult, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	return fetch(ctx, c, "place_details", pathPlaceDetails, q, ShapePlaceDetails)
}

// DistanceMatrix computes distance and duration for every origin and
// destination pair.
func (c *Client) DistanceMatrix(ctx context.Context, origins, destinations []string, mode string) (*DistanceMatrixResult, error) {
	q := url.Values{}
	q.Set("origins", strings.Join(origins, "|"))
	q.Set("destinations", strings.Join(destinations, "|"))
	q.Set("mode", modeOrDefault(mode))
	return fetch(ctx, c, "distance_matrix", pathDistanceMatrix, q, ShapeDistanceMatrix)
}

// Elevation looks up the elevation of each location.
func (c *Client) Elevation(ctx context.Context, locations []LatLng) (*ElevationResult, error) {
	points := make([]string, 0, len(locations))
	for _, l := range locations {
		points = append(points, l.String())
	}
	q := url.Values{}
	q.Set("locations", strings.Join(points, "|"))
	return fetch(ctx, c, "elevation", pathElevation, q, ShapeElevation)
}

// Directions computes routes between two places.
func (c *Client) Directions(ctx context.Context, origin, destination, mode string) (*DirectionsResult, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("mode", modeOrDefault(mode))
	return fetch(ctx, c, "directions", pathDirections, q, ShapeDirections)
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return ModeDriving
	}
	return mode
}

// fetch issues one GET, checks the status discriminator and shapes the body.
func fetch[R any](ctx context.Context, c *Client, op, path string, q url.Values, shape func([]byte) (R, error)) (*R, error) {
	body, err := c.get(ctx, op, path, q)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(op, body); err != nil {
		return nil, err
	}
	res, err := shape(body)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	reqURL, err := c.buildURL(path, q)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, op, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, op, fmt.Errorf("maps api request: %w", redactKey(err, c.APIKey)))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		// Maps reports most failures with 200 and a status field; a JSON
		// error body on other codes still carries the upstream message.
		if err := checkStatus(op, snippet); err != nil && apperr.Is(err, apperr.Upstream) {
			return nil, err
		}
		return nil, apperr.Newf(apperr.Transport, op, "maps api status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, op, fmt.Errorf("read maps api response: %w", err))
	}
	return body, nil
}

// buildURL composes the endpoint URL with query params and the key.
func (c *Client) buildURL(path string, q url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL + "/" + path)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type statusEnvelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// checkStatus fails on any status other than OK. The message is the upstream
// error_message when present, else the status code itself.
func checkStatus(op string, body []byte) error {
	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apperr.Wrap(apperr.Transport, op, fmt.Errorf("decode maps api response: %w", err))
	}
	if env.Status == statusOK {
		return nil
	}
	msg := env.ErrorMessage
	if msg == "" {
		msg = env.Status
	}
	if msg == "" {
		msg = "maps api response missing status"
	}
	return apperr.New(apperr.Upstream, op, msg)
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
