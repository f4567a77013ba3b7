package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maps-mcp/internal/apperr"
)

// stubUpstream serves body for every request and records the last request.
type stubUpstream struct {
	status int
	body   string
	path   string
	query  url.Values
	hits   int
	srv    *httptest.Server
}

func newStub(t *testing.T, body string) *stubUpstream {
	t.Helper()
	s := &stubUpstream{status: http.StatusOK, body: body}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits++
		s.path = r.URL.Path
		s.query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stubUpstream) client() *Client {
	return New(s.srv.URL+"/maps/api/", "test-key", s.srv.Client())
}

func TestGeocode(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"results": [{
			"geometry": {"location": {"lat": 37.4, "lng": -122.1}, "location_type": "ROOFTOP"},
			"formatted_address": "1600 Amphitheatre Pkwy, Mountain View, CA",
			"place_id": "abc",
			"types": ["street_address"]
		}]
	}`)

	res, err := stub.client().Geocode(context.Background(), "1600 Amphitheatre Parkway")
	require.NoError(t, err)

	assert.Equal(t, 1, stub.hits)
	assert.Equal(t, "/maps/api/geocode/json", stub.path)
	assert.Equal(t, "1600 Amphitheatre Parkway", stub.query.Get("address"))
	assert.Equal(t, "test-key", stub.query.Get("key"))

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"location": {"lat": 37.4, "lng": -122.1},
		"formatted_address": "1600 Amphitheatre Pkwy, Mountain View, CA",
		"place_id": "abc"
	}`, string(raw))
}

func TestReverseGeocode(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"results": [{
			"formatted_address": "277 Bedford Ave, Brooklyn, NY",
			"place_id": "xyz",
			"address_components": [{"long_name": "277", "short_name": "277", "types": ["street_number"]}],
			"geometry": {"location": {"lat": 40.7, "lng": -73.9}}
		}]
	}`)

	res, err := stub.client().ReverseGeocode(context.Background(), 40.714224, -73.961452)
	require.NoError(t, err)

	assert.Equal(t, "40.714224,-73.961452", stub.query.Get("latlng"))
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"formatted_address": "277 Bedford Ave, Brooklyn, NY",
		"place_id": "xyz",
		"address_components": [{"long_name": "277", "short_name": "277", "types": ["street_number"]}]
	}`, string(raw))
}

func TestSearchPlaces(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"results": [
			{"name": "Cafe", "formatted_address": "1 Main St", "geometry": {"location": {"lat": 1, "lng": 2}},
			 "place_id": "p1", "rating": 4.5, "types": ["cafe"], "user_ratings_total": 10},
			{"name": "Bare", "formatted_address": "2 Main St", "place_id": "p2"}
		]
	}`)

	res, err := stub.client().SearchPlaces(context.Background(), "coffee", &LatLng{Lat: 1, Lng: 2}, 500)
	require.NoError(t, err)

	assert.Equal(t, "/maps/api/place/textsearch/json", stub.path)
	assert.Equal(t, "coffee", stub.query.Get("query"))
	assert.Equal(t, "1,2", stub.query.Get("location"))
	assert.Equal(t, "500", stub.query.Get("radius"))

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"places": [
		{"name": "Cafe", "formatted_address": "1 Main St", "location": {"lat": 1, "lng": 2}, "place_id": "p1", "rating": 4.5, "types": ["cafe"]},
		{"name": "Bare", "formatted_address": "2 Main St", "place_id": "p2"}
	]}`, string(raw))
}

func TestSearchPlacesWithoutLocation(t *testing.T) {
	stub := newStub(t, `{"status": "OK", "results": []}`)

	res, err := stub.client().SearchPlaces(context.Background(), "coffee", nil, 500)
	require.NoError(t, err)

	assert.False(t, stub.query.Has("location"))
	assert.False(t, stub.query.Has("radius"))
	assert.Empty(t, res.Places)
	assert.NotNil(t, res.Places)
}

func TestPlaceDetails(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"result": {
			"name": "Googleplex",
			"formatted_address": "1600 Amphitheatre Pkwy",
			"geometry": {"location": {"lat": 37.4, "lng": -122.1}, "viewport": {}},
			"formatted_phone_number": "(650) 253-0000",
			"website": "https://about.google",
			"rating": 4.6,
			"reviews": [{"author_name": "A", "rating": 5, "text": "Great", "time": 1700000000, "profile_photo_url": "x"}],
			"opening_hours": {"open_now": true, "weekday_text": ["Monday: Open 24 hours"], "periods": []},
			"icon": "https://example.com/icon.png"
		}
	}`)

	res, err := stub.client().PlaceDetails(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", stub.query.Get("place_id"))
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Googleplex",
		"formatted_address": "1600 Amphitheatre Pkwy",
		"location": {"lat": 37.4, "lng": -122.1},
		"formatted_phone_number": "(650) 253-0000",
		"website": "https://about.google",
		"rating": 4.6,
		"reviews": [{"author_name": "A", "rating": 5, "text": "Great", "time": 1700000000}],
		"opening_hours": {"open_now": true, "weekday_text": ["Monday: Open 24 hours"]}
	}`, string(raw))
}

func TestPlaceDetailsOptionalFieldsAbsent(t *testing.T) {
	stub := newStub(t, `{"status": "OK", "result": {"name": "Somewhere", "formatted_address": "Nowhere"}}`)

	res, err := stub.client().PlaceDetails(context.Background(), "abc")
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Somewhere", "formatted_address": "Nowhere"}`, string(raw))
}

func TestSparseResultsOmitMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(*Client) (any, error)
		want string
	}{
		{
			name: "geocode without geometry",
			body: `{"status": "OK", "results": [{"formatted_address": "Somewhere", "place_id": "abc"}]}`,
			call: func(c *Client) (any, error) { return c.Geocode(context.Background(), "x") },
			want: `{"formatted_address": "Somewhere", "place_id": "abc"}`,
		},
		{
			name: "reverse geocode without components",
			body: `{"status": "OK", "results": [{"formatted_address": "Somewhere", "place_id": "abc"}]}`,
			call: func(c *Client) (any, error) { return c.ReverseGeocode(context.Background(), 1, 2) },
			want: `{"formatted_address": "Somewhere", "place_id": "abc"}`,
		},
		{
			name: "search hit without location rating or types",
			body: `{"status": "OK", "results": [{"name": "Cafe", "formatted_address": "Main St", "place_id": "p1"}]}`,
			call: func(c *Client) (any, error) { return c.SearchPlaces(context.Background(), "cafe", nil, 0) },
			want: `{"places": [{"name": "Cafe", "formatted_address": "Main St", "place_id": "p1"}]}`,
		},
		{
			name: "distance matrix element without duration or distance",
			body: `{"status": "OK", "origin_addresses": ["A"], "destination_addresses": ["B"], "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`,
			call: func(c *Client) (any, error) {
				return c.DistanceMatrix(context.Background(), []string{"A"}, []string{"B"}, "")
			},
			want: `{"origin_addresses": ["A"], "destination_addresses": ["B"], "results": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`,
		},
		{
			name: "elevation with only resolution",
			body: `{"status": "OK", "results": [{"resolution": 4.7}]}`,
			call: func(c *Client) (any, error) {
				return c.Elevation(context.Background(), []LatLng{{Lat: 1, Lng: 2}})
			},
			want: `{"results": [{"resolution": 4.7}]}`,
		},
		{
			name: "directions with sparse route and step",
			body: `{"status": "OK", "routes": [{"legs": [{"steps": [{}]}]}]}`,
			call: func(c *Client) (any, error) {
				return c.Directions(context.Background(), "a", "b", "")
			},
			want: `{"routes": [{"steps": [{}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(t, tt.body)
			res, err := tt.call(stub.client())
			require.NoError(t, err)

			raw, err := json.Marshal(res)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestDistanceMatrix(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"origin_addresses": ["A", "B"],
		"destination_addresses": ["C", "D"],
		"rows": [
			{"elements": [
				{"status": "OK", "distance": {"text": "1 km", "value": 1000}, "duration": {"text": "1 min", "value": 60}},
				{"status": "OK", "distance": {"text": "2 km", "value": 2000}, "duration": {"text": "2 mins", "value": 120}}
			]},
			{"elements": [
				{"status": "OK", "distance": {"text": "3 km", "value": 3000}, "duration": {"text": "3 mins", "value": 180}, "fare": {"value": 2}},
				{"status": "ZERO_RESULTS"}
			]}
		]
	}`)

	res, err := stub.client().DistanceMatrix(context.Background(), []string{"A", "B"}, []string{"C", "D"}, "")
	require.NoError(t, err)

	assert.Equal(t, "A|B", stub.query.Get("origins"))
	assert.Equal(t, "C|D", stub.query.Get("destinations"))
	assert.Equal(t, ModeDriving, stub.query.Get("mode"))

	require.Len(t, res.Results, 2)
	for _, row := range res.Results {
		assert.Len(t, row.Elements, 2)
	}
	assert.Equal(t, []string{"A", "B"}, res.OriginAddresses)
	assert.Equal(t, "ZERO_RESULTS", res.Results[1].Elements[1].Status)
	assert.Nil(t, res.Results[1].Elements[1].Distance)

	raw, err := json.Marshal(res.Results[1].Elements[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "OK", "distance": {"text": "3 km", "value": 3000}, "duration": {"text": "3 mins", "value": 180}}`, string(raw))
}

func TestElevation(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"results": [
			{"elevation": 1608.6, "location": {"lat": 39.7391536, "lng": -104.9847034}, "resolution": 4.77},
			{"elevation": -50.8, "location": {"lat": 36.455556, "lng": -116.866667}}
		]
	}`)

	res, err := stub.client().Elevation(context.Background(), []LatLng{
		{Lat: 39.7391536, Lng: -104.9847034},
		{Lat: 36.455556, Lng: -116.866667},
	})
	require.NoError(t, err)

	assert.Equal(t, "39.7391536,-104.9847034|36.455556,-116.866667", stub.query.Get("locations"))
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results": [
		{"elevation": 1608.6, "location": {"lat": 39.7391536, "lng": -104.9847034}, "resolution": 4.77},
		{"elevation": -50.8, "location": {"lat": 36.455556, "lng": -116.866667}}
	]}`, string(raw))
}

func TestDirections(t *testing.T) {
	stub := newStub(t, `{
		"status": "OK",
		"geocoded_waypoints": [],
		"routes": [{
			"summary": "I-80 E",
			"bounds": {},
			"legs": [{
				"distance": {"text": "10 km", "value": 10000},
				"duration": {"text": "12 mins", "value": 720},
				"start_address": "A",
				"steps": [{
					"html_instructions": "Head <b>north</b>",
					"distance": {"text": "0.1 km", "value": 100},
					"duration": {"text": "1 min", "value": 30},
					"travel_mode": "WALKING",
					"polyline": {"points": "abc"}
				}]
			}]
		}]
	}`)

	res, err := stub.client().Directions(context.Background(), "A", "B", ModeWalking)
	require.NoError(t, err)

	assert.Equal(t, "/maps/api/directions/json", stub.path)
	assert.Equal(t, "A", stub.query.Get("origin"))
	assert.Equal(t, "B", stub.query.Get("destination"))
	assert.Equal(t, ModeWalking, stub.query.Get("mode"))

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"routes": [{
		"summary": "I-80 E",
		"distance": {"text": "10 km", "value": 10000},
		"duration": {"text": "12 mins", "value": 720},
		"steps": [{
			"instructions": "Head <b>north</b>",
			"distance": {"text": "0.1 km", "value": 100},
			"duration": {"text": "1 min", "value": 30},
			"travel_mode": "WALKING"
		}]
	}]}`, string(raw))
}

func TestUpstreamStatusFailures(t *testing.T) {
	calls := map[string]func(*Client) error{
		"geocode": func(c *Client) error {
			_, err := c.Geocode(context.Background(), "x")
			return err
		},
		"reverse_geocode": func(c *Client) error {
			_, err := c.ReverseGeocode(context.Background(), 1, 2)
			return err
		},
		"search_places": func(c *Client) error {
			_, err := c.SearchPlaces(context.Background(), "x", nil, 0)
			return err
		},
		"place_details": func(c *Client) error {
			_, err := c.PlaceDetails(context.Background(), "x")
			return err
		},
		"distance_matrix": func(c *Client) error {
			_, err := c.DistanceMatrix(context.Background(), []string{"a"}, []string{"b"}, ModeTransit)
			return err
		},
		"elevation": func(c *Client) error {
			_, err := c.Elevation(context.Background(), []LatLng{{Lat: 1, Lng: 2}})
			return err
		},
		"directions": func(c *Client) error {
			_, err := c.Directions(context.Background(), "a", "b", "")
			return err
		},
	}

	bodies := []struct {
		name string
		body string
		want string
	}{
		{"with message", `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`, "The provided API key is invalid."},
		{"status only", `{"status": "ZERO_RESULTS", "results": []}`, "ZERO_RESULTS"},
	}

	for op, call := range calls {
		for _, b := range bodies {
			t.Run(op+"/"+b.name, func(t *testing.T) {
				stub := newStub(t, b.body)
				err := call(stub.client())
				require.Error(t, err)
				assert.Equal(t, b.want, err.Error())
				assert.True(t, apperr.Is(err, apperr.Upstream))
			})
		}
	}
}

func TestEmptyResultsAfterOK(t *testing.T) {
	stub := newStub(t, `{"status": "OK", "results": []}`)

	_, err := stub.client().Geocode(context.Background(), "nowhere")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NoResults))

	_, err = stub.client().ReverseGeocode(context.Background(), 0, 0)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NoResults))

	stub.body = `{"status": "OK", "routes": [{"summary": "x", "legs": []}]}`
	_, err = stub.client().Directions(context.Background(), "a", "b", "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NoResults))

	stub.body = `{"status": "OK"}`
	_, err = stub.client().PlaceDetails(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NoResults))
}

func TestHTTPFailures(t *testing.T) {
	stub := newStub(t, `<html>oops</html>`)
	stub.status = http.StatusBadGateway

	_, err := stub.client().Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Transport))
	assert.Contains(t, err.Error(), "502")

	stub.status = http.StatusForbidden
	stub.body = `{"status": "REQUEST_DENIED", "error_message": "denied"}`
	_, err = stub.client().Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Upstream))
	assert.Equal(t, "denied", err.Error())

	stub.status = http.StatusOK
	stub.body = `not json`
	_, err = stub.client().Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Transport))
}

func TestNetworkErrorRedactsKey(t *testing.T) {
	stub := newStub(t, `{}`)
	c := stub.client()
	stub.srv.Close()

	_, err := c.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Transport))
	assert.NotContains(t, err.Error(), "test-key")
}

func TestLatLngString(t *testing.T) {
	assert.Equal(t, "37.4,-122.1", LatLng{Lat: 37.4, Lng: -122.1}.String())
	assert.Equal(t, "0,0", LatLng{}.String())
}
