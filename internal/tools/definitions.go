package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"maps-mcp/internal/maps"
)

// Tool names, in listing order.
const (
	GeocodeToolName        = "maps_geocode"
	ReverseGeocodeToolName = "maps_reverse_geocode"
	SearchPlacesToolName   = "maps_search_places"
	PlaceDetailsToolName   = "maps_place_details"
	DistanceMatrixToolName = "maps_distance_matrix"
	ElevationToolName      = "maps_elevation"
	DirectionsToolName     = "maps_directions"
)

// MaxSearchRadius is the largest radius, in meters, the places search accepts.
const MaxSearchRadius = 50000

// GeocodeInput is the maps_geocode argument set.
type GeocodeInput struct {
	Address string `json:"address"`
}

// ReverseGeocodeInput is the maps_reverse_geocode argument set.
type ReverseGeocodeInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchPlacesInput is the maps_search_places argument set.
type SearchPlacesInput struct {
	Query    string       `json:"query"`
	Location *maps.LatLng `json:"location,omitempty"`
	Radius   int          `json:"radius,omitempty"`
}

// PlaceDetailsInput is the maps_place_details argument set.
type PlaceDetailsInput struct {
	PlaceID string `json:"place_id"`
}

// DistanceMatrixInput is the maps_distance_matrix argument set.
type DistanceMatrixInput struct {
	Origins      []string `json:"origins"`
	Destinations []string `json:"destinations"`
	Mode         string   `json:"mode,omitempty"`
}

// ElevationInput is the maps_elevation argument set.
type ElevationInput struct {
	Locations []maps.LatLng `json:"locations"`
}

// DirectionsInput is the maps_directions argument set.
type DirectionsInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Mode        string `json:"mode,omitempty"`
}

// definitions builds the seven tools bound to client.
func definitions(client *maps.Client) ([]*definition, error) {
	builders := []func() (*definition, error){
		func() (*definition, error) {
			return define(GeocodeToolName, "Convert an address into geographic coordinates",
				object([]string{"address"}, map[string]*jsonschema.Schema{
					"address": str("The address to geocode"),
				}),
				func(ctx context.Context, in GeocodeInput) (*maps.GeocodeResult, error) {
					return client.Geocode(ctx, in.Address)
				})
		},
		func() (*definition, error) {
			return define(ReverseGeocodeToolName, "Convert coordinates into an address",
				object([]string{"latitude", "longitude"}, map[string]*jsonschema.Schema{
					"latitude":  number("Latitude coordinate", -90, 90),
					"longitude": number("Longitude coordinate", -180, 180),
				}),
				func(ctx context.Context, in ReverseGeocodeInput) (*maps.ReverseGeocodeResult, error) {
					return client.ReverseGeocode(ctx, in.Latitude, in.Longitude)
				})
		},
		func() (*definition, error) {
			radius := &jsonschema.Schema{
				Type:        "integer",
				Description: "Search radius in meters (max 50000)",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(MaxSearchRadius),
			}
			return define(SearchPlacesToolName, "Search for places using a text query",
				object([]string{"query"}, map[string]*jsonschema.Schema{
					"query":    str("Search query"),
					"location": latLng("Optional center point for the search"),
					"radius":   radius,
				}),
				func(ctx context.Context, in SearchPlacesInput) (*maps.SearchPlacesResult, error) {
					return client.SearchPlaces(ctx, in.Query, in.Location, in.Radius)
				})
		},
		func() (*definition, error) {
			return define(PlaceDetailsToolName, "Get detailed information about a specific place",
				object([]string{"place_id"}, map[string]*jsonschema.Schema{
					"place_id": str("The place ID to get details for"),
				}),
				func(ctx context.Context, in PlaceDetailsInput) (*maps.PlaceDetailsResult, error) {
					return client.PlaceDetails(ctx, in.PlaceID)
				})
		},
		func() (*definition, error) {
			return define(DistanceMatrixToolName, "Calculate travel distance and time for multiple origins and destinations",
				object([]string{"origins", "destinations"}, map[string]*jsonschema.Schema{
					"origins":      nonEmptyArray("Array of origin addresses or coordinates", str("Origin")),
					"destinations": nonEmptyArray("Array of destination addresses or coordinates", str("Destination")),
					"mode":         travelMode(),
				}),
				func(ctx context.Context, in DistanceMatrixInput) (*maps.DistanceMatrixResult, error) {
					return client.DistanceMatrix(ctx, in.Origins, in.Destinations, in.Mode)
				})
		},
		func() (*definition, error) {
			return define(ElevationToolName, "Get elevation data for locations on the earth",
				object([]string{"locations"}, map[string]*jsonschema.Schema{
					"locations": nonEmptyArray("Array of locations to get elevation for", latLng("Location")),
				}),
				func(ctx context.Context, in ElevationInput) (*maps.ElevationResult, error) {
					return client.Elevation(ctx, in.Locations)
				})
		},
		func() (*definition, error) {
			return define(DirectionsToolName, "Get directions between two points",
				object([]string{"origin", "destination"}, map[string]*jsonschema.Schema{
					"origin":      str("Starting point address or coordinates"),
					"destination": str("Ending point address or coordinates"),
					"mode":        travelMode(),
				}),
				func(ctx context.Context, in DirectionsInput) (*maps.DirectionsResult, error) {
					return client.Directions(ctx, in.Origin, in.Destination, in.Mode)
				})
		},
	}

	defs := make([]*definition, 0, len(builders))
	for _, build := range builders {
		def, err := build()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func floatPtr(v float64) *float64 { return &v }
