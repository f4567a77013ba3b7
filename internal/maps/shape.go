package maps

import (
	"encoding/json"
	"fmt"

	"maps-mcp/internal/apperr"
)

// ResultShaper narrows an upstream response body to a tool result. Shapers
// are pure and assume the status check already passed.
type ResultShaper[R any] func(body []byte) (R, error)

type geometry struct {
	Location *LatLng `json:"location"`
}

type geocodeResponse struct {
	Results []struct {
		Geometry          geometry           `json:"geometry"`
		FormattedAddress  string             `json:"formatted_address"`
		PlaceID           string             `json:"place_id"`
		AddressComponents []AddressComponent `json:"address_components"`
	} `json:"results"`
}

type placeSearchResponse struct {
	Results []struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Geometry         geometry `json:"geometry"`
		PlaceID          string   `json:"place_id"`
		Rating           *float64 `json:"rating"`
		Types            []string `json:"types"`
	} `json:"results"`
}

type placeDetailsResponse struct {
	Result *struct {
		Name                 string        `json:"name"`
		FormattedAddress     string        `json:"formatted_address"`
		Geometry             geometry      `json:"geometry"`
		FormattedPhoneNumber string        `json:"formatted_phone_number"`
		Website              string        `json:"website"`
		Rating               *float64      `json:"rating"`
		Reviews              []Review      `json:"reviews"`
		OpeningHours         *OpeningHours `json:"opening_hours"`
	} `json:"result"`
}

type distanceMatrixResponse struct {
	OriginAddresses      []string `json:"origin_addresses"`
	DestinationAddresses []string `json:"destination_addresses"`
	Rows                 []struct {
		Elements []DistanceMatrixElement `json:"elements"`
	} `json:"rows"`
}

type elevationResponse struct {
	Results []ElevationPoint `json:"results"`
}

type directionsResponse struct {
	Routes []struct {
		Summary string `json:"summary"`
		Legs    []struct {
			Distance *TextValue `json:"distance"`
			Duration *TextValue `json:"duration"`
			Steps    []struct {
				HTMLInstructions string     `json:"html_instructions"`
				Distance         *TextValue `json:"distance"`
				Duration         *TextValue `json:"duration"`
				TravelMode       string     `json:"travel_mode"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

func decode(op string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Wrap(apperr.Transport, op, fmt.Errorf("decode maps api response: %w", err))
	}
	return nil
}

func noResults(op, what string) error {
	return apperr.Newf(apperr.NoResults, op, "no %s found", what)
}

// ShapeGeocode keeps the location, address and place id of the first match.
func ShapeGeocode(body []byte) (GeocodeResult, error) {
	var resp geocodeResponse
	if err := decode("geocode", body, &resp); err != nil {
		return GeocodeResult{}, err
	}
	if len(resp.Results) == 0 {
		return GeocodeResult{}, noResults("geocode", "geocoding results")
	}
	first := resp.Results[0]
	return GeocodeResult{
		Location:         first.Geometry.Location,
		FormattedAddress: first.FormattedAddress,
		PlaceID:          first.PlaceID,
	}, nil
}

// ShapeReverseGeocode keeps the address, place id and components of the first match.
func ShapeReverseGeocode(body []byte) (ReverseGeocodeResult, error) {
	var resp geocodeResponse
	if err := decode("reverse_geocode", body, &resp); err != nil {
		return ReverseGeocodeResult{}, err
	}
	if len(resp.Results) == 0 {
		return ReverseGeocodeResult{}, noResults("reverse_geocode", "addresses")
	}
	first := resp.Results[0]
	return ReverseGeocodeResult{
		FormattedAddress:  first.FormattedAddress,
		PlaceID:           first.PlaceID,
		AddressComponents: first.AddressComponents,
	}, nil
}

// ShapeSearchPlaces keeps the summary fields of every hit.
func ShapeSearchPlaces(body []byte) (SearchPlacesResult, error) {
	var resp placeSearchResponse
	if err := decode("search_places", body, &resp); err != nil {
		return SearchPlacesResult{}, err
	}
	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, Place{
			Name:             r.Name,
			FormattedAddress: r.FormattedAddress,
			Location:         r.Geometry.Location,
			PlaceID:          r.PlaceID,
			Rating:           r.Rating,
			Types:            r.Types,
		})
	}
	return SearchPlacesResult{Places: places}, nil
}

// ShapePlaceDetails keeps the contact, rating, review and hours fields.
func ShapePlaceDetails(body []byte) (PlaceDetailsResult, error) {
	var resp placeDetailsResponse
	if err := decode("place_details", body, &resp); err != nil {
		return PlaceDetailsResult{}, err
	}
	r := resp.Result
	if r == nil {
		return PlaceDetailsResult{}, noResults("place_details", "place details")
	}
	return PlaceDetailsResult{
		Name:                 r.Name,
		FormattedAddress:     r.FormattedAddress,
		Location:             r.Geometry.Location,
		FormattedPhoneNumber: r.FormattedPhoneNumber,
		Website:              r.Website,
		Rating:               r.Rating,
		Reviews:              r.Reviews,
		OpeningHours:         r.OpeningHours,
	}, nil
}

// ShapeDistanceMatrix keeps one row per origin with one element per destination.
func ShapeDistanceMatrix(body []byte) (DistanceMatrixResult, error) {
	var resp distanceMatrixResponse
	if err := decode("distance_matrix", body, &resp); err != nil {
		return DistanceMatrixResult{}, err
	}
	rows := make([]DistanceMatrixRow, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		elements := row.Elements
		if elements == nil {
			elements = []DistanceMatrixElement{}
		}
		rows = append(rows, DistanceMatrixRow{Elements: elements})
	}
	return DistanceMatrixResult{
		OriginAddresses:      orEmpty(resp.OriginAddresses),
		DestinationAddresses: orEmpty(resp.DestinationAddresses),
		Results:              rows,
	}, nil
}

// ShapeElevation keeps elevation, location and resolution per point.
func ShapeElevation(body []byte) (ElevationResult, error) {
	var resp elevationResponse
	if err := decode("elevation", body, &resp); err != nil {
		return ElevationResult{}, err
	}
	points := resp.Results
	if points == nil {
		points = []ElevationPoint{}
	}
	return ElevationResult{Results: points}, nil
}

// ShapeDirections keeps the summary and first leg of every route.
func ShapeDirections(body []byte) (DirectionsResult, error) {
	var resp directionsResponse
	if err := decode("directions", body, &resp); err != nil {
		return DirectionsResult{}, err
	}
	if len(resp.Routes) == 0 {
		return DirectionsResult{}, noResults("directions", "routes")
	}
	routes := make([]Route, 0, len(resp.Routes))
	for _, r := range resp.Routes {
		if len(r.Legs) == 0 {
			return DirectionsResult{}, noResults("directions", "route legs")
		}
		leg := r.Legs[0]
		steps := make([]Step, 0, len(leg.Steps))
		for _, s := range leg.Steps {
			steps = append(steps, Step{
				Instructions: s.HTMLInstructions,
				Distance:     s.Distance,
				Duration:     s.Duration,
				TravelMode:   s.TravelMode,
			})
		}
		routes = append(routes, Route{
			Summary:  r.Summary,
			Distance: leg.Distance,
			Duration: leg.Duration,
			Steps:    steps,
		})
	}
	return DirectionsResult{Routes: routes}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
