package maps

import "strconv"

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat" jsonschema:"latitude in degrees"`
	Lng float64 `json:"lng" jsonschema:"longitude in degrees"`
}

// String formats the pair as the "lat,lng" form the Maps API expects.
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// TextValue is a distance or duration: a display string and a value in
// meters or seconds.
type TextValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// AddressComponent is one part of a structured address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Review is a user review attached to a place.
type Review struct {
	AuthorName              string  `json:"author_name"`
	Rating                  float64 `json:"rating"`
	Text                    string  `json:"text"`
	Time                    int64   `json:"time,omitempty"`
	RelativeTimeDescription string  `json:"relative_time_description,omitempty"`
}

// OpeningHours summarizes when a place is open.
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// GeocodeResult is the maps_geocode tool result.
type GeocodeResult struct {
	Location         *LatLng `json:"location,omitempty"`
	FormattedAddress string  `json:"formatted_address"`
	PlaceID          string  `json:"place_id"`
}

// ReverseGeocodeResult is the maps_reverse_geocode tool result.
type ReverseGeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	PlaceID           string             `json:"place_id"`
	AddressComponents []AddressComponent `json:"address_components,omitempty"`
}

// Place is one text search hit.
type Place struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Location         *LatLng  `json:"location,omitempty"`
	PlaceID          string   `json:"place_id"`
	Rating           *float64 `json:"rating,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// SearchPlacesResult is the maps_search_places tool result.
type SearchPlacesResult struct {
	Places []Place `json:"places"`
}

// PlaceDetailsResult is the maps_place_details tool result.
type PlaceDetailsResult struct {
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	Location             *LatLng       `json:"location,omitempty"`
	FormattedPhoneNumber string        `json:"formatted_phone_number,omitempty"`
	Website              string        `json:"website,omitempty"`
	Rating               *float64      `json:"rating,omitempty"`
	Reviews              []Review      `json:"reviews,omitempty"`
	OpeningHours         *OpeningHours `json:"opening_hours,omitempty"`
}

// DistanceMatrixElement is one origin/destination pair.
type DistanceMatrixElement struct {
	Status   string     `json:"status"`
	Duration *TextValue `json:"duration,omitempty"`
	Distance *TextValue `json:"distance,omitempty"`
}

// DistanceMatrixRow holds the elements for one origin, in destination order.
type DistanceMatrixRow struct {
	Elements []DistanceMatrixElement `json:"elements"`
}

// DistanceMatrixResult is the maps_distance_matrix tool result.
type DistanceMatrixResult struct {
	OriginAddresses      []string            `json:"origin_addresses"`
	DestinationAddresses []string            `json:"destination_addresses"`
	Results              []DistanceMatrixRow `json:"results"`
}

// ElevationPoint is the elevation at one location.
type ElevationPoint struct {
	Elevation  *float64 `json:"elevation,omitempty"`
	Location   *LatLng  `json:"location,omitempty"`
	Resolution *float64 `json:"resolution,omitempty"`
}

// ElevationResult is the maps_elevation tool result.
type ElevationResult struct {
	Results []ElevationPoint `json:"results"`
}

// Step is one navigation instruction.
type Step struct {
	Instructions string     `json:"instructions,omitempty"`
	Distance     *TextValue `json:"distance,omitempty"`
	Duration     *TextValue `json:"duration,omitempty"`
	TravelMode   string     `json:"travel_mode,omitempty"`
}

// Route summarizes the first leg of one suggested route.
type Route struct {
	Summary  string     `json:"summary,omitempty"`
	Distance *TextValue `json:"distance,omitempty"`
	Duration *TextValue `json:"duration,omitempty"`
	Steps    []Step     `json:"steps"`
}

// DirectionsResult is the maps_directions tool result.
type DirectionsResult struct {
	Routes []Route `json:"routes"`
}
