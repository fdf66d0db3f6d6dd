package maps

import "context"

// MapsProvider resolves street addresses for incident coordinates and
// estimates driving time for ambulances.
type MapsProvider interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error)
	GetDirections(ctx context.Context, request *DirectionsRequest) (*DirectionsResponse, error)
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"address"`
	Coordinates Location `json:"coordinates"`
	Types       []string `json:"types"`
}

type DirectionsRequest struct {
	Origin      Location `json:"origin"`
	Destination Location `json:"destination"`
	Mode        string   `json:"mode"` // driving, walking
}

type DirectionsResponse struct {
	Routes []Route `json:"routes"`
}

type Route struct {
	Summary  string   `json:"summary"`
	Distance Distance `json:"distance"`
	Duration Duration `json:"duration"`
	Polyline string   `json:"polyline"`
}

type Distance struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"` // meters
}

type Duration struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // seconds
}
