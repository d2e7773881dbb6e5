package geoapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/txomin/geoapi/polyline"
)

const directionsPath = "/maps/api/directions/json"

// Distance is a distance in meters plus its human-readable rendering.
type Distance struct {
	Text   string `json:"text"`
	Meters int64  `json:"value"`
}

// Duration is a travel time in seconds plus its human-readable rendering.
type Duration struct {
	Text    string `json:"text"`
	Seconds int64  `json:"value"`
}

// EncodedPolyline is a path carried on the wire in polyline encoding.
type EncodedPolyline struct {
	Points string `json:"points"`
}

// Decode expands the path into its coordinate sequence.
func (e EncodedPolyline) Decode() ([]LatLng, error) {
	pts, err := polyline.Decode(e.Points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out := make([]LatLng, len(pts))
	for i, p := range pts {
		out[i] = LatLng{Lat: p.Lat, Lng: p.Lng}
	}
	return out, nil
}

// Step is a single routing instruction.
type Step struct {
	HTMLInstructions string          `json:"html_instructions"`
	Distance         Distance        `json:"distance"`
	Duration         Duration        `json:"duration"`
	StartLocation    LatLng          `json:"start_location"`
	EndLocation      LatLng          `json:"end_location"`
	Polyline         EncodedPolyline `json:"polyline"`
	TravelMode       string          `json:"travel_mode"`
}

// Leg is the stretch of a route between two waypoints.
type Leg struct {
	Steps         []Step   `json:"steps"`
	Distance      Distance `json:"distance"`
	Duration      Duration `json:"duration"`
	StartAddress  string   `json:"start_address"`
	EndAddress    string   `json:"end_address"`
	StartLocation LatLng   `json:"start_location"`
	EndLocation   LatLng   `json:"end_location"`
}

// Route is one way of travelling from origin to destination.
type Route struct {
	Summary          string          `json:"summary"`
	Legs             []Leg           `json:"legs"`
	OverviewPolyline EncodedPolyline `json:"overview_polyline"`
	Warnings         []string        `json:"warnings"`
	WaypointOrder    []int           `json:"waypoint_order"`
}

// The directions endpoint deviates from the shared envelope: its payload
// carries "routes" rather than "results", so it supplies its own classifier
// to the dispatcher.
type directionsEnvelope struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Routes       []Route `json:"routes"`
}

func classifyRoutes(body []byte) ([]Route, error) {
	var env directionsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if env.Status != string(StatusOK) {
		return nil, apiErrorFrom(env.Status, env.ErrorMessage)
	}
	return env.Routes, nil
}

// Directions requests routes between two places. origin and destination may
// be addresses or "lat,lng" strings; extra ordered parameter pairs (such as
// "mode", "walking") are appended verbatim.
func Directions(ctx context.Context, c *Client, origin, destination string, params ...string) *PendingResult[[]Route] {
	pairs := append([]string{"origin", origin, "destination", destination}, params...)
	return dispatch(ctx, c, directionsPath, pairs, classifyRoutes)
}
