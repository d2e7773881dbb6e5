package geoapi

import (
	"context"
	"strconv"
)

const elevationPath = "/maps/api/elevation/json"

// ElevationResult is the elevation of a single sampled location.
type ElevationResult struct {
	Elevation  float64 `json:"elevation"`
	Location   LatLng  `json:"location"`
	Resolution float64 `json:"resolution"`
}

// ElevationByPoint retrieves the elevation of a single point.
func ElevationByPoint(ctx context.Context, c *Client, point LatLng) *PendingResult[ElevationResult] {
	return GetSingle[ElevationResult](ctx, c, elevationPath,
		"locations", point.String())
}

// ElevationByPoints retrieves elevations for a set of points, sent as the
// shorter of the literal and polyline-encoded location list.
func ElevationByPoints(ctx context.Context, c *Client, points ...LatLng) *PendingResult[[]ElevationResult] {
	return GetList[ElevationResult](ctx, c, elevationPath,
		"locations", PathParam(points...))
}

// ElevationAlongPath samples elevations at even intervals along a path.
func ElevationAlongPath(ctx context.Context, c *Client, samples int, path ...LatLng) *PendingResult[[]ElevationResult] {
	return GetList[ElevationResult](ctx, c, elevationPath,
		"samples", strconv.Itoa(samples),
		"path", PathParam(path...))
}
