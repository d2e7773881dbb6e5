package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/txomin/geoapi"
	"github.com/txomin/geoapi/polyline"
)

// parsePoints accepts the same location list syntax the upstream does: a
// pipe-separated "lat,lng|lat,lng|…" list or an "enc:"-prefixed polyline.
func parsePoints(s string) ([]geoapi.LatLng, error) {
	if enc, ok := strings.CutPrefix(s, "enc:"); ok {
		pts, err := polyline.Decode(enc)
		if err != nil {
			return nil, err
		}
		out := make([]geoapi.LatLng, len(pts))
		for i, p := range pts {
			out[i] = geoapi.LatLng{Lat: p.Lat, Lng: p.Lng}
		}
		return out, nil
	}

	parts := strings.Split(s, "|")
	out := make([]geoapi.LatLng, 0, len(parts))
	for _, part := range parts {
		ll, err := geoapi.ParseLatLng(part)
		if err != nil {
			return nil, err
		}
		out = append(out, ll)
	}
	return out, nil
}

// ElevationHandler resolves elevations for one or more locations.
func ElevationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locations := c.Query("locations")
		if locations == "" {
			return errBadRequest(c, "locations query parameter is required")
		}
		points, err := parsePoints(locations)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if len(points) == 0 {
			return errBadRequest(c, "locations must contain at least one point")
		}

		if len(points) == 1 {
			result, err := geoapi.ElevationByPoint(c.Context(), deps.Client, points[0]).Await(c.Context())
			if err != nil {
				return errUpstream(c, err)
			}
			return c.JSON([]geoapi.ElevationResult{result})
		}

		results, err := geoapi.ElevationByPoints(c.Context(), deps.Client, points...).Await(c.Context())
		if err != nil {
			return errUpstream(c, err)
		}
		return c.JSON(results)
	}
}

// ElevationPathHandler samples elevations along a path.
func ElevationPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Query("path")
		if path == "" {
			return errBadRequest(c, "path query parameter is required")
		}
		samples := c.QueryInt("samples", 0)
		if samples < 2 || samples > 512 {
			return errBadRequest(c, "samples must be between 2 and 512")
		}
		points, err := parsePoints(path)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if len(points) < 2 {
			return errBadRequest(c, "path must contain at least two points")
		}

		results, err := geoapi.ElevationAlongPath(c.Context(), deps.Client, samples, points...).Await(c.Context())
		if err != nil {
			return errUpstream(c, err)
		}
		return c.JSON(results)
	}
}

// GeocodeHandler resolves an address to coordinates.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := c.Query("address")
		if address == "" {
			return errBadRequest(c, "address query parameter is required")
		}
		if len(address) > 500 {
			return errBadRequest(c, "address too long (max 500 characters)")
		}

		results, err := geoapi.Geocode(c.Context(), deps.Client, address).Await(c.Context())
		if err != nil {
			return errUpstream(c, err)
		}
		return c.JSON(results)
	}
}

// ReverseGeocodeHandler resolves coordinates to addresses.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		latlng := c.Query("latlng")
		if latlng == "" {
			return errBadRequest(c, "latlng query parameter is required")
		}
		point, err := geoapi.ParseLatLng(latlng)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		results, err := geoapi.ReverseGeocode(c.Context(), deps.Client, point).Await(c.Context())
		if err != nil {
			return errUpstream(c, err)
		}
		return c.JSON(results)
	}
}

// DirectionsHandler requests routes between two places.
func DirectionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Query("origin")
		destination := c.Query("destination")
		if origin == "" || destination == "" {
			return errBadRequest(c, "origin and destination query parameters are required")
		}

		var extra []string
		if mode := c.Query("mode"); mode != "" {
			switch mode {
			case "driving", "walking", "bicycling", "transit":
				extra = append(extra, "mode", mode)
			default:
				return errBadRequest(c, "mode must be one of driving, walking, bicycling, transit")
			}
		}

		routes, err := geoapi.Directions(c.Context(), deps.Client, origin, destination, extra...).Await(c.Context())
		if err != nil {
			return errUpstream(c, err)
		}
		return c.JSON(routes)
	}
}
