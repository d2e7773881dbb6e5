package geoapi

import "context"

const geocodePath = "/maps/api/geocode/json"

// AddressComponent is one granular part of a returned address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Geometry locates a geocoding result and qualifies its precision.
type Geometry struct {
	Location     LatLng `json:"location"`
	LocationType string `json:"location_type"`
}

// GeocodingResult is one forward- or reverse-geocoding match.
type GeocodingResult struct {
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          Geometry           `json:"geometry"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
}

// Geocode resolves a free-form address to coordinates. A miss surfaces as an
// *APIError with StatusZeroResults, which callers usually treat as a normal
// empty answer rather than a fault.
func Geocode(ctx context.Context, c *Client, address string) *PendingResult[[]GeocodingResult] {
	return GetList[GeocodingResult](ctx, c, geocodePath,
		"address", address)
}

// ReverseGeocode resolves coordinates to the addresses covering them.
func ReverseGeocode(ctx context.Context, c *Client, point LatLng) *PendingResult[[]GeocodingResult] {
	return GetList[GeocodingResult](ctx, c, geocodePath,
		"latlng", point.String())
}
