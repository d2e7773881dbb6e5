package geoapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/txomin/geoapi/polyline"
)

// LatLng is a geographic coordinate in degrees. It is a plain value type:
// two LatLngs with equal fields are the same place.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the coordinate as "lat,lng" with a fixed six-decimal
// format, so the server never sees locale-dependent separators.
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Lat, 'f', 6, 64) + "," +
		strconv.FormatFloat(l.Lng, 'f', 6, 64)
}

// Valid reports whether the coordinate lies within WGS 84 bounds.
func (l LatLng) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// ParseLatLng parses a "lat,lng" pair.
func ParseLatLng(s string) (LatLng, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return LatLng{}, fmt.Errorf("%w: coordinate %q is not lat,lng", ErrInvalidParams, s)
	}
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: latitude %q", ErrInvalidParams, lat)
	}
	lngF, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: longitude %q", ErrInvalidParams, lng)
	}
	ll := LatLng{Lat: latF, Lng: lngF}
	if !ll.Valid() {
		return LatLng{}, fmt.Errorf("%w: coordinate %q out of range", ErrInvalidParams, s)
	}
	return ll, nil
}

// PathParam renders a point sequence as a URL parameter value, choosing
// whichever of the literal "lat,lng|…" form and the "enc:"-prefixed polyline
// form is shorter. The comparison is over the raw strings, before
// percent-encoding, which is only an estimate of the transmitted length;
// ties keep the literal form.
func PathParam(points ...LatLng) string {
	literal := joinPoints(points)
	encoded := "enc:" + polyline.Encode(codecPoints(points))
	if len(encoded) < len(literal) {
		return encoded
	}
	return literal
}

func joinPoints(points []LatLng) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(p.String())
	}
	return b.String()
}

func codecPoints(points []LatLng) []polyline.Point {
	out := make([]polyline.Point, len(points))
	for i, p := range points {
		out[i] = polyline.Point{Lat: p.Lat, Lng: p.Lng}
	}
	return out
}
