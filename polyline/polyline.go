// Package polyline implements the Google Encoded Polyline Algorithm Format
// at 5 decimal places of precision (1e-5 degrees).
//
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"errors"
	"math"
)

// ErrMalformed is returned when a polyline string cannot be decoded, for
// example when it is truncated mid-value.
var ErrMalformed = errors.New("polyline: malformed encoding")

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Encode converts an ordered sequence of points into a polyline string.
// An empty sequence encodes to the empty string. Coordinates are rounded to
// the nearest 1e-5 degree; that precision loss is inherent to the format.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*10)

	prevLat, prevLng := int64(0), int64(0)
	for _, p := range points {
		lat := int64(math.Round(p.Lat * 1e5))
		lng := int64(math.Round(p.Lng * 1e5))

		buf = appendSigned(buf, lat-prevLat)
		buf = appendSigned(buf, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

// Decode converts a polyline string back into the point sequence it encodes.
// The empty string decodes to an empty sequence. A string whose final byte
// still carries the continuation bit is malformed.
func Decode(encoded string) ([]Point, error) {
	points := make([]Point, 0, len(encoded)/8+1)

	lat, lng := int64(0), int64(0)
	i := 0
	for i < len(encoded) {
		dLat, n, err := decodeSigned(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n
		lat += dLat

		if i >= len(encoded) {
			return nil, ErrMalformed
		}
		dLng, n, err := decodeSigned(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n
		lng += dLng

		points = append(points, Point{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return points, nil
}

// appendSigned zig-zag folds v and emits it in 5-bit groups, low bits first.
// Every group except the last has bit 0x20 set; all groups are offset by 63
// to land in printable ASCII.
func appendSigned(buf []byte, v int64) []byte {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		buf = append(buf, byte(0x20|(u&0x1f))+63)
		u >>= 5
	}
	return append(buf, byte(u)+63)
}

// decodeSigned reads one zig-zag folded value from the front of s and
// returns it along with the number of bytes consumed.
func decodeSigned(s string) (int64, int, error) {
	var u uint64
	var shift uint
	for i := 0; i < len(s); i++ {
		b := s[i] - 63
		if b > 0x3f {
			return 0, 0, ErrMalformed
		}
		u |= uint64(b&0x1f) << shift
		if b&0x20 == 0 {
			v := int64(u >> 1)
			if u&1 != 0 {
				v = ^v
			}
			return v, i + 1, nil
		}
		shift += 5
	}
	// Ran out of input with the continuation bit still set.
	return 0, 0, ErrMalformed
}
