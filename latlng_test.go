package geoapi

import (
	"strings"
	"testing"

	"github.com/txomin/geoapi/polyline"
)

func TestLatLngString(t *testing.T) {
	cases := []struct {
		in   LatLng
		want string
	}{
		{LatLng{Lat: 43.26271, Lng: -2.92528}, "43.262710,-2.925280"},
		{LatLng{Lat: 0, Lng: 0}, "0.000000,0.000000"},
		{LatLng{Lat: -90, Lng: 180}, "-90.000000,180.000000"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLatLng(t *testing.T) {
	ll, err := ParseLatLng("43.26271,-2.92528")
	if err != nil {
		t.Fatalf("ParseLatLng error: %v", err)
	}
	if ll.Lat != 43.26271 || ll.Lng != -2.92528 {
		t.Errorf("ParseLatLng = %+v", ll)
	}

	for _, bad := range []string{"", "43.2", "a,b", "91,0", "0,181"} {
		if _, err := ParseLatLng(bad); err == nil {
			t.Errorf("ParseLatLng(%q) succeeded, want error", bad)
		}
	}
}

func TestPathParamPrefersShorter(t *testing.T) {
	short := []LatLng{{Lat: 43.26271, Lng: -2.92528}}
	long := make([]LatLng, 0, 40)
	for i := 0; i < 40; i++ {
		long = append(long, LatLng{
			Lat: 43.26 + float64(i)*0.0001,
			Lng: -2.92 - float64(i)*0.0001,
		})
	}

	for _, points := range [][]LatLng{short, long} {
		literal := joinPoints(points)
		encoded := "enc:" + polyline.Encode(codecPoints(points))
		got := PathParam(points...)

		if len(got) > len(literal) || len(got) > len(encoded) {
			t.Errorf("PathParam returned %d bytes, candidates are %d and %d",
				len(got), len(literal), len(encoded))
		}
		if got != literal && got != encoded {
			t.Errorf("PathParam returned neither candidate: %q", got)
		}
		// Ties and equal lengths keep the literal form.
		if len(literal) <= len(encoded) && got != literal {
			t.Errorf("PathParam = encoded form despite literal being no longer")
		}
	}

	// A single point is always shorter literally than with the enc: prefix
	// overhead; a long dense path compresses well.
	if got := PathParam(short...); strings.HasPrefix(got, "enc:") {
		t.Errorf("single point chose encoded form: %q", got)
	}
	if got := PathParam(long...); !strings.HasPrefix(got, "enc:") {
		t.Errorf("dense 40-point path chose literal form (%d bytes)", len(got))
	}
}
