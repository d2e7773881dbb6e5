package geoapi

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildQueryOrderingAndEscaping(t *testing.T) {
	q, err := buildQuery([]string{"b", "2", "a", "1", "addr", "Plaza Moyúa"})
	if err != nil {
		t.Fatalf("buildQuery error: %v", err)
	}
	// Caller ordering is preserved, not sorted.
	want := "b=2&a=1&addr=Plaza+Moy%C3%BAa"
	if q != want {
		t.Errorf("buildQuery = %q, want %q", q, want)
	}
}

func TestBuildQueryRejectsMalformedPairs(t *testing.T) {
	cases := [][]string{
		{"samples"},                    // odd count
		{"a", "1", "a", "2"},           // duplicate key
		{"", "1"},                      // empty key
		{"a", "1", "b", "2", "a", "3"}, // duplicate later on
	}
	for _, pairs := range cases {
		if _, err := buildQuery(pairs); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("buildQuery(%v) error = %v, want ErrInvalidParams", pairs, err)
		}
	}
}

func TestRequestURLAppendsKey(t *testing.T) {
	c := &Client{baseURL: "https://example.test", apiKey: "secret-key"}
	u, err := c.requestURL("/maps/api/elevation/json", []string{"locations", "1.000000,2.000000"})
	if err != nil {
		t.Fatalf("requestURL error: %v", err)
	}
	want := "https://example.test/maps/api/elevation/json?locations=1.000000%2C2.000000&key=secret-key"
	if u != want {
		t.Errorf("requestURL = %q, want %q", u, want)
	}
}

func TestRequestURLSignsPathAndQuery(t *testing.T) {
	c, err := NewClient(
		WithBaseURL("https://example.test"),
		WithClientIDAndSecret("gme-client", "dGVzdC1zaWduaW5nLWtleQ=="),
	)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer c.Close()

	u1, err := c.requestURL("/maps/api/geocode/json", []string{"address", "Bilbao"})
	if err != nil {
		t.Fatalf("requestURL error: %v", err)
	}
	if !strings.Contains(u1, "client=gme-client") {
		t.Errorf("signed URL missing client parameter: %q", u1)
	}
	if !strings.Contains(u1, "&signature=") {
		t.Errorf("signed URL missing signature parameter: %q", u1)
	}
	if !strings.HasPrefix(u1, "https://example.test/maps/api/geocode/json?address=Bilbao") {
		t.Errorf("caller parameters were modified: %q", u1)
	}

	// Same inputs must sign identically.
	u2, _ := c.requestURL("/maps/api/geocode/json", []string{"address", "Bilbao"})
	if u1 != u2 {
		t.Errorf("signing is not deterministic: %q vs %q", u1, u2)
	}
}
