package geoapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const singleElevationBody = `{
	"status": "OK",
	"results": [{"elevation": 100.5, "location": {"lat": 43.0, "lng": -2.0}, "resolution": 9.5}]
}`

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(baseURL),
		WithAPIKey("test-key"),
		WithWorkers(4),
		WithQPS(1000),
	}, opts...)
	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	c.backoffInitial = 5 * time.Millisecond
	t.Cleanup(c.Close)
	return c
}

func TestGetSingleSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing key parameter in %q", r.URL.String())
		}
		w.Write([]byte(singleElevationBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	result, err := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background())
	if err != nil {
		t.Fatalf("Await error: %v", err)
	}
	if result.Elevation != 100.5 {
		t.Errorf("elevation = %v, want 100.5", result.Elevation)
	}
}

func TestTransientFailureIsRetriedOnce(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(singleElevationBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	start := time.Now()
	result, err := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background())
	if err != nil {
		t.Fatalf("Await error: %v", err)
	}
	if result.Elevation != 100.5 {
		t.Errorf("elevation = %v, want 100.5", result.Elevation)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("observed %d network attempts, want exactly 2", got)
	}
	// One backoff delay must have elapsed between the attempts.
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Errorf("completed in %s, expected at least one retry delay", elapsed)
	}
}

func TestTerminalRemoteErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "key rejected"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background())

	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != StatusRequestDenied {
		t.Fatalf("error = %v, want *APIError with REQUEST_DENIED", err)
	}
	if ae.Message != "key rejected" {
		t.Errorf("message = %q, want the remote text", ae.Message)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("observed %d attempts, want 1 (no retries)", got)
	}
}

func TestRetryBudgetExhaustion(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithRetryBudget(60*time.Millisecond))

	_, err := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background())

	var budget *RetryBudgetError
	if !errors.As(err, &budget) {
		t.Fatalf("error = %v, want *RetryBudgetError", err)
	}
	var transport *TransportError
	if !errors.As(budget.Last, &transport) {
		t.Errorf("last error = %v, want the underlying *TransportError", budget.Last)
	}
	if budget.Attempts < 2 {
		t.Errorf("attempts = %d, want at least 2 before exhaustion", budget.Attempts)
	}
	if got := attempts.Load(); int(got) != budget.Attempts {
		t.Errorf("server saw %d attempts, error reports %d", got, budget.Attempts)
	}
}

func TestMalformedParamsFailSynchronously(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(singleElevationBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	p := GetSingle[ElevationResult](context.Background(), c, "/maps/api/elevation/json", "locations")

	// The handle must already be terminal: no waiting, no network.
	select {
	case <-p.Done():
	default:
		t.Fatal("malformed params did not complete the handle synchronously")
	}
	_, err := p.Await(context.Background())
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("error = %v, want ErrInvalidParams", err)
	}
	if got := attempts.Load(); got != 0 {
		t.Errorf("server saw %d attempts, want 0", got)
	}
}

func TestCancellationDiscardsInFlightCall(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	p := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2})
	<-started
	p.Cancel()

	start := time.Now()
	_, err := p.Await(context.Background())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, want ErrCancelled", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation did not interrupt the in-flight call promptly")
	}
}

func TestRateLimiterDelaysBurst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(singleElevationBody))
	}))
	defer srv.Close()

	// 20 QPS with burst 1: three instantaneous requests need two permit
	// refills, so the batch takes roughly 2/20 s end to end.
	c := newTestClient(t, srv.URL, WithQPS(20))

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background()); err != nil {
				t.Errorf("Await error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Timing-tolerant: allow generous scheduler slack below the ideal 100ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests at 20 QPS finished in %s, want ≥ ~100ms", elapsed)
	}
}

func TestSetQPSAffectsSubsequentAcquisitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(singleElevationBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithQPS(5))
	c.SetQPS(1000)

	// At the original 5 QPS three requests would take ~400ms.
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background()); err != nil {
			t.Fatalf("Await error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("requests after SetQPS(1000) took %s, limiter update not applied", elapsed)
	}
}

func TestDispatchAfterCloseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(singleElevationBody))
	}))
	defer srv.Close()

	c, err := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	c.Close()

	_, err = ElevationByPoint(context.Background(), c, LatLng{Lat: 43, Lng: -2}).Await(context.Background())
	if !errors.Is(err, ErrClientClosed) {
		t.Fatalf("error = %v, want ErrClientClosed", err)
	}
}

func TestListShapeAndDirectionsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/maps/api/elevation/json":
			w.Write([]byte(okElevationBody))
		case "/maps/api/directions/json":
			w.Write([]byte(`{
				"status": "OK",
				"routes": [{
					"summary": "BI-637",
					"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"},
					"legs": [{"distance": {"text": "12 km", "value": 12000}, "duration": {"text": "15 min", "value": 900}}]
				}]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	results, err := ElevationByPoints(context.Background(), c,
		LatLng{Lat: 43.26271, Lng: -2.92528}, LatLng{Lat: 42.84998, Lng: -2.67268}).Await(context.Background())
	if err != nil {
		t.Fatalf("ElevationByPoints error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d elevation results, want 2", len(results))
	}

	routes, err := Directions(context.Background(), c, "Bilbao", "Getxo").Await(context.Background())
	if err != nil {
		t.Fatalf("Directions error: %v", err)
	}
	if len(routes) != 1 || routes[0].Summary != "BI-637" {
		t.Fatalf("routes = %+v", routes)
	}
	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		t.Fatalf("overview polyline decode error: %v", err)
	}
	if len(points) != 3 || points[0] != (LatLng{Lat: 38.5, Lng: -120.2}) {
		t.Errorf("decoded overview = %+v", points)
	}
	if routes[0].Legs[0].Distance.Meters != 12000 {
		t.Errorf("leg distance = %+v", routes[0].Legs[0].Distance)
	}
}
