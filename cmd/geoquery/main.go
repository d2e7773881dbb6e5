// geoquery runs one-shot queries against the geospatial API family and
// prints the results as JSON.
//
// Usage:
//
//	geoquery elevation 43.26271,-2.92528
//	geoquery elevation 38.5,-120.2 40.7,-120.95
//	geoquery geocode "Plaza Moyúa, Bilbao"
//	geoquery reverse 43.26271,-2.92528
//	geoquery directions "Bilbao" "Donostia" [mode]
//
// Credentials and tuning come from the GEOAPI_* environment or config.yaml.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/txomin/geoapi"
	"github.com/txomin/geoapi/internal/pkg/config"
	"github.com/txomin/geoapi/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cfg, err := config.Load("geoquery")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("geoquery", cfg.Log.Level, "text")

	opts := []geoapi.Option{
		geoapi.WithBaseURL(cfg.API.BaseURL),
		geoapi.WithQPS(cfg.API.QPS),
		geoapi.WithRetryBudget(time.Duration(cfg.API.RetryBudgetSeconds) * time.Second),
	}
	switch {
	case cfg.API.ClientID != "" && cfg.API.Secret != "":
		opts = append(opts, geoapi.WithClientIDAndSecret(cfg.API.ClientID, cfg.API.Secret))
	case cfg.API.Key != "":
		opts = append(opts, geoapi.WithAPIKey(cfg.API.Key))
	default:
		log.Fatal("set GEOAPI_API_KEY or GEOAPI_API_CLIENT_ID + GEOAPI_API_SECRET")
	}

	client, err := geoapi.NewClient(opts...)
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var result any
	switch os.Args[1] {
	case "elevation":
		points := parsePoints(os.Args[2:])
		if len(points) == 1 {
			result, err = geoapi.ElevationByPoint(ctx, client, points[0]).Await(ctx)
		} else {
			result, err = geoapi.ElevationByPoints(ctx, client, points...).Await(ctx)
		}
	case "geocode":
		result, err = geoapi.Geocode(ctx, client, os.Args[2]).Await(ctx)
	case "reverse":
		point := parsePoints(os.Args[2:3])[0]
		result, err = geoapi.ReverseGeocode(ctx, client, point).Await(ctx)
	case "directions":
		if len(os.Args) < 4 {
			usage()
		}
		var extra []string
		if len(os.Args) > 4 {
			extra = []string{"mode", os.Args[4]}
		}
		result, err = geoapi.Directions(ctx, client, os.Args[2], os.Args[3], extra...).Await(ctx)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(out))
}

func parsePoints(args []string) []geoapi.LatLng {
	points := make([]geoapi.LatLng, 0, len(args))
	for _, arg := range args {
		ll, err := geoapi.ParseLatLng(arg)
		if err != nil {
			log.Fatalf("bad coordinate %q: %v", arg, err)
		}
		points = append(points, ll)
	}
	if len(points) == 0 {
		usage()
	}
	return points
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  geoquery elevation <lat,lng> [lat,lng ...]
  geoquery geocode <address>
  geoquery reverse <lat,lng>
  geoquery directions <origin> <destination> [mode]`)
	os.Exit(2)
}
