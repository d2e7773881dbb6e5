package http

import (
	"github.com/txomin/geoapi"
)

// Dependencies holds everything the proxy handlers need.
type Dependencies struct {
	Client *geoapi.Client
}
