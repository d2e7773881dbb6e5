package geoapi

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire shape shared by the list and singular response
// contracts: a status string, an optional error message, and the results.
type envelope[T any] struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []T    `json:"results"`
}

// classifyList decodes a payload declared to carry zero or more results.
// The classification is pure: the same payload always yields the same
// result or the same error.
func classifyList[T any](body []byte) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if env.Status != string(StatusOK) {
		return nil, apiErrorFrom(env.Status, env.ErrorMessage)
	}
	return env.Results, nil
}

// classifySingle decodes a payload declared to carry exactly one result.
// An OK status with an empty result list violates the declared shape and is
// a decode error, not a remote one.
func classifySingle[T any](body []byte) (T, error) {
	var zero T
	results, err := classifyList[T](body)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, fmt.Errorf("%w: status OK with no results for singular response", ErrDecode)
	}
	return results[0], nil
}
