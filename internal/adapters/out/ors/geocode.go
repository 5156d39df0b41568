package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves text with the Pelias search endpoint, keeping the best match.
// A query without match returns an error wrapping errs.ErrObjectNotFound. Geocoding
// is not retried: a failed lookup leaves the order for the next cycle.
func (c *Client) Geocode(ctx context.Context, text string, apiKey string) (kernel.Coordinates, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return kernel.Coordinates{}, errs.NewValueIsRequiredError("geocode text")
	}

	query := map[string]string{
		"text":             text,
		"size":             "1",
		"boundary.country": c.country,
	}
	payload, err := c.breaker.Execute(func() (any, error) {
		return c.send(ctx, http.MethodGet, c.baseURL+"/geocode/search", apiKey, query, nil)
	})
	if err != nil {
		return kernel.Coordinates{}, fmt.Errorf("%w: %w", ErrGeocoderFailed, err)
	}

	var decoded geocodeResponse
	if err = json.Unmarshal(payload.([]byte), &decoded); err != nil {
		return kernel.Coordinates{}, fmt.Errorf("%w: decode response: %w", ErrGeocoderFailed, err)
	}
	if len(decoded.Features) == 0 {
		return kernel.Coordinates{}, errs.NewObjectNotFoundError("geocode match", text)
	}

	coordinates, err := kernel.NewCoordinatesFromPair(decoded.Features[0].Geometry.Coordinates)
	if err != nil {
		return kernel.Coordinates{}, fmt.Errorf("%w: %w", ErrGeocoderFailed, err)
	}

	c.logger.DebugContext(ctx, "Address geocoded", "text", text, "coordinates", coordinates.String())
	return coordinates, nil
}
