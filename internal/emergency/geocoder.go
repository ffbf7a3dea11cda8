package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder resolves coordinates through the Google Maps Geocoding
// API. Missing credentials, transport errors and empty result sets all
// degrade to a coordinate string; a lookup is retried a bounded number of
// times because it is an idempotent read.
type GoogleGeocoder struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	maxRetries    uint64
	retryInterval time.Duration
	log           *zap.SugaredLogger
}

func NewGoogleGeocoder(apiKey string, httpClient *http.Client, log *zap.SugaredLogger) *GoogleGeocoder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &GoogleGeocoder{
		apiKey:        apiKey,
		baseURL:       googleGeocodeURL,
		httpClient:    httpClient,
		maxRetries:    2,
		retryInterval: 500 * time.Millisecond,
		log:           log,
	}
}

// ReverseGeocode returns a display address, or the coordinate fallback.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	fallback := CoordinateFallback(lat, lon)
	if g.apiKey == "" {
		g.log.Warnw("google maps api key not configured, returning coordinates")
		return fallback
	}

	var address string
	lookup := func() error {
		addr, err := g.lookup(ctx, lat, lon)
		if err != nil {
			return err
		}
		address = addr
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.retryInterval
	err := backoff.Retry(lookup, backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx))
	if err != nil {
		g.log.Warnw("reverse geocoding failed, returning coordinates", "err", err)
		return fallback
	}
	if address == "" {
		return fallback
	}
	g.log.Infow("reverse geocoding complete", "address", address)
	return address
}

func (g *GoogleGeocoder) lookup(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lon)))
	q.Set("key", g.apiKey)
	q.Set("language", "ko")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("geocoding service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", backoff.Permanent(fmt.Errorf("geocoding request rejected: %d", resp.StatusCode))
	}

	var body struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		// an empty result set is a valid answer, not a retryable fault
		return "", nil
	}
	return body.Results[0].FormattedAddress, nil
}

// CoordinateFallback is the deterministic address used when geocoding is
// unavailable.
func CoordinateFallback(lat, lon float64) string {
	return fmt.Sprintf("lat: %s, lon: %s", formatCoord(lat), formatCoord(lon))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
