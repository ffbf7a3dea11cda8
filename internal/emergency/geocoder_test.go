package emergency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *GoogleGeocoder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := NewGoogleGeocoder("test-key", srv.Client(), zap.NewNop().Sugar())
	g.baseURL = srv.URL
	g.retryInterval = time.Millisecond
	return g
}

func TestReverseGeocode(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("latlng"), "37.5665")
		fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"Teheran-ro 123, Gangnam-gu, Seoul"}]}`)
	})

	addr := g.ReverseGeocode(context.Background(), 37.5665, 126.978)
	assert.Equal(t, "Teheran-ro 123, Gangnam-gu, Seoul", addr)
}

func TestReverseGeocodeNoKeyFallsBack(t *testing.T) {
	g := NewGoogleGeocoder("", nil, zap.NewNop().Sugar())

	addr := g.ReverseGeocode(context.Background(), 37.5665, 126.978)
	assert.Equal(t, "lat: 37.5665, lon: 126.978", addr)
}

func TestReverseGeocodeEmptyResultsFallsBack(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	addr := g.ReverseGeocode(context.Background(), 1.5, -2.25)
	assert.Equal(t, "lat: 1.5, lon: -2.25", addr)
}

func TestReverseGeocodeServerErrorRetriesThenFallsBack(t *testing.T) {
	var hits atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	addr := g.ReverseGeocode(context.Background(), 37.5665, 126.978)
	assert.Equal(t, "lat: 37.5665, lon: 126.978", addr)
	assert.Equal(t, int32(3), hits.Load(), "initial attempt plus two retries")
}

func TestReverseGeocodeRecoversOnRetry(t *testing.T) {
	var hits atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "internal", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"Somewhere"}]}`)
	})

	addr := g.ReverseGeocode(context.Background(), 37.5665, 126.978)
	assert.Equal(t, "Somewhere", addr)
	assert.Equal(t, int32(2), hits.Load())
}

func TestReverseGeocodeRejectedKeyDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	addr := g.ReverseGeocode(context.Background(), 37.5665, 126.978)
	assert.Equal(t, "lat: 37.5665, lon: 126.978", addr)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCoordinateFallbackFormat(t *testing.T) {
	assert.Equal(t, "lat: 37.5665, lon: 126.978", CoordinateFallback(37.5665, 126.978))
	assert.Equal(t, "lat: 0, lon: 0", CoordinateFallback(0, 0))
}
