package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newDedupRouter(cfg DedupConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/alert", Dedup(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestDedupBlocksSecondRequestInWindow(t *testing.T) {
	r := newDedupRouter(DedupConfig{
		Window:  time.Minute,
		KeyFunc: func(c *gin.Context) string { return c.Query("device") },
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/alert?device=ARD-001", nil))
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/alert?device=ARD-001", nil))
	assert.Equal(t, http.StatusConflict, w2.Code)
}

func TestDedupAllowsDistinctDevices(t *testing.T) {
	r := newDedupRouter(DedupConfig{
		Window:  time.Minute,
		KeyFunc: func(c *gin.Context) string { return c.Query("device") },
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/alert?device=ARD-001", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/alert?device=ARD-002", nil))

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestDedupFallsBackToBodyHash(t *testing.T) {
	r := newDedupRouter(DedupConfig{Window: time.Minute})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/alert", strings.NewReader("payload")))
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/alert", strings.NewReader("payload")))
	assert.Equal(t, http.StatusConflict, w2.Code)
}
