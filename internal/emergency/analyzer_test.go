package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/guji3/ping/internal/models"
)

func newTestAnalyzer(t *testing.T, handler http.Handler) *OpenAIAnalyzer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIAnalyzer(AnalyzerConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
	}, zap.NewNop().Sugar())
}

func chatAnswer(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestTranscribe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(16<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		fmt.Fprint(w, `{"text":"help me please"}`)
	})
	a := newTestAnalyzer(t, mux)

	text, err := a.Transcribe(context.Background(), []byte("audio-bytes"), "sos.mp3")
	require.NoError(t, err)
	assert.Equal(t, "help me please", text)
}

func TestTranscribeServiceErrorIsCoded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusBadGateway)
	})
	a := newTestAnalyzer(t, mux)

	_, err := a.Transcribe(context.Background(), []byte("audio"), "sos.mp3")
	require.Error(t, err)
	assert.True(t, IsTranscriptionFailed(err))
}

func TestClassifyParsesAnswer(t *testing.T) {
	a := newTestAnalyzer(t, chatAnswer(`{"situation":"kidnapping","dangerLevel":"HIGH","analysis":"victim asked for help","recommendAction":"call the police"}`))

	res, err := a.Classify(context.Background(), "help me please")
	require.NoError(t, err)
	assert.Equal(t, "kidnapping", res.Situation)
	assert.Equal(t, models.DangerHigh, res.DangerLevel)
	assert.Equal(t, "help me please", res.Transcript)
	assert.Equal(t, "call the police", res.RecommendAction)
}

func TestClassifyCoercesUnknownDangerLevel(t *testing.T) {
	a := newTestAnalyzer(t, chatAnswer(`{"situation":"unclear","dangerLevel":"CATASTROPHIC","analysis":"","recommendAction":""}`))

	res, err := a.Classify(context.Background(), "mumbling")
	require.NoError(t, err)
	assert.Equal(t, models.DangerMedium, res.DangerLevel)
}

func TestClassifyHandlesFencedJSON(t *testing.T) {
	a := newTestAnalyzer(t, chatAnswer("```json\n{\"situation\":\"accident\",\"dangerLevel\":\"low\"}\n```"))

	res, err := a.Classify(context.Background(), "i fell down")
	require.NoError(t, err)
	assert.Equal(t, "accident", res.Situation)
	assert.Equal(t, models.DangerLow, res.DangerLevel)
}

func TestClassifyRejectsNonJSON(t *testing.T) {
	a := newTestAnalyzer(t, chatAnswer("I cannot answer in JSON, sorry."))

	_, err := a.Classify(context.Background(), "help")
	assert.Error(t, err)
}

func TestClassifyServiceError(t *testing.T) {
	a := newTestAnalyzer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))

	_, err := a.Classify(context.Background(), "help")
	assert.Error(t, err)
}
