package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/guji3/ping/internal/emergency"
	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/auth"
	"github.com/guji3/ping/pkg/response"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return "help me", nil
}

func (stubAnalyzer) Classify(ctx context.Context, transcript string) (*emergency.AnalysisResult, error) {
	return &emergency.AnalysisResult{
		Transcript:  transcript,
		Situation:   "assault in progress",
		DangerLevel: models.DangerHigh,
	}, nil
}

type stubGeocoder struct{}

func (stubGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	return "123 Test St"
}

type stubNotifier struct{}

func (stubNotifier) Dispatch(ctx context.Context, contacts []models.EmergencyContact, userName string,
	lat, lon float64, address, situation string) map[string]bool {
	out := make(map[string]bool, len(contacts))
	for _, c := range contacts {
		out[c.Phone] = true
	}
	return out
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.EmergencyContact{}, &models.EmergencyLog{}))

	log := zap.NewNop().Sugar()
	store := emergency.NewStore(db)
	pipeline := emergency.NewPipeline(store, store, stubAnalyzer{}, stubGeocoder{}, stubNotifier{}, store, log)
	jwtMgr := auth.NewManager("test-secret", time.Hour)
	h := New(db, jwtMgr, pipeline, log)
	return NewRouter(h, jwtMgr, RouterOptions{Mode: gin.TestMode}), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func registerAndLogin(t *testing.T, r *gin.Engine, email, serial string) string {
	t.Helper()
	body := gin.H{
		"email":    email,
		"password": "secret-pass",
		"name":     "Kim",
		"phone":    "010-0000-0000",
	}
	if serial != "" {
		body["deviceSerial"] = serial
	}
	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := env.Data.(map[string]any)
	return data["token"].(string)
}

func addContact(t *testing.T, r *gin.Engine, token, name, phone string, priority int) {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/api/contacts", token, gin.H{
		"name": name, "phone": phone, "priority": priority,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRegisterLoginAndContacts(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "ARD-001")

	addContact(t, r, token, "Dad", "010-2222-2222", 2)
	addContact(t, r, token, "Mom", "010-1111-1111", 1)

	w, env := doJSON(t, r, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := env.Data.([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "Mom", first["name"], "contacts must come back priority ascending")
}

func TestAddContactDeactivated(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "")

	w, _ := doJSON(t, r, http.MethodPost, "/api/contacts", token, gin.H{
		"name": "Uncle", "phone": "010-5555-5555", "priority": 1, "active": false,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var saved models.EmergencyContact
	require.NoError(t, db.First(&saved).Error)
	assert.False(t, saved.Active, "a contact created inactive must stay inactive")

	_, env := doJSON(t, r, http.MethodGet, "/api/contacts", token, nil)
	first := env.Data.([]any)[0].(map[string]any)
	assert.Equal(t, false, first["active"])
}

func TestContactLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "")

	for i := 1; i <= models.MaxContactsPerUser; i++ {
		addContact(t, r, token, fmt.Sprintf("c%d", i), fmt.Sprintf("010-%04d", i), i)
	}
	w, env := doJSON(t, r, http.MethodPost, "/api/contacts", token, gin.H{
		"name": "one too many", "phone": "010-9999", "priority": 6,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "at most 5")
}

func TestContactReorder(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "")
	addContact(t, r, token, "Mom", "010-1111", 1)
	addContact(t, r, token, "Dad", "010-2222", 2)

	var contacts []models.EmergencyContact
	require.NoError(t, db.Order("priority asc").Find(&contacts).Error)
	require.Len(t, contacts, 2)

	w, _ := doJSON(t, r, http.MethodPut, "/api/contacts/reorder", token, gin.H{
		"contactIds": []uint{contacts[1].ID, contacts[0].ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var dad models.EmergencyContact
	require.NoError(t, db.First(&dad, contacts[1].ID).Error)
	assert.Equal(t, 1, dad.Priority)
}

func TestReorderRejectsForeignContact(t *testing.T) {
	r, db := newTestRouter(t)
	tokenA := registerAndLogin(t, r, "a@example.com", "")
	tokenB := registerAndLogin(t, r, "b@example.com", "")
	addContact(t, r, tokenB, "Theirs", "010-3333", 1)

	var theirs models.EmergencyContact
	require.NoError(t, db.First(&theirs).Error)

	w, _ := doJSON(t, r, http.MethodPut, "/api/contacts/reorder", tokenA, gin.H{
		"contactIds": []uint{theirs.ID},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var after models.EmergencyContact
	require.NoError(t, db.First(&after, theirs.ID).Error)
	assert.Equal(t, 1, after.Priority, "foreign reorder must not touch the contact")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/contacts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func alertForm(t *testing.T, serial string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("deviceSerial", serial))
	require.NoError(t, mw.WriteField("latitude", "37.5665"))
	require.NoError(t, mw.WriteField("longitude", "126.978"))
	fw, err := mw.CreateFormFile("audioFile", "sos.mp3")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAlertEndToEnd(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "ARD-001")
	addContact(t, r, token, "Mom", "010-1111-1111", 1)

	buf, ctype := alertForm(t, "ARD-001")
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data := env.Data.(map[string]any)
	assert.Equal(t, "Kim", data["userName"])
	assert.Equal(t, "help me", data["audioText"])
	assert.Equal(t, "HIGH", data["dangerLevel"])
	assert.Equal(t, "123 Test St", data["locationAddress"])
	assert.Equal(t, true, data["notificationSuccess"])

	var count int64
	require.NoError(t, db.Model(&models.EmergencyLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAlertUnknownDevice(t *testing.T) {
	r, _ := newTestRouter(t)

	buf, ctype := alertForm(t, "NOPE-404")
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var env response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, emergency.CodeDeviceNotRegistered, env.Code)
}

func TestAlertNoContacts(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r, "kim@example.com", "ARD-001")

	buf, ctype := alertForm(t, "ARD-001")
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var env response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, emergency.CodeNoContactsConfigured, env.Code)
}

func TestTestAlertSkipsAudio(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "ARD-001")
	addContact(t, r, token, "Mom", "010-1111-1111", 1)

	w, env := doJSON(t, r, http.MethodPost, "/api/emergency/test-alert", "", gin.H{
		"deviceSerial": "ARD-001",
		"latitude":     37.5665,
		"longitude":    126.978,
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, "LOW", data["dangerLevel"])
	assert.Empty(t, data["audioText"])
}

func TestLogsHistoryAndRecentCount(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "ARD-001")
	addContact(t, r, token, "Mom", "010-1111-1111", 1)

	buf, ctype := alertForm(t, "ARD-001")
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w2, env := doJSON(t, r, http.MethodGet, "/api/logs", token, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	require.Len(t, env.Data.([]any), 1)

	tokenOther := registerAndLogin(t, r, "other@example.com", "ARD-002")
	addContact(t, r, tokenOther, "Aunt", "010-4444-4444", 1)
	buf, ctype = alertForm(t, "ARD-002")
	req = httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w2, env = doJSON(t, r, http.MethodGet, "/api/logs/recent-count", token, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	count := env.Data.(map[string]any)["count"].(float64)
	assert.EqualValues(t, 1, count, "another user's alert must not leak into the count")
}

func TestLogDetailOwnership(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "ARD-001")
	tokenOther := registerAndLogin(t, r, "other@example.com", "")
	addContact(t, r, token, "Mom", "010-1111-1111", 1)

	buf, ctype := alertForm(t, "ARD-001")
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var record models.EmergencyLog
	require.NoError(t, db.First(&record).Error)
	path := fmt.Sprintf("/api/logs/%d", record.ID)

	w2, _ := doJSON(t, r, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, w2.Code)

	w2, _ = doJSON(t, r, http.MethodGet, path, tokenOther, nil)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}

func TestDeviceStatusPoll(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r, "kim@example.com", "ARD-001")
	addContact(t, r, token, "Mom", "010-1111-1111", 1)

	buf, ctype := alertForm(t, "ARD-001")
	req := httptest.NewRequest(http.MethodPost, "/api/emergency/alert", buf)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var record models.EmergencyLog
	require.NoError(t, db.First(&record).Error)

	w2, _ := doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/emergency/status/%d?deviceSerial=ARD-001", record.ID), "", nil)
	assert.Equal(t, http.StatusOK, w2.Code)

	w2, _ = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/emergency/status/%d?deviceSerial=OTHER", record.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}

func TestHealthAndMetricsExposed(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total") ||
		strings.Contains(w.Body.String(), "go_goroutines"))
}
