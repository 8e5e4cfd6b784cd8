package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coursedesk/internal/config"
	"coursedesk/internal/database"
	"coursedesk/internal/database/sqlitetest"
	"coursedesk/internal/domain"
	"coursedesk/internal/events"
	"coursedesk/internal/modules/auth"
)

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type TestResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const metricsToken = "metrics-test-token"

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := sqlitetest.Open(t)
	require.NoError(t, database.SeedPagePermissions(db))

	hash, err := auth.HashPassword("admin-password")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		Email: "admin@test.com", PasswordHash: hash, Role: domain.RoleAdmin, Name: "Admin",
	}).Error)

	cfg := &config.Config{
		AppEnv:         "dev",
		JWTSecret:      "test_secret_key_32_characters_min",
		JWTTTL:         time.Hour,
		DefaultVATRate: 19,
		PermissionTTL:  time.Minute,
		MetricsToken:   metricsToken,
	}

	hub := events.NewHub()
	t.Cleanup(hub.Close)

	r, err := NewRouter(App{Config: cfg, DB: db, Hub: hub, Publisher: events.Noop{}})
	require.NoError(t, err)
	return &E2ETestSuite{router: r, db: db}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, *TestResponse) {
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
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, &resp
}

func (s *E2ETestSuite) login(t *testing.T, email, password string) string {
	t.Helper()
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func idOf(t *testing.T, m map[string]any, key string) int64 {
	t.Helper()
	obj, ok := m[key].(map[string]any)
	require.True(t, ok, "missing %q in %v", key, m)
	return int64(obj["id"].(float64))
}

func TestFlow_BookingLedger(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name": "Mara Schulz", "email": "mara@test.com", "password": "Password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	studentID := idOf(t, resp.Data, "user")
	studentToken := s.login(t, "mara@test.com", "Password123")
	adminToken := s.login(t, "admin@test.com", "admin-password")

	w, _ = s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/courses", map[string]any{"title": "Deutsch B2", "price": 500, "vat_rate": 19}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	courseID := idOf(t, resp.Data, "course")

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/course-dates", map[string]any{
		"course_id": courseID, "start_date": "2025-10-06", "end_date": "2025-12-19", "seats": 14,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dateID := idOf(t, resp.Data, "course_date")

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"student_id": studentID, "course_date_id": dateID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bk := resp.Data["booking"].(map[string]any)
	bookingID := int64(bk["id"].(float64))
	assert.Equal(t, 500.0, bk["amount"])
	assert.Equal(t, 500.0, bk["saldo"])
	assert.Equal(t, "offen", bk["status"])
	assert.Equal(t, "Mara Schulz", bk["student_name"])
	assert.Equal(t, "Deutsch B2", bk["course_title"])

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": bookingID, "payment_date": "2025-10-01", "amount": 200, "method": "Überweisung",
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ledgerRes := resp.Data["ledger"].(map[string]any)
	assert.Equal(t, 300.0, ledgerRes["saldo"])
	assert.Equal(t, "Anzahlung erhalten", ledgerRes["status"])

	w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/reports/open-balances", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 300.0, resp.Data["total_open"])

	w, resp = s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings?id=%d", bookingID), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	details := resp.Data["booking"].(map[string]any)
	assert.Equal(t, 300.0, details["open_amount"])
	assert.Equal(t, 200.0, details["paid_total"])
	assert.Len(t, details["payments"], 1)

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": bookingID, "payment_date": "2025-11-01", "amount": 300,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)
	ledgerRes = resp.Data["ledger"].(map[string]any)
	assert.Equal(t, 0.0, ledgerRes["saldo"])
	assert.Equal(t, "abgeschlossen", ledgerRes["status"])

	w, _ = s.makeRequest(t, http.MethodPatch, "/api/v1/bookings", map[string]any{"id": bookingID, "status": "Inkasso"}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.makeRequest(t, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": 9999, "payment_date": "2025-11-01", "amount": 10,
	}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlow_PagePermissionsAndSupport(t *testing.T) {
	s := setupTestSuite(t)
	adminToken := s.login(t, "admin@test.com", "admin-password")

	w, _ := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name": "Jonas", "email": "jonas@test.com", "password": "Password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	studentToken := s.login(t, "jonas@test.com", "Password123")

	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/support-tickets", map[string]any{"subject": "Zugang", "body": "Kein Material sichtbar"}, studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Regexp(t, `^T-`, resp.Data["reference"])

	w, _ = s.makeRequest(t, http.MethodPost, "/api/v1/materials", map[string]any{
		"course_id": 1, "title": "x", "url": "https://x.example", "kind": "link",
	}, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.makeRequest(t, http.MethodPut, "/api/v1/permissions", map[string]any{"role": "student", "page": "support", "allowed": false}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.makeRequest(t, http.MethodGet, "/api/v1/support-tickets", nil, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/support-tickets?status=open", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.makeRequest(t, http.MethodGet, "/api/v1/users?role=student", nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.makeRequest(t, http.MethodGet, "/api/v1/users", nil, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFlow_PublicAndOps(t *testing.T) {
	s := setupTestSuite(t)

	w, _ := s.makeRequest(t, http.MethodPost, "/api/v1/leads/submit", map[string]any{"name": "Lea", "email": "lea@test.com", "message": "Abendkurs?"}, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.makeRequest(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.makeRequest(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.makeRequest(t, http.MethodGet, "/metrics", nil, metricsToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.makeRequest(t, http.MethodGet, "/ws/ledger", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
