package payment

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

	"coursedesk/internal/database/sqlitetest"
	"coursedesk/internal/domain"
	"coursedesk/internal/modules/ledger"
	"coursedesk/internal/repository"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := sqlitetest.Open(t)
	svc := NewService(
		repository.NewPaymentRepository(db),
		repository.NewBookingRepository(db),
		ledger.NewService(db, nil, nil),
	)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, db
}

func doJSONRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func seedBooking(t *testing.T, db *gorm.DB, amount float64) int64 {
	t.Helper()
	b := &domain.Booking{Code: "BK-TEST-" + t.Name(), BookingDate: time.Now(), Amount: &amount, Saldo: amount, Status: domain.BookingOpen, StudentID: 1}
	require.NoError(t, db.Create(b).Error)
	return b.ID
}

func TestPaymentFlow(t *testing.T) {
	r, db := setupTestRouter(t)
	bookingID := seedBooking(t, db, 500)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": bookingID, "amount": 200, "payment_date": "2025-03-01", "method": "Überweisung",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created PaymentResult
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &created))
	assert.Equal(t, 300.0, created.Ledger.Saldo)
	assert.Equal(t, domain.BookingDepositReceived, created.Ledger.Status)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": bookingID, "amount": 300, "payment_date": "2025-03-15",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/payments?booking_id=%d", bookingID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Payments []domain.Payment `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &list))
	require.Len(t, list.Payments, 2)

	var b domain.Booking
	require.NoError(t, db.First(&b, bookingID).Error)
	assert.Equal(t, 0.0, b.Saldo)
	assert.Equal(t, domain.BookingCompleted, b.Status)

	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/payments?id=%d", created.Payment.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, db.First(&b, bookingID).Error)
	assert.Equal(t, 200.0, b.Saldo)
	assert.Equal(t, 300.0, b.PaidTotal)
	assert.Equal(t, domain.BookingDepositReceived, b.Status)
}

func TestPaymentErrors(t *testing.T) {
	r, db := setupTestRouter(t)
	bookingID := seedBooking(t, db, 500)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": 4242, "amount": 10, "payment_date": "2025-03-01",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rr).Error.Code)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": bookingID, "amount": 0, "payment_date": "2025-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/payments", map[string]any{
		"booking_id": bookingID, "amount": 10, "payment_date": "gestern",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodDelete, "/api/v1/payments?id=777", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/payments?booking_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/payments?booking_id=4242", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetMethods(t *testing.T) {
	r, _ := setupTestRouter(t)
	rr := doJSONRequest(r, http.MethodGet, "/api/v1/payments/methods", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Lastschrift")
}
