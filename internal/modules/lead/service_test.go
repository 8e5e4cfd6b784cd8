package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"coursedesk/internal/database"
	"coursedesk/internal/database/sqlitetest"
	"coursedesk/internal/domain"
	"coursedesk/internal/repository"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := sqlitetest.Open(t)
	sx, err := database.SQLX(db)
	require.NoError(t, err)
	return NewService(repository.NewLeadRepository(sx), repository.NewUserRepository(db)), db
}

func TestSubmitLead_DeduplicatesOpenLead(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, created, err := svc.SubmitLead(ctx, &SubmitLeadRequest{Name: "Lena", Email: "Lena@Example.com", Message: "B2 im Herbst?"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "lena@example.com", first.Email)
	assert.Equal(t, "website", first.Source)
	assert.Equal(t, domain.LeadNew, first.Status)

	second, created, err := svc.SubmitLead(ctx, &SubmitLeadRequest{Name: "Lena", Email: "lena@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestLeadPipeline(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	l, _, err := svc.SubmitLead(ctx, &SubmitLeadRequest{Name: "Omar", Email: "omar@example.com", Phone: "0151 123"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkContacted(ctx, l.ID))
	require.NoError(t, svc.MarkContacted(ctx, l.ID))
	got, err := svc.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadContacted, got.Status)
	assert.Equal(t, 2, got.FollowUpCount)
	assert.NotNil(t, got.LastContactedAt)

	require.NoError(t, svc.UpdateStatus(ctx, l.ID, domain.LeadQualified, "will Abendkurs"))
	assert.ErrorIs(t, svc.UpdateStatus(ctx, l.ID, domain.LeadConverted, ""), ErrInvalidStatus)

	res, err := svc.ConvertLead(ctx, l.ID, &ConvertLeadRequest{Password: "willkommen1"})
	require.NoError(t, err)

	var user domain.User
	require.NoError(t, db.First(&user, res.StudentID).Error)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Equal(t, "Omar", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("willkommen1")))

	got, err = svc.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.IsConverted())
	require.NotNil(t, got.ConvertedUserID)
	assert.Equal(t, user.ID, *got.ConvertedUserID)

	_, err = svc.ConvertLead(ctx, l.ID, &ConvertLeadRequest{Password: "willkommen1"})
	assert.ErrorIs(t, err, ErrAlreadyConverted)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, l.ID, domain.LeadLost, ""), ErrAlreadyConverted)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[domain.LeadConverted])
}

func TestConvertLead_Refusals(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.User{Email: "taken@example.com", PasswordHash: "x", Role: domain.RoleStudent}).Error)
	taken, _, err := svc.SubmitLead(ctx, &SubmitLeadRequest{Name: "T", Email: "taken@example.com"})
	require.NoError(t, err)
	_, err = svc.ConvertLead(ctx, taken.ID, &ConvertLeadRequest{Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	lost, _, err := svc.SubmitLead(ctx, &SubmitLeadRequest{Name: "L", Email: "lost@example.com"})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, lost.ID, domain.LeadLost, ""))
	_, err = svc.ConvertLead(ctx, lost.ID, &ConvertLeadRequest{Password: "password1"})
	assert.ErrorIs(t, err, ErrCannotConvert)

	_, err = svc.ConvertLead(ctx, 999, &ConvertLeadRequest{Password: "password1"})
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := setupService(t)
	h := NewHandler(svc)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1, v1)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			_ = json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/leads/submit", map[string]any{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var env struct {
		Data domain.Lead `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	w = do(http.MethodPost, "/api/v1/leads/submit", map[string]any{"name": "Ada", "email": "ada@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPost, "/api/v1/leads/submit", map[string]any{"name": "Ada", "email": "no-at-sign"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(http.MethodGet, "/api/v1/leads?status=new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = do(http.MethodGet, "/api/v1/leads?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodPatch, fmt.Sprintf("/api/v1/leads/%d/status", env.Data.ID), map[string]any{"status": "qualified"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPost, fmt.Sprintf("/api/v1/leads/%d/convert", env.Data.ID), map[string]any{"password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(http.MethodGet, "/api/v1/leads/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodDelete, fmt.Sprintf("/api/v1/leads/%d", env.Data.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(http.MethodGet, fmt.Sprintf("/api/v1/leads/%d", env.Data.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
