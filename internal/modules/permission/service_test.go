package permission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursedesk/internal/database"
	"coursedesk/internal/database/sqlitetest"
	"coursedesk/internal/domain"
	"coursedesk/internal/repository"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db := sqlitetest.Open(t)
	require.NoError(t, database.SeedPagePermissions(db))
	return NewService(repository.NewPermissionRepository(db), nil, time.Minute, nil)
}

func TestAllowed_Defaults(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	ok, err := svc.Allowed(ctx, domain.RoleStudent, domain.PageMaterials)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Allowed(ctx, domain.RoleStudent, domain.PageBookings)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Allowed(ctx, domain.RoleAdmin, "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSet_TogglesPage(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	yes, no := true, false

	_, err := svc.Set(ctx, SetPermissionRequest{Role: "teacher", Page: domain.PageLeads, Allowed: &yes})
	require.NoError(t, err)
	ok, _ := svc.Allowed(ctx, domain.RoleTeacher, domain.PageLeads)
	assert.True(t, ok)

	_, err = svc.Set(ctx, SetPermissionRequest{Role: "teacher", Page: domain.PageLeads, Allowed: &no})
	require.NoError(t, err)
	ok, _ = svc.Allowed(ctx, domain.RoleTeacher, domain.PageLeads)
	assert.False(t, ok)

	_, err = svc.Set(ctx, SetPermissionRequest{Role: "guest", Page: domain.PageLeads, Allowed: &yes})
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.Set(ctx, SetPermissionRequest{Role: "teacher", Page: "casino", Allowed: &yes})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestRequirePageAndMyPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := setupService(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("role", c.GetHeader("X-Role"))
		c.Next()
	})
	g := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(g, g)
	g.GET("/leads", RequirePage(svc, domain.PageLeads), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method, path, role, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("X-Role", role)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, do(http.MethodGet, "/api/v1/leads", "teacher", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/leads", "admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/v1/leads", "", "").Code)

	w := do(http.MethodPut, "/api/v1/permissions", "admin", `{"role":"teacher","page":"leads","allowed":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/leads", "teacher", "").Code)

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, "/api/v1/permissions", "admin", `{"role":"teacher","page":"leads"}`).Code)

	w = do(http.MethodGet, "/api/v1/me/pages", "student", "")
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data struct {
			Pages []string `json:"pages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{"materials", "support"}, env.Data.Pages)
}
