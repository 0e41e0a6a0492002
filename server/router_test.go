package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AppName: "MyPhysioFriend", CORSOrigins: []string{"*"}}
	return NewRouter(cfg, nil)
}

func TestNewRouter_RegistersConsoleRoutes(t *testing.T) {
	r := newTestRouter(t)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/admin/login",
		"GET /api/admin/list-doctors",
		"POST /api/admin/delete-doctor",
		"GET /api/admin/notifications",
		"GET /api/doctor/list",
		"POST /api/doctor/complete-appointment",
		"POST /api/user/book-appointment",
		"POST /api/user/reschedule-appointment",
		"POST /api/user/verify-razorpay",
		"DELETE /api/logout",
		"GET /api/token/validate",
		"GET /swagger/*any",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestNewRouter_ProtectedRouteWithoutToken(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), middleware.NotAuthorizedMessage)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_CORSPreflightAllowsRoleHeaders(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/doctor/appointments", nil)
	req.Header.Set("Origin", "https://doctor.myphysiofriend.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "dtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "dtoken")
}

func TestNewRouter_Welcome(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "Welcome to MyPhysioFriend!")
}
