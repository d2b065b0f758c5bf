package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEngine(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discard))
	r.GET("/", handler)
	return r
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("body=%q header=%q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("generated request id missing")
	}
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.New(apperr.KindNotFound, "organization not found"), http.StatusNotFound, "organization not found"},
		{apperr.New(apperr.KindValidation, "bad date"), http.StatusBadRequest, "bad date"},
		{apperr.New(apperr.KindRateLimit, "Rate limit exceeded"), http.StatusBadGateway, "Upstream service unavailable"},
		{apperr.Wrap(apperr.KindStorage, "list events", errors.New("dial tcp")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		r := newEngine(func(c *gin.Context) { _ = c.Error(tc.err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var resp helpers.ApiResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Success || resp.Error != tc.message || resp.RequestID == "" {
			t.Errorf("%v: resp = %+v", tc.err, resp)
		}
	}
}

type stubValidator struct {
	claims *helpers.CustomClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*helpers.CustomClaims, error) {
	return s.claims, s.err
}

func adminEngine(v TokenValidator) *gin.Engine {
	r := gin.New()
	r.Use(AdminAuth(v, discard))
	r.GET("/", func(c *gin.Context) {
		user := c.MustGet(UserKey).(*helpers.EnhancedClaims)
		c.String(http.StatusOK, user.UserID)
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	admin := &helpers.CustomClaims{Role: "authenticated"}
	admin.Subject = "u1"
	admin.AppMetadata.Roles = []string{"admin"}

	cases := []struct {
		name   string
		v      TokenValidator
		header string
		status int
	}{
		{"no token", stubValidator{claims: admin}, "", http.StatusUnauthorized},
		{"invalid token", stubValidator{err: errors.New("bad signature")}, "Bearer x", http.StatusUnauthorized},
		{"not admin", stubValidator{claims: &helpers.CustomClaims{Role: "authenticated"}}, "Bearer x", http.StatusForbidden},
		{"admin", stubValidator{claims: admin}, "Bearer x", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		adminEngine(tc.v).ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.name, w.Code, tc.status)
		}
	}
}

func TestAdminAuthReadsCookie(t *testing.T) {
	admin := &helpers.CustomClaims{Role: "admin"}
	admin.Subject = "u2"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
	w := httptest.NewRecorder()
	adminEngine(stubValidator{claims: admin}).ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "u2" {
		t.Errorf("status=%d body=%q", w.Code, w.Body.String())
	}
}
