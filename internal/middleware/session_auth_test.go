package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]*models.User

func (f fakeResolver) ResolveSession(_ context.Context, cookie string) (*models.User, error) {
	if u, ok := f[cookie]; ok {
		return u, nil
	}
	return nil, errors.New("no session")
}

func newTestEcho(resolver SessionResolver) *echo.Echo {
	e := echo.New()
	g := e.Group("", LoadSession(resolver))
	g.GET("/public", func(c echo.Context) error {
		if u := CurrentUser(c); u != nil {
			return c.String(http.StatusOK, u.Username)
		}
		return c.String(http.StatusOK, "anonymous")
	})
	g.GET("/private", func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUser(c).Username)
	}, RequireLogin())
	g.POST("/private", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireLogin())
	return e
}

func TestLoadSession(t *testing.T) {
	e := newTestEcho(fakeResolver{"good": {ID: 1, Username: "alice"}})

	tests := []struct {
		name        string
		cookie      string
		want        string
		clearCookie bool
	}{
		{"no cookie", "", "anonymous", false},
		{"valid", "good", "alice", false},
		{"stale", "bad", "anonymous", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == SessionCookie && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.clearCookie, cleared)
		})
	}
}

func TestRequireLogin(t *testing.T) {
	e := newTestEcho(fakeResolver{"good": {ID: 1, Username: "alice"}})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private?tab=1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fprivate%3Ftab%3D1", rec.Header().Get(echo.HeaderLocation))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/private", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestSessionCookieAttributes(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	expires := time.Now().Add(time.Hour)
	SetSessionCookie(c, "token", expires, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, "/", cookies[0].Path)
}
