package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "board_session"

const userKey = "user"

// SessionResolver maps a session cookie value to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, cookie string) (*models.User, error)
}

// LoadSession restores the current user from the session cookie. Requests
// without a valid session continue anonymously and lose the stale cookie.
func LoadSession(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			user, err := resolver.ResolveSession(c.Request().Context(), cookie.Value)
			if err != nil {
				ClearSessionCookie(c)
				return next(c)
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// RequireLogin sends anonymous requests to the login page.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				target := "/login"
				if c.Request().Method == http.MethodGet {
					target += "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				}
				return c.Redirect(http.StatusSeeOther, target)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}

// SetSessionCookie hands the browser a session token.
func SetSessionCookie(c echo.Context, token string, expires time.Time, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
