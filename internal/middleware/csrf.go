package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CSRF token names. Forms post the token in CSRFField, scripts send CSRFHeader.
const (
	CSRFCookie = "board_csrf"
	CSRFField  = "_csrf"
	CSRFHeader = echo.HeaderXCSRFToken
)

const csrfKey = "csrf"

// CSRF rejects state-changing requests whose form field or header does not
// match the token in the CSRF cookie. A missing token is answered like a wrong one.
func CSRF(secure bool) echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "form:" + CSRFField + ",header:" + CSRFHeader,
		ContextKey:     csrfKey,
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "Your form has expired. Reload the page and try again.")
		},
	})
}

// CSRFToken returns the token forms rendered for this request must carry.
// It is empty when the browser's fetch metadata already vouched for the request.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfKey).(string)
	return token
}
