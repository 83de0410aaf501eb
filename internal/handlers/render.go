package handlers

import (
	"net/http"
	"net/url"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
)

const flashCookie = "board_flash"

// render fills in the per-request parts of page and renders the named template.
func render(c echo.Context, board *services.Board, status int, name string, page views.Page) error {
	page.CurrentUser = middleware.CurrentUser(c)
	page.CSRF = middleware.CSRFToken(c)
	if page.CurrentUser != nil {
		unread, err := board.UnreadCount(c.Request().Context(), page.CurrentUser)
		if err != nil {
			board.Logger().Warn("unread count failed", "user_id", page.CurrentUser.ID, "error", err)
		}
		page.Unread = unread
	}
	if page.Flash == "" {
		page.Flash = popFlash(c)
	}
	if page.Errors == nil {
		page.Errors = map[string]string{}
	}
	return c.Render(status, name, page)
}

// redirectWithFlash redirects and shows message on the next rendered page.
func redirectWithFlash(c echo.Context, to, message string) error {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, to)
}

func popFlash(c echo.Context) string {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}

// wantsJSON reports whether the client asked for a JSON answer instead of a page.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return req.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		req.Header.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON
}
