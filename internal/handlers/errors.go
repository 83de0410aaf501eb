package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps a service error onto the HTTP error shown to the user.
func toHTTPError(err error) *echo.HTTPError {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "The page you are looking for does not exist.")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied.")
	case errors.Is(err, services.ErrImmutable):
		return echo.NewHTTPError(http.StatusForbidden, "The super admin's admin status cannot be changed.")
	case errors.Is(err, services.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrInvalidAttachment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong. Please try again.").SetInternal(err)
	}
}

// formErrors extracts field messages from validation-type errors. It reports
// false for errors that are not about the submitted form.
func formErrors(err error) (map[string]string, bool) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Fields, true
	case errors.Is(err, services.ErrInvalidAttachment):
		return map[string]string{"file": err.Error()}, true
	case errors.Is(err, services.ErrDuplicateUsername):
		return map[string]string{"username": "Username already taken! Please choose another one."}, true
	case errors.Is(err, services.ErrDuplicateEmail):
		return map[string]string{"email": "Email already registered! Please use another one."}, true
	}
	return nil, false
}

// NewHTTPErrorHandler renders errors as pages, or as JSON for API-style requests.
func NewHTTPErrorHandler(board *services.Board, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = toHTTPError(err)
		}
		if he.Code >= http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		}

		message, ok := he.Message.(string)
		if !ok {
			message = http.StatusText(he.Code)
		}

		var renderErr error
		switch {
		case c.Request().Method == http.MethodHead:
			renderErr = c.NoContent(he.Code)
		case wantsJSON(c):
			renderErr = c.JSON(he.Code, echo.Map{"error": message})
		default:
			renderErr = render(c, board, he.Code, "error", views.Page{Title: http.StatusText(he.Code), Data: message})
		}
		if renderErr != nil {
			logger.Error("failed to render error page", "error", renderErr)
		}
	}
}
