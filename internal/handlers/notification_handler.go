package handlers

import (
	"net/http"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	board *services.Board
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(board *services.Board) *NotificationHandler {
	return &NotificationHandler{board: board}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
}

// GetNotifications lists the user's notifications; viewing them marks them read
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.board.ListNotifications(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return toHTTPError(err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, notifications)
	}
	return render(c, h.board, http.StatusOK, "notifications", views.Page{Title: "Notifications", Data: notifications})
}
