package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
)

const adminLogLimit = 20

// AdminHandler serves the user management page
type AdminHandler struct {
	board *services.Board
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(board *services.Board) *AdminHandler {
	return &AdminHandler{board: board}
}

// RegisterAdminRoutes registers admin routes
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/admin/users", h.ListUsers)
	g.POST("/admin/users/:id/toggle", h.ToggleAdmin)
}

type adminData struct {
	Users []*models.User
	Logs  []models.AdminActionLog
}

// ListUsers shows every account with the recent admin audit trail
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.CurrentUser(c)

	users, err := h.board.ListUsers(ctx, actor)
	if err != nil {
		return toHTTPError(err)
	}
	logs, err := h.board.RecentAdminLogs(ctx, actor, adminLogLimit)
	if err != nil {
		return toHTTPError(err)
	}

	data := adminData{Users: make([]*models.User, len(users)), Logs: logs}
	for i := range users {
		data.Users[i] = &users[i]
	}
	return render(c, h.board, http.StatusOK, "admin_users", views.Page{Title: "Manage users", Data: data})
}

// ToggleAdmin promotes or demotes a user; super-admin only
func (h *AdminHandler) ToggleAdmin(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "The page you are looking for does not exist.")
	}

	user, err := h.board.ToggleAdminStatus(c.Request().Context(), middleware.CurrentUser(c), uint(id))
	if err != nil {
		return toHTTPError(err)
	}
	message := fmt.Sprintf("%s is no longer an admin.", user.Username)
	if user.IsAdmin {
		message = fmt.Sprintf("%s is now an admin.", user.Username)
	}
	return redirectWithFlash(c, "/admin/users", message)
}
