package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	board *services.Board
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(board *services.Board) *LikeHandler {
	return &LikeHandler{board: board}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes or unlikes a post. Scripted clients get the new state as JSON.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	result, err := h.board.ToggleLike(c.Request().Context(), id, middleware.CurrentUser(c))
	if err != nil {
		return toHTTPError(err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, result)
	}
	return c.Redirect(http.StatusSeeOther, "/posts/"+strconv.FormatUint(uint64(id), 10))
}
