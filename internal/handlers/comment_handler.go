package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	board *services.Board
	posts *PostHandler
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(board *services.Board, posts *PostHandler) *CommentHandler {
	return &CommentHandler{board: board, posts: posts}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
}

// CreateComment adds a comment and returns to the post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	_, err = h.board.AddComment(c.Request().Context(), id, middleware.CurrentUser(c), req.Content)
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return h.posts.postPage(c, http.StatusBadRequest, id, &models.Comment{Content: req.Content}, fields)
		}
		return toHTTPError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/posts/"+strconv.FormatUint(uint64(id), 10)+"#comments")
}
