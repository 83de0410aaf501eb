package handlers

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	board *services.Board
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(board *services.Board) *PostHandler {
	return &PostHandler{board: board}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/", h.ListPosts)
	g.GET("/posts", h.ListPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts/:id/edit", h.EditForm)
	g.POST("/posts/:id/edit", h.UpdatePost)
	g.POST("/posts/:id/delete", h.DeletePost)
	g.GET("/uploads/*", h.DownloadAttachment)
}

type postListData struct {
	Posts []models.Post
	Query services.PostQuery
}

type postData struct {
	Post             *models.Post
	Liked            bool
	CommentMaxLength int
}

type editData struct {
	Post *models.Post
}

func postID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "The page you are looking for does not exist.")
	}
	return uint(id), nil
}

// readUpload opens the optional "file" field of a multipart form.
func readUpload(c echo.Context) (*services.Upload, func(), error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Invalid file upload")
	}
	if fh.Filename == "" {
		return nil, func() {}, nil
	}
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Invalid file upload")
	}
	return &services.Upload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}

func (h *PostHandler) listPage(c echo.Context, status int, form services.PostInput, errs map[string]string) error {
	q := services.PostQuery{
		Department: c.QueryParam("department"),
		Search:     c.QueryParam("q"),
		Sort:       services.NormalizeSort(c.QueryParam("sort")),
	}
	posts, err := h.board.ListPosts(c.Request().Context(), q)
	if err != nil {
		return toHTTPError(err)
	}
	return render(c, h.board, status, "posts", views.Page{
		Title:  "Celebrations",
		Form:   form,
		Errors: errs,
		Data:   postListData{Posts: posts, Query: q},
	})
}

// ListPosts shows the board, filtered by department and search, in the chosen order
func (h *PostHandler) ListPosts(c echo.Context) error {
	return h.listPage(c, http.StatusOK, services.PostInput{}, nil)
}

// CreatePost publishes a post with an optional attachment
func (h *PostHandler) CreatePost(c echo.Context) error {
	var in services.PostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	upload, closeUpload, err := readUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	post, err := h.board.CreatePost(c.Request().Context(), middleware.CurrentUser(c), in, upload)
	if err != nil {
		if fields, ok := formErrors(err); ok {
			return h.listPage(c, http.StatusBadRequest, in, fields)
		}
		return toHTTPError(err)
	}
	return redirectWithFlash(c, "/posts/"+strconv.FormatUint(uint64(post.ID), 10), "Your celebration has been posted!")
}

func (h *PostHandler) postPage(c echo.Context, status int, id uint, comment *models.Comment, errs map[string]string) error {
	detail, err := h.board.GetPost(c.Request().Context(), id, middleware.CurrentUser(c))
	if err != nil {
		return toHTTPError(err)
	}
	return render(c, h.board, status, "post", views.Page{
		Title:  detail.Post.Title,
		Form:   comment,
		Errors: errs,
		Data: postData{
			Post:             detail.Post,
			Liked:            detail.Liked,
			CommentMaxLength: h.board.CommentMaxLength(),
		},
	})
}

// GetPost shows a post with its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	return h.postPage(c, http.StatusOK, id, nil, nil)
}

// EditForm shows the edit form to the post's author
func (h *PostHandler) EditForm(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	detail, err := h.board.GetPost(c.Request().Context(), id, nil)
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.board.Policy().Authorize(middleware.CurrentUser(c), services.ActionEditPost, detail.Post); err != nil {
		return toHTTPError(err)
	}
	return render(c, h.board, http.StatusOK, "edit", views.Page{
		Title: "Edit " + detail.Post.Title,
		Form:  services.PostInput{Title: detail.Post.Title, Content: detail.Post.Content},
		Data:  editData{Post: detail.Post},
	})
}

// UpdatePost saves an edit; the attachment changes only when a new file is sent
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var in services.PostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	upload, closeUpload, err := readUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	ctx := c.Request().Context()
	post, err := h.board.UpdatePost(ctx, id, middleware.CurrentUser(c), in, upload)
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			return toHTTPError(err)
		}
		detail, getErr := h.board.GetPost(ctx, id, nil)
		if getErr != nil {
			return toHTTPError(getErr)
		}
		return render(c, h.board, http.StatusBadRequest, "edit", views.Page{
			Title:  "Edit " + detail.Post.Title,
			Form:   in,
			Errors: fields,
			Data:   editData{Post: detail.Post},
		})
	}
	return redirectWithFlash(c, "/posts/"+strconv.FormatUint(uint64(post.ID), 10), "Post updated.")
}

// DeletePost removes a post; admins may give a reason that is sent to the author
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var req models.DeletePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The reason cannot be longer than 1000 characters.")
	}

	if err := h.board.DeletePost(c.Request().Context(), id, middleware.CurrentUser(c), req.Reason); err != nil {
		return toHTTPError(err)
	}
	return redirectWithFlash(c, "/", "Post deleted.")
}

// DownloadAttachment streams a stored attachment to logged-in users
func (h *PostHandler) DownloadAttachment(c echo.Context) error {
	path := c.Param("*")
	rc, err := h.board.OpenAttachment(c.Request().Context(), path)
	if err != nil {
		return toHTTPError(err)
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": path}))
	return c.Stream(http.StatusOK, contentType, rc)
}
