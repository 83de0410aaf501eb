package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	board         *services.Board
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(board *services.Board, secureCookies bool) *AuthHandler {
	return &AuthHandler{board: board, secureCookies: secureCookies}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/register", h.RegisterForm)
	g.POST("/register", h.Register)
	g.GET("/login", h.LoginForm)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/logout", h.Logout)
}

type loginForm struct {
	models.LoginRequest
	Next string `form:"next"`
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	if middleware.CurrentUser(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return render(c, h.board, http.StatusOK, "register", views.Page{Title: "Register", Form: services.RegisterInput{}})
}

// Register creates an account and sends the user to the login page
func (h *AuthHandler) Register(c echo.Context) error {
	var in services.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	user, err := h.board.CreateUser(c.Request().Context(), in)
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			return toHTTPError(err)
		}
		in.Password, in.Confirm = "", ""
		return render(c, h.board, http.StatusBadRequest, "register", views.Page{Title: "Register", Form: in, Errors: fields})
	}

	h.board.Logger().Info("registration completed", "user_id", user.ID, "remote_ip", c.RealIP())
	return redirectWithFlash(c, "/login", "Registration successful! Please log in.")
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	if middleware.CurrentUser(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	form := loginForm{Next: safeNext(c.QueryParam("next"))}
	return render(c, h.board, http.StatusOK, "login", views.Page{Title: "Log in", Form: form})
}

// Login verifies credentials and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	form.Next = safeNext(form.Next)
	ctx := c.Request().Context()

	fail := func(status int, message string) error {
		form.Password = ""
		return render(c, h.board, status, "login", views.Page{
			Title:  "Log in",
			Form:   form,
			Errors: map[string]string{"form": message},
		})
	}
	if err := c.Validate(&form.LoginRequest); err != nil {
		return fail(http.StatusBadRequest, "Please enter your username and password.")
	}

	user, err := h.board.VerifyCredentials(ctx, form.Username, form.Password)
	if errors.Is(err, services.ErrAuthentication) {
		return fail(http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return toHTTPError(err)
	}

	token, expires, err := h.board.StartSession(ctx, user)
	if err != nil {
		return toHTTPError(err)
	}
	middleware.SetSessionCookie(c, token, expires, h.secureCookies)

	target := form.Next
	if target == "" {
		target = "/"
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// Logout ends the session on the server and in the browser
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := h.board.EndSession(c.Request().Context(), cookie.Value); err != nil {
			return toHTTPError(err)
		}
	}
	middleware.ClearSessionCookie(c)
	return redirectWithFlash(c, "/login", "You have been logged out.")
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return ""
	}
	return next
}
