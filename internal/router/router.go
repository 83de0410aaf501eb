package router

import (
	"log/slog"

	"github.com/anonto42/celebration-board/internal/handlers"
	"github.com/anonto42/celebration-board/internal/middleware"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/validators"
	"github.com/anonto42/celebration-board/internal/views"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Options are the router's knobs that do not live on the board.
type Options struct {
	SecureCookies bool
}

// New builds the echo instance with renderer, validator and error handler.
func New(board *services.Board, logger *slog.Logger) (*echo.Echo, error) {
	renderer, err := views.New(board.Policy())
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(board, logger)
	return e, nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, board *services.Board, db *gorm.DB, logger *slog.Logger, opts Options) {
	e.GET("/health", handlers.NewHealthHandler(db).HealthCheck)

	// every page knows who is asking; every form post carries a CSRF token
	root := e.Group("", middleware.CSRF(opts.SecureCookies), middleware.LoadSession(board))

	authHandler := handlers.NewAuthHandler(board, opts.SecureCookies)
	authHandler.RegisterAuthRoutes(root)

	// --- Protected routes ---
	app := root.Group("", middleware.RequireLogin())

	postHandler := handlers.NewPostHandler(board)
	postHandler.RegisterPostRoutes(app)

	handlers.NewCommentHandler(board, postHandler).RegisterCommentRoutes(app)
	handlers.NewLikeHandler(board).RegisterLikeRoutes(app)
	handlers.NewNotificationHandler(board).RegisterNotificationRoutes(app)
	handlers.NewAdminHandler(board).RegisterAdminRoutes(app)

	logger.Debug("routes configured", "count", len(e.Routes()))
}
