package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/api/handler"
	"github.com/yamdb/reviewhub/internal/api/middleware"
	"github.com/yamdb/reviewhub/internal/core/ports"
	infrahttp "github.com/yamdb/reviewhub/internal/infrastructure/http"
	"github.com/yamdb/reviewhub/internal/infrastructure/http/handlers"
)

// Dependencies are the services and infrastructure the router wires into
// handlers and middleware.
type Dependencies struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Catalog ports.CatalogService
	Reviews ports.ReviewService

	// SignupLimiter and TokenLimiter throttle the unauthenticated auth
	// endpoints; nil disables throttling.
	SignupLimiter middleware.Limiter
	TokenLimiter  middleware.Limiter

	Checks []handlers.Check
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddleware("reviewhub"))

	infrahttp.RegisterOperational(e, deps.Checks...)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	reviewHandler := handler.NewReviewHandler(deps.Reviews)

	v1 := e.Group("/api/v1", middleware.Authenticate(deps.Auth))

	// --- Auth routes ---
	v1.POST("/auth/signup", authHandler.Signup, limit(deps.SignupLimiter, "signup", deps.Logger)...)
	v1.POST("/auth/token", authHandler.Token, limit(deps.TokenLimiter, "token", deps.Logger)...)

	// --- Users ---
	v1.GET("/users/me", userHandler.Me)
	v1.PATCH("/users/me", userHandler.UpdateMe)
	v1.GET("/users", userHandler.List)
	v1.POST("/users", userHandler.Create)
	v1.GET("/users/:username", userHandler.Get)
	v1.PATCH("/users/:username", userHandler.Update)
	v1.DELETE("/users/:username", userHandler.Delete)

	// --- Catalog ---
	v1.GET("/categories", catalogHandler.ListCategories)
	v1.POST("/categories", catalogHandler.CreateCategory)
	v1.DELETE("/categories/:slug", catalogHandler.DeleteCategory)
	v1.GET("/genres", catalogHandler.ListGenres)
	v1.POST("/genres", catalogHandler.CreateGenre)
	v1.DELETE("/genres/:slug", catalogHandler.DeleteGenre)
	v1.GET("/titles", catalogHandler.ListTitles)
	v1.POST("/titles", catalogHandler.CreateTitle)
	v1.GET("/titles/:title_id", catalogHandler.GetTitle)
	v1.PATCH("/titles/:title_id", catalogHandler.UpdateTitle)
	v1.DELETE("/titles/:title_id", catalogHandler.DeleteTitle)

	// --- Reviews & comments ---
	reviews := v1.Group("/titles/:title_id/reviews")
	reviews.GET("", reviewHandler.ListReviews)
	reviews.POST("", reviewHandler.CreateReview)
	reviews.GET("/:review_id", reviewHandler.GetReview)
	reviews.PATCH("/:review_id", reviewHandler.UpdateReview)
	reviews.DELETE("/:review_id", reviewHandler.DeleteReview)
	reviews.GET("/:review_id/comments", reviewHandler.ListComments)
	reviews.POST("/:review_id/comments", reviewHandler.CreateComment)
	reviews.GET("/:review_id/comments/:comment_id", reviewHandler.GetComment)
	reviews.PATCH("/:review_id/comments/:comment_id", reviewHandler.UpdateComment)
	reviews.DELETE("/:review_id/comments/:comment_id", reviewHandler.DeleteComment)

	return e
}

func limit(l middleware.Limiter, route string, log zerolog.Logger) []echo.MiddlewareFunc {
	if l == nil {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.RateLimit(l, route, log)}
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			} else if v.Status >= 400 {
				event = log.Warn()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
