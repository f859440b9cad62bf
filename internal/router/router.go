package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"blogapi/internal/auth"
	"blogapi/internal/config"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/handler"
)

// Register wires routes and middleware. Read endpoints are public; every
// mutation sits behind the JWT middleware, which injects the verified claims
// as the caller identity.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get)
	api.GET("/posts/:id/comments", commentHandler.List)
	api.GET("/tags", postHandler.Tags)
	api.GET("/archives", postHandler.Archives)
	api.GET("/archives/:year/:month", postHandler.PostsForMonth)

	// Secured routes (require a valid bearer token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
			return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	}))

	secured.POST("/posts", postHandler.Create)
	secured.PUT("/posts/:id", postHandler.Update)
	secured.DELETE("/posts/:id", postHandler.Delete)
	secured.POST("/posts/:id/comments", commentHandler.Create)
	secured.PUT("/comments/:id", commentHandler.Update)
	secured.DELETE("/comments/:id", commentHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
