package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"noctuai/internal/auth"
	"noctuai/internal/config"
	"noctuai/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	aiHandler *handler.AIHandler,
	creationHandler *handler.CreationHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.GET("/me", func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return c.JSON(http.StatusOK, echo.Map{"token_claims": token.Claims})
	})

	// AI feature routes
	ai := secured.Group("/ai")
	ai.POST("/generate-article", aiHandler.GenerateArticle)
	ai.POST("/generate-blog-title", aiHandler.GenerateBlogTitle)
	ai.POST("/generate-image", aiHandler.GenerateImage)
	ai.POST("/remove-image-background", aiHandler.RemoveImageBackground)
	ai.POST("/remove-image-object", aiHandler.RemoveImageObject)
	ai.POST("/resume-review", aiHandler.ResumeReview)

	// Creation and plan routes
	user := secured.Group("/user")
	user.GET("/get-user-creations", creationHandler.GetUserCreations)
	user.GET("/get-published-creations", creationHandler.GetPublishedCreations)
	user.POST("/toggle-like-creations", creationHandler.ToggleLikeCreation)
	user.POST("/upgrade", creationHandler.UpgradePlan)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
