package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"expenseflow/internal/auth"
	"expenseflow/internal/config"
	"expenseflow/internal/handler"
	"expenseflow/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	expenseHandler *handler.ExpenseHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "ExpenseFlow API Server is running",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/join", authHandler.Join)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication and a resolvable user)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), handler.CurrentUser(userRepo))

	secured.GET("/auth/me", authHandler.Me)

	// Expense routes
	secured.POST("/expenses/submit", expenseHandler.Submit)
	secured.GET("/expenses/my-expenses", expenseHandler.MyExpenses)
	secured.GET("/expenses/pending-approvals", expenseHandler.PendingApprovals)
	secured.PUT("/expenses/:id/approve", expenseHandler.Decide)
	secured.GET("/expenses/stats", expenseHandler.Stats)

	// User routes
	secured.GET("/users/pending-roles", userHandler.PendingRoles)
	secured.PUT("/users/:id/assign-role", userHandler.AssignRole)
	secured.GET("/users/all", userHandler.AllUsers)
	secured.GET("/users/managers", userHandler.Managers)
	secured.PUT("/users/profile", userHandler.UpdateProfile)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
