package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/auth"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
)

const currentUserKey = "current_user"

// CurrentUser resolves the authenticated user from the verified JWT and
// stores it in the request context. The role is re-read from the database on
// every request so a role change takes effect immediately, not at token expiry.
func CurrentUser(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			user, err := userRepo.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is not valid")
			}
			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// userFrom returns the resolved current user, or a 401 error when the
// middleware did not run.
func userFrom(c echo.Context) (*model.User, error) {
	user, ok := c.Get(currentUserKey).(*model.User)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

// respondError maps a domain error to its transport response.
func respondError(c echo.Context, err error) error {
	he := apperrors.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToErrorResponse())
}

func bindError(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

func validationError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}
