package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"expenseflow/internal/authz"
	"expenseflow/internal/model"
	"expenseflow/internal/service"
)

// UserHandler handles user directory and role-assignment endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// AssignRoleRequest promotes a pending user.
type AssignRoleRequest struct {
	Role      string `json:"role" validate:"required,oneof=Employee Manager Admin"`
	ManagerID *uint  `json:"managerId"`
}

// UpdateProfileRequest updates the caller's own name and email.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UserView decorates a user with the manager display name.
type UserView struct {
	model.User
	ManagerName string `json:"manager_name,omitempty"`
}

// UserListResponse wraps a user listing.
type UserListResponse struct {
	Users []UserView `json:"users"`
}

// ManagerOption is a single entry in the manager dropdown.
type ManagerOption struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  authz.Role `json:"role"`
}

// ManagerListResponse wraps the manager dropdown entries.
type ManagerListResponse struct {
	Managers []ManagerOption `json:"managers"`
}

func userViews(users []model.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		v := UserView{User: u}
		if u.Manager != nil {
			v.ManagerName = u.Manager.Name
			v.Manager = nil
		}
		views = append(views, v)
	}
	return views
}

// PendingRoles godoc
// @Summary List users awaiting role assignment
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserListResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/pending-roles [get]
func (h *UserHandler) PendingRoles(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListPendingUsers(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, UserListResponse{Users: userViews(users)})
}

// AssignRole godoc
// @Summary Assign a role to a pending user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Target user ID"
// @Param request body AssignRoleRequest true "Role assignment"
// @Success 200 {object} model.User
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/{id}/assign-role [put]
func (h *UserHandler) AssignRole(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return validationError(c, echo.NewHTTPError(http.StatusBadRequest, "invalid user id"))
	}

	var req AssignRoleRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	updated, err := h.userService.AssignRole(
		c.Request().Context(), user, uint(id), authz.Role(req.Role), req.ManagerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// AllUsers godoc
// @Summary List users visible to the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserListResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/all [get]
func (h *UserHandler) AllUsers(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListUsers(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, UserListResponse{Users: userViews(users)})
}

// Managers godoc
// @Summary List managers and admins for the role-assignment dropdown
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ManagerListResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/managers [get]
func (h *UserHandler) Managers(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListManagers(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}

	managers := make([]ManagerOption, 0, len(users))
	for _, u := range users {
		managers = append(managers, ManagerOption{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  u.Role,
		})
	}
	return c.JSON(http.StatusOK, ManagerListResponse{Managers: managers})
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile data"
// @Success 200 {object} model.User
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	updated, err := h.userService.UpdateProfile(c.Request().Context(), user, req.Name, req.Email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}
