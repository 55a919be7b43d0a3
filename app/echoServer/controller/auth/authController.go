package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer/respond"
	"github.com/SenyaGur/ukrlibrary/model"
	authsvc "github.com/SenyaGur/ukrlibrary/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Signup registers a new user
// @Summary      Register user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.SignupReq  true  "Signup payload"
// @Success      201  {object}  authsvc.AuthResult
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /api/auth/signup [post]
func (h *Controller) Signup(c echo.Context) error {
	var req model.SignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	res, err := h.Svc.Signup(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, h.Log, "signup", err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Login authenticates a user
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  authsvc.AuthResult
// @Failure      401  {object}  map[string]any
// @Router       /api/auth/login [post]
func (h *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	res, err := h.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, h.Log, "login", err)
	}
	return c.JSON(http.StatusOK, res)
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.User
// @Security     BearerAuth
// @Router       /api/auth/me [get]
func (h *Controller) Me(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	u, err := h.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		return respond.Error(c, h.Log, "me", err)
	}
	return c.JSON(http.StatusOK, u)
}

// ResetPassword changes the authenticated user's password
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  ResetPasswordReq  true  "Password change payload"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/auth/reset-password [post]
func (h *Controller) ResetPassword(c echo.Context) error {
	var req ResetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(string)
	if err := h.Svc.ResetPassword(c.Request().Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		return respond.Error(c, h.Log, "reset password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// ListUsers returns all users (admin)
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/users [get]
func (h *Controller) ListUsers(c echo.Context) error {
	rows, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return respond.Error(c, h.Log, "user list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// UpdateRole changes a user's role (admin)
// @Summary      Update user role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        id       path  string         true  "User id"
// @Param        payload  body  UpdateRoleReq  true  "Role payload"
// @Success      200  {object}  model.User
// @Security     BearerAuth
// @Router       /api/users/{id}/role [put]
func (h *Controller) UpdateRole(c echo.Context) error {
	var req UpdateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	u, err := h.Svc.UpdateRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return respond.Error(c, h.Log, "role update", err)
	}
	return c.JSON(http.StatusOK, u)
}

type ResetPasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type UpdateRoleReq struct {
	Role string `json:"role" validate:"required"`
}
