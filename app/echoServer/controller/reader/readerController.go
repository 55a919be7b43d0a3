package reader

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer/respond"
	readersvc "github.com/SenyaGur/ukrlibrary/service/reader"
)

type Controller struct {
	Svc readersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List readers with their children (admin)
// @Summary      List readers
// @Tags         readers
// @Produce      json
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/readers [get]
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return respond.Error(c, h.Log, "reader list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Detail returns one reader (admin)
// @Summary      Reader detail
// @Tags         readers
// @Produce      json
// @Param        id  path  string  true  "Reader id"
// @Success      200  {object}  model.Reader
// @Security     BearerAuth
// @Router       /api/readers/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	rd, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Error(c, h.Log, "reader detail", err)
	}
	return c.JSON(http.StatusOK, rd)
}

// Create registers a reader, with optional children
// @Summary      Register reader
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        payload  body  readersvc.CreateInput  true  "Reader payload"
// @Success      201  {object}  model.Reader
// @Router       /api/readers [post]
func (h *Controller) Create(c echo.Context) error {
	var req readersvc.CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	rd, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, h.Log, "reader create", err)
	}
	return c.JSON(http.StatusCreated, rd)
}

// Update a reader partially (admin)
// @Summary      Update reader
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "Reader id"
// @Param        payload  body  readersvc.UpdateInput  true  "Fields to change"
// @Success      200  {object}  model.Reader
// @Security     BearerAuth
// @Router       /api/readers/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	var req readersvc.UpdateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	rd, err := h.Svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respond.Error(c, h.Log, "reader update", err)
	}
	return c.JSON(http.StatusOK, rd)
}

// Delete a reader and their children (admin)
// @Summary      Delete reader
// @Tags         readers
// @Produce      json
// @Param        id  path  string  true  "Reader id"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/readers/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Error(c, h.Log, "reader delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// Merge folds a reader into another (admin)
// @Summary      Merge readers
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        id       path  string    true  "Source reader id"
// @Param        payload  body  MergeReq  true  "Target reader"
// @Success      200  {object}  model.Reader
// @Security     BearerAuth
// @Router       /api/readers/{id}/merge [post]
func (h *Controller) Merge(c echo.Context) error {
	var req MergeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	rd, err := h.Svc.Merge(c.Request().Context(), c.Param("id"), req.TargetID)
	if err != nil {
		return respond.Error(c, h.Log, "reader merge", err)
	}
	return c.JSON(http.StatusOK, rd)
}

// ConvertToChild turns a reader into a child of another reader (admin)
// @Summary      Convert reader to child
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        id       path  string      true  "Reader id"
// @Param        payload  body  ConvertReq  true  "Target parent"
// @Success      200  {object}  model.Reader
// @Security     BearerAuth
// @Router       /api/readers/{id}/convert-to-child [post]
func (h *Controller) ConvertToChild(c echo.Context) error {
	var req ConvertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	rd, err := h.Svc.ConvertToChild(c.Request().Context(), c.Param("id"), req.ParentID)
	if err != nil {
		return respond.Error(c, h.Log, "reader convert", err)
	}
	return c.JSON(http.StatusOK, rd)
}

// AddChild adds a child to a reader (admin)
// @Summary      Add child
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Reader id"
// @Param        payload  body  readersvc.ChildInput  true  "Child payload"
// @Success      201  {object}  model.Child
// @Security     BearerAuth
// @Router       /api/readers/{id}/children [post]
func (h *Controller) AddChild(c echo.Context) error {
	var req readersvc.ChildInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	child, err := h.Svc.AddChild(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respond.Error(c, h.Log, "child add", err)
	}
	return c.JSON(http.StatusCreated, child)
}

// UpdateChild updates a child of a reader (admin)
// @Summary      Update child
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        id        path  string                      true  "Reader id"
// @Param        child_id  path  string                      true  "Child id"
// @Param        payload   body  readersvc.ChildUpdateInput  true  "Fields to change"
// @Success      200  {object}  model.Child
// @Security     BearerAuth
// @Router       /api/readers/{id}/children/{child_id} [put]
func (h *Controller) UpdateChild(c echo.Context) error {
	var req readersvc.ChildUpdateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	child, err := h.Svc.UpdateChild(c.Request().Context(), c.Param("id"), c.Param("child_id"), req)
	if err != nil {
		return respond.Error(c, h.Log, "child update", err)
	}
	return c.JSON(http.StatusOK, child)
}

// DeleteChild removes a child (admin)
// @Summary      Delete child
// @Tags         readers
// @Produce      json
// @Param        id        path  string  true  "Reader id"
// @Param        child_id  path  string  true  "Child id"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/readers/{id}/children/{child_id} [delete]
func (h *Controller) DeleteChild(c echo.Context) error {
	if err := h.Svc.DeleteChild(c.Request().Context(), c.Param("id"), c.Param("child_id")); err != nil {
		return respond.Error(c, h.Log, "child delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// ReassignChild moves a child to another reader (admin)
// @Summary      Reassign child
// @Tags         readers
// @Accept       json
// @Produce      json
// @Param        id       path  string       true  "Child id"
// @Param        payload  body  ReassignReq  true  "New reader"
// @Success      200  {object}  model.Child
// @Security     BearerAuth
// @Router       /api/children/{id}/reassign [put]
func (h *Controller) ReassignChild(c echo.Context) error {
	var req ReassignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	child, err := h.Svc.ReassignChild(c.Request().Context(), c.Param("id"), req.ReaderID)
	if err != nil {
		return respond.Error(c, h.Log, "child reassign", err)
	}
	return c.JSON(http.StatusOK, child)
}

type MergeReq struct {
	TargetID string `json:"target_id" validate:"required"`
}

type ConvertReq struct {
	ParentID string `json:"parent_id" validate:"required"`
}

type ReassignReq struct {
	ReaderID string `json:"reader_id" validate:"required"`
}
