package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer/respond"
	catalogsvc "github.com/SenyaGur/ukrlibrary/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type NameReq struct {
	Name string `json:"name" validate:"required"`
}

type PublisherReq struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city"`
}

// @Summary  List categories
// @Tags     catalog
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/categories [get]
func (h *Controller) ListCategories(c echo.Context) error {
	rows, err := h.Svc.ListCategories(c.Request().Context())
	if err != nil {
		return respond.Error(c, h.Log, "category list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// @Summary   Create category
// @Tags      catalog
// @Accept    json
// @Produce   json
// @Param     payload  body  NameReq  true  "Category name"
// @Success   201  {object}  model.Category
// @Security  BearerAuth
// @Router    /api/categories [post]
func (h *Controller) CreateCategory(c echo.Context) error {
	var req NameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	out, err := h.Svc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return respond.Error(c, h.Log, "category create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// @Summary   Update category
// @Tags      catalog
// @Accept    json
// @Produce   json
// @Param     id       path  string   true  "Category id"
// @Param     payload  body  NameReq  true  "Category name"
// @Success   200  {object}  model.Category
// @Security  BearerAuth
// @Router    /api/categories/{id} [put]
func (h *Controller) UpdateCategory(c echo.Context) error {
	var req NameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	out, err := h.Svc.UpdateCategory(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return respond.Error(c, h.Log, "category update", err)
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary   Delete category
// @Tags      catalog
// @Produce   json
// @Param     id  path  string  true  "Category id"
// @Success   200  {object}  map[string]any
// @Security  BearerAuth
// @Router    /api/categories/{id} [delete]
func (h *Controller) DeleteCategory(c echo.Context) error {
	if err := h.Svc.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Error(c, h.Log, "category delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// @Summary  List series
// @Tags     catalog
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/series [get]
func (h *Controller) ListSeries(c echo.Context) error {
	rows, err := h.Svc.ListSeries(c.Request().Context())
	if err != nil {
		return respond.Error(c, h.Log, "series list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// @Summary   Create series
// @Tags      catalog
// @Accept    json
// @Produce   json
// @Param     payload  body  NameReq  true  "Series name"
// @Success   201  {object}  model.Series
// @Security  BearerAuth
// @Router    /api/series [post]
func (h *Controller) CreateSeries(c echo.Context) error {
	var req NameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	out, err := h.Svc.CreateSeries(c.Request().Context(), req.Name)
	if err != nil {
		return respond.Error(c, h.Log, "series create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// @Summary   Update series
// @Tags      catalog
// @Accept    json
// @Produce   json
// @Param     id       path  string   true  "Series id"
// @Param     payload  body  NameReq  true  "Series name"
// @Success   200  {object}  model.Series
// @Security  BearerAuth
// @Router    /api/series/{id} [put]
func (h *Controller) UpdateSeries(c echo.Context) error {
	var req NameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	out, err := h.Svc.UpdateSeries(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return respond.Error(c, h.Log, "series update", err)
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary   Delete series
// @Tags      catalog
// @Produce   json
// @Param     id  path  string  true  "Series id"
// @Success   200  {object}  map[string]any
// @Security  BearerAuth
// @Router    /api/series/{id} [delete]
func (h *Controller) DeleteSeries(c echo.Context) error {
	if err := h.Svc.DeleteSeries(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Error(c, h.Log, "series delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// @Summary  List publishers
// @Tags     catalog
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/publishers [get]
func (h *Controller) ListPublishers(c echo.Context) error {
	rows, err := h.Svc.ListPublishers(c.Request().Context())
	if err != nil {
		return respond.Error(c, h.Log, "publisher list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// @Summary   Create publisher
// @Tags      catalog
// @Accept    json
// @Produce   json
// @Param     payload  body  PublisherReq  true  "Publisher payload"
// @Success   201  {object}  model.Publisher
// @Security  BearerAuth
// @Router    /api/publishers [post]
func (h *Controller) CreatePublisher(c echo.Context) error {
	var req PublisherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	out, err := h.Svc.CreatePublisher(c.Request().Context(), req.Name, req.City)
	if err != nil {
		return respond.Error(c, h.Log, "publisher create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// @Summary   Update publisher
// @Tags      catalog
// @Accept    json
// @Produce   json
// @Param     id       path  string        true  "Publisher id"
// @Param     payload  body  PublisherReq  true  "Publisher payload"
// @Success   200  {object}  model.Publisher
// @Security  BearerAuth
// @Router    /api/publishers/{id} [put]
func (h *Controller) UpdatePublisher(c echo.Context) error {
	var req PublisherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	out, err := h.Svc.UpdatePublisher(c.Request().Context(), c.Param("id"), req.Name, req.City)
	if err != nil {
		return respond.Error(c, h.Log, "publisher update", err)
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary   Delete publisher
// @Tags      catalog
// @Produce   json
// @Param     id  path  string  true  "Publisher id"
// @Success   200  {object}  map[string]any
// @Security  BearerAuth
// @Router    /api/publishers/{id} [delete]
func (h *Controller) DeletePublisher(c echo.Context) error {
	if err := h.Svc.DeletePublisher(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Error(c, h.Log, "publisher delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
