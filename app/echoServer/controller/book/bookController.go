package book

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer/respond"
	"github.com/SenyaGur/ukrlibrary/model"
	booksvc "github.com/SenyaGur/ukrlibrary/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List books
// @Summary      List books
// @Tags         books
// @Produce      json
// @Param        category   query  string  false  "Filter by category"
// @Param        search     query  string  false  "Search in title and author"
// @Param        available  query  bool    false  "Filter by availability"
// @Success      200  {object}  map[string]any
// @Router       /api/books [get]
func (h *Controller) List(c echo.Context) error {
	f := model.BookFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	switch c.QueryParam("available") {
	case "true":
		t := true
		f.Available = &t
	case "false":
		fl := false
		f.Available = &fl
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return respond.Error(c, h.Log, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Detail returns one book
// @Summary      Book detail
// @Tags         books
// @Produce      json
// @Param        id  path  string  true  "Book id"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	b, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Error(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Filters returns the distinct filter values
// @Summary      Catalog filter values
// @Tags         books
// @Produce      json
// @Success      200  {object}  model.BookFilterValues
// @Router       /api/books/filters [get]
func (h *Controller) Filters(c echo.Context) error {
	fv, err := h.Svc.FilterValues(c.Request().Context())
	if err != nil {
		return respond.Error(c, h.Log, "book filters", err)
	}
	return c.JSON(http.StatusOK, fv)
}

// Create a book (admin)
// @Summary      Create book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body  booksvc.CreateInput  true  "Book payload"
// @Success      201  {object}  model.Book
// @Security     BearerAuth
// @Router       /api/books [post]
func (h *Controller) Create(c echo.Context) error {
	var req booksvc.CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, h.Log, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update a book partially (admin)
// @Summary      Update book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path  string               true  "Book id"
// @Param        payload  body  booksvc.UpdateInput  true  "Fields to change"
// @Success      200  {object}  model.Book
// @Security     BearerAuth
// @Router       /api/books/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	var req booksvc.UpdateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	b, err := h.Svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respond.Error(c, h.Log, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete a book (admin)
// @Summary      Delete book
// @Tags         books
// @Produce      json
// @Param        id  path  string  true  "Book id"
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  map[string]any "book has active rental requests"
// @Security     BearerAuth
// @Router       /api/books/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respond.Error(c, h.Log, "book delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// Duplicate a book (admin)
// @Summary      Duplicate book
// @Tags         books
// @Produce      json
// @Param        id  path  string  true  "Book id"
// @Success      201  {object}  model.Book
// @Security     BearerAuth
// @Router       /api/books/{id}/duplicate [post]
func (h *Controller) Duplicate(c echo.Context) error {
	b, err := h.Svc.Duplicate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Error(c, h.Log, "book duplicate", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// ForceAvailable returns a book to circulation (admin)
// @Summary      Force book availability
// @Tags         books
// @Produce      json
// @Param        id  path  string  true  "Book id"
// @Success      200  {object}  model.Book
// @Security     BearerAuth
// @Router       /api/books/{id}/force-available [post]
func (h *Controller) ForceAvailable(c echo.Context) error {
	b, err := h.Svc.ForceAvailable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Error(c, h.Log, "book force available", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Import books in bulk (admin)
// @Summary      Bulk import books
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body  ImportReq  true  "Rows to import"
// @Success      200  {object}  booksvc.ImportResult
// @Security     BearerAuth
// @Router       /api/books/import [post]
func (h *Controller) Import(c echo.Context) error {
	var req ImportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if len(req.BooksData) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "booksData is required"})
	}
	res, err := h.Svc.Import(c.Request().Context(), req.BooksData)
	if err != nil {
		return respond.Error(c, h.Log, "book import", err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListMedia of a book
// @Summary      Book media
// @Tags         books
// @Produce      json
// @Param        id  path  string  true  "Book id"
// @Success      200  {object}  map[string]any
// @Router       /api/books/{id}/media [get]
func (h *Controller) ListMedia(c echo.Context) error {
	rows, err := h.Svc.ListMedia(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Error(c, h.Log, "book media list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DeleteMedia removes a media row (admin)
// @Summary      Delete book media
// @Tags         books
// @Produce      json
// @Param        media_id  path  string  true  "Media id"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/books/media/{media_id} [delete]
func (h *Controller) DeleteMedia(c echo.Context) error {
	if err := h.Svc.DeleteMedia(c.Request().Context(), c.Param("media_id")); err != nil {
		return respond.Error(c, h.Log, "book media delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
