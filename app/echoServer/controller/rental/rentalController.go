package rental

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer/respond"
	"github.com/SenyaGur/ukrlibrary/model"
	rs "github.com/SenyaGur/ukrlibrary/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create a rental request
// @Summary      Create rental request
// @Description  Admits a request as approved, pending or queued depending on book availability
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateRentalReq  true  "Rental payload"
// @Success      201  {object}  model.RentalRequest
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any "book not found"
// @Router       /api/rentals [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Create(c.Request().Context(), rs.CreateInput{
		BookID:         req.BookID,
		BookTitle:      req.BookTitle,
		RenterName:     req.RenterName,
		RenterPhone:    req.RenterPhone,
		RenterEmail:    req.RenterEmail,
		RentalDuration: req.RentalDuration,
		ReaderID:       req.ReaderID,
		ChildID:        req.ChildID,
		AutoApprove:    req.AutoApprove,
	})
	if err != nil {
		return respond.Error(c, h.Log, "rental create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// SetStatus transitions a rental request
// @Summary      Change rental status
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id       path  string        true  "Rental request id"
// @Param        payload  body  SetStatusReq  true  "Target status"
// @Success      200  {object}  model.RentalRequest
// @Failure      400  {object}  map[string]any "invalid transition"
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /api/rentals/{id}/status [put]
func (h *Controller) SetStatus(c echo.Context) error {
	var req SetStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := h.Svc.SetStatus(c.Request().Context(), c.Param("id"), model.RentalStatus(req.Status))
	if err != nil {
		return respond.Error(c, h.Log, "rental status", err)
	}
	return c.JSON(http.StatusOK, out)
}

// List rental requests
// @Summary      List rental requests
// @Tags         rentals
// @Produce      json
// @Param        reader_id  query  string  false  "Filter by reader"
// @Param        status     query  string  false  "Filter by status"
// @Success      200  {object}  map[string]any
// @Router       /api/rentals [get]
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), c.QueryParam("reader_id"), c.QueryParam("status"))
	if err != nil {
		return respond.Error(c, h.Log, "rental list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Queue lists the waitlist of a book
// @Summary      Book waitlist
// @Tags         rentals
// @Produce      json
// @Param        book_id  path  string  true  "Book id"
// @Success      200  {object}  map[string]any
// @Router       /api/rentals/queue/{book_id} [get]
func (h *Controller) Queue(c echo.Context) error {
	rows, err := h.Svc.Queue(c.Request().Context(), c.Param("book_id"))
	if err != nil {
		return respond.Error(c, h.Log, "rental queue", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
