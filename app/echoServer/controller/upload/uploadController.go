package upload

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer/respond"
	uploadsvc "github.com/SenyaGur/ukrlibrary/service/upload"
)

type Controller struct {
	Svc uploadsvc.Service
	Log *slog.Logger
}

// Cover uploads a book cover image (admin)
// @Summary      Upload book cover
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image file"
// @Success      201  {object}  uploadsvc.Result
// @Failure      400  {object}  map[string]any "unsupported file type"
// @Security     BearerAuth
// @Router       /api/upload/cover [post]
func (h *Controller) Cover(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return respond.Error(c, h.Log, "cover upload", err)
	}
	defer src.Close()

	res, err := h.Svc.Cover(c.Request().Context(), fh.Filename, src)
	if err != nil {
		return respond.Error(c, h.Log, "cover upload", err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Media uploads a gallery file, optionally attaching it to a book (admin)
// @Summary      Upload book media
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true   "Media file"
// @Param        book_id  formData  string  false  "Book to attach the file to"
// @Success      201  {object}  uploadsvc.Result
// @Security     BearerAuth
// @Router       /api/upload/media [post]
func (h *Controller) Media(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return respond.Error(c, h.Log, "media upload", err)
	}
	defer src.Close()

	res, err := h.Svc.Media(c.Request().Context(), fh.Filename, c.FormValue("book_id"), src)
	if err != nil {
		return respond.Error(c, h.Log, "media upload", err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Serve streams an uploaded file
// @Summary      Serve uploaded file
// @Tags         uploads
// @Produce      octet-stream
// @Param        key  path  string  true  "Object key"
// @Success      200
// @Failure      404  {object}  map[string]any
// @Router       /uploads/{key} [get]
func (h *Controller) Serve(c echo.Context) error {
	info, rc, err := h.Svc.Serve(c.Request().Context(), c.Param("*"))
	if err != nil {
		return respond.Error(c, h.Log, "serve upload", err)
	}
	defer rc.Close()

	ct := info.ContentType
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, ct, rc)
}
