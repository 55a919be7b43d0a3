// Package respond maps service errors to HTTP responses in one place.
package respond

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/util/apperrors"
)

// Error answers with the status and code carried by the error. Unknown errors
// become 500s and are the only ones logged at Error level.
func Error(c echo.Context, log *slog.Logger, op string, err error) error {
	ae := apperrors.From(err)
	if ae.Code == apperrors.CodeInternal {
		log.Error(op, "err", err, "path", c.Path())
	}
	return c.JSON(ae.HTTPStatus, echo.Map{"code": ae.Code, "message": ae.Message})
}
