package handler // handler defines http handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/entrycode"
	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/repository"
	"github.com/ciaapp/seat-reservation/internal/service"

	"github.com/ciaapp/seat-reservation/internal/middleware"
)

// currentIdentity pulls the authenticated identity stored by the JWT
// middleware.  Handlers behind JWTAuth can assume it is present.
func currentIdentity(c echo.Context) (model.Identity, error) {
	return middleware.CurrentIdentity(c)
}

// seatError maps the error taxonomy of the core onto HTTP responses.
// Batch failures name the specific offending seat codes so the client
// can re-render the seat map accurately.
func seatError(c echo.Context, err error) error {
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "seat(s) not found",
			"codes": notFound.Codes,
		})
	}
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "seat(s) not available",
			"seats": conflict.Seats,
		})
	}
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		resp := echo.Map{"error": validation.Reason}
		if len(validation.Codes) > 0 {
			resp["codes"] = validation.Codes
		}
		return c.JSON(http.StatusBadRequest, resp)
	}
	var decode *entrycode.DecodeError
	if errors.As(err, &decode) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": decode.Error()})
	}
	if errors.Is(err, repository.ErrEntryCodeMismatch) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry code"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
