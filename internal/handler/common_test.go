package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaapp/seat-reservation/internal/entrycode"
	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/repository"
	"github.com/ciaapp/seat-reservation/internal/service"
)

func recordSeatError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, seatError(e.NewContext(req, rec), err))
	return rec
}

func TestSeatErrorMapping(t *testing.T) {
	rec := recordSeatError(t, &repository.NotFoundError{Codes: []string{"Z9"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Z9")

	rec = recordSeatError(t, &repository.ConflictError{Seats: []repository.SeatConflict{
		{Code: "A1", Expected: model.StatusAvailable, Actual: model.StatusReserved},
	}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "A1")
	assert.Contains(t, rec.Body.String(), "reserved")

	rec = recordSeatError(t, &service.ValidationError{Reason: "duplicate seat codes", Codes: []string{"B2"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "B2")

	rec = recordSeatError(t, &entrycode.DecodeError{Reason: "missing hash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = recordSeatError(t, repository.ErrEntryCodeMismatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid entry code")

	rec = recordSeatError(t, errors.New("driver: bad connection"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "driver", "internal detail must not leak")
}
