package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "zabibufresh/pkg/errors"
)

func record(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, fn(c))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestPaginatedComputesTotalPages(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error {
		return Paginated(c, []string{"a", "b"}, 45, 2, 20)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(45), data["total"])
	assert.Equal(t, float64(2), data["page"])
	assert.Equal(t, float64(20), data["pageSize"])
	assert.Equal(t, float64(3), data["totalPages"])
}

func TestPaginatedZeroPageSizeDoesNotPanic(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error {
		return Paginated(c, []string{}, 10, 1, 0)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestErrorTranslatesAppError(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error {
		return Error(c, apperrors.NotFound("Product", nil))
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}
