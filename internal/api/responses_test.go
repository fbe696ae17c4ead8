package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPagination(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=500", nil)
	page, limit := PageParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageLimit, limit)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	page, limit = PageParams(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageLimit, limit)
}

func TestFail_TaxonomyError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, Conflict("timeslot_full", "time slot is full"))

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "timeslot_full", resp.Error)
	assert.Equal(t, "time slot is full", resp.Message)
}

func TestFail_UnknownErrorIsOpaque(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestAsError_Wrapped(t *testing.T) {
	inner := NotFound("schedule_not_found", "schedule not found")
	wrapped := errors.Join(errors.New("lookup"), inner)

	got := AsError(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "schedule_not_found", got.Code)
}
