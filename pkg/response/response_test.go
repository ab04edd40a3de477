package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Patient created", map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Patient created", body["message"])
	assert.Equal(t, map[string]interface{}{"id": float64(7)}, body["data"])
	assert.NotContains(t, body, "count")
	assert.NotContains(t, body, "error")
}

func TestList_IncludesZeroCount(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, "", []string{}, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"phone": "phone is invalid"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["error"])
	assert.Equal(t, map[string]interface{}{"phone": "phone is invalid"}, body["details"])
}

func TestErrorDefaults(t *testing.T) {
	cases := []struct {
		write   func(http.ResponseWriter)
		code    int
		message string
	}{
		{func(w http.ResponseWriter) { NotFound(w, "") }, http.StatusNotFound, "Resource not found"},
		{func(w http.ResponseWriter) { BadRequest(w, "") }, http.StatusBadRequest, "Bad request"},
		{func(w http.ResponseWriter) { PayloadTooLarge(w, "") }, http.StatusRequestEntityTooLarge, "Request body too large"},
		{func(w http.ResponseWriter) { InternalServerError(w, "") }, http.StatusInternalServerError, "Internal server error"},
		{func(w http.ResponseWriter) { TooManyRequests(w) }, http.StatusTooManyRequests, "Too many requests"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.write(rec)
		assert.Equal(t, tc.code, rec.Code)
		assert.Equal(t, tc.message, decode(t, rec)["error"])
	}
}
