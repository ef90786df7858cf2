package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_EmptyIsArrayWithZeroTotal(t *testing.T) {
	rec := httptest.NewRecorder()
	var items []string
	List(rec, items, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, map[string]any{"total_items": float64(0)}, body["meta"])
}

func TestList_CarriesTotal(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, []int{1, 2}, 7)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 7, resp.Meta.TotalItems)
	assert.Equal(t, []any{float64(1), float64(2)}, resp.Data)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		write    func(w http.ResponseWriter)
		wantCode int
		wantErr  string
	}{
		{func(w http.ResponseWriter) { BadRequest(w, "bad", map[string]string{"year": "invalid"}) }, http.StatusBadRequest, "BAD_REQUEST"},
		{func(w http.ResponseWriter) { ValidationError(w, map[string]string{"date": "required"}) }, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{func(w http.ResponseWriter) { Unauthorized(w, "no token") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{func(w http.ResponseWriter) { Forbidden(w, "no") }, http.StatusForbidden, "FORBIDDEN"},
		{func(w http.ResponseWriter) { NotFound(w, "missing") }, http.StatusNotFound, "NOT_FOUND"},
		{func(w http.ResponseWriter) { Conflict(w, "taken") }, http.StatusConflict, "CONFLICT"},
		{func(w http.ResponseWriter) { InternalServerError(w, "boom") }, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantErr, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}
