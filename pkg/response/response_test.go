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
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestNoticeCarriesDismissal(t *testing.T) {
	rec := httptest.NewRecorder()
	Notice(rec, http.StatusCreated, "Added to cart", map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Added to cart", body["notice"])
	assert.EqualValues(t, NoticeTTL, body["dismiss_after_ms"])
	assert.NotContains(t, body, "action")
}

func TestErrorOffersReload(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadGateway, "backend unavailable")

	body := decode(t, rec)
	assert.Equal(t, "reload", body["action"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"quantity": "must be at least 1"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["errors"], "quantity")
	assert.Equal(t, "reload", body["action"])
}

func TestUnauthorizedOffersReload(t *testing.T) {
	rec := httptest.NewRecorder()
	Unauthorized(rec)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Please sign in first", body["message"])
	assert.Equal(t, "reload", body["action"])
}
