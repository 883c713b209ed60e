package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"count": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "Order not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Jo"}`))

	var dst struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "Jo", dst.Name)
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	big := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(big))

	var dst struct {
		Name string `json:"name"`
	}
	assert.Error(t, DecodeJSON(req, &dst))
}
