package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, false)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Info().Str("session", "ab12cd").Msg("created")
	assert.Contains(t, buf.String(), `"session":"ab12cd"`)

	assert.Equal(t, zerolog.DebugLevel, New(&buf, true).GetLevel())
}

func TestRequests(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false).Level(zerolog.DebugLevel)

	called := false
	h := Requests(l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), `"path":"/api/health"`)
	assert.Contains(t, buf.String(), `"message":"http request"`)
}
