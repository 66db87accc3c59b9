package ambient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flagsmith/flagsmith-go-feature/ambient"
)

func TestMiddlewareFillsHeaders(t *testing.T) {
	// Given
	var got ambient.Record
	var ok bool
	handler := ambient.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ambient.ContextStore{}.Get(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ambient.HeaderPlatformType, "Android")
	req.Header.Set(ambient.HeaderPlatformVersion, "13")
	req.Header.Set(ambient.HeaderAppVersion, "4.0.20.674")

	// When
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Then
	require.True(t, ok)
	assert.Equal(t, ambient.Headers{
		PlatformType:    "Android",
		PlatformVersion: "13",
		AppVersion:      "4.0.20.674",
	}, got.Headers)
	assert.Empty(t, got.LogData)
}

func TestMiddlewareOpensScopePerRequest(t *testing.T) {
	var seen [][]string
	handler := ambient.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, ambient.FeatureFlags(r.Context()))
		ambient.Update(r.Context(), func(rec *ambient.Record) {
			rec.LogData.FeatureFlags = append(rec.LogData.FeatureFlags, "flag-a")
		})
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Equal(t, [][]string{nil, nil}, seen)
}
