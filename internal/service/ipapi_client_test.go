package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/globeguru/internal/model"
)

func TestIPAPIClientLookup(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"country_name":"Japan","country_code":"jp","city":"Tokyo","region":"Tokyo"}`))
	}))
	defer srv.Close()

	loc, err := NewIPAPIClient(srv.URL).Lookup(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "/203.0.113.7/json/", gotPath)
	assert.Equal(t, "JP", loc.CountryCode)
	assert.Equal(t, "Japan", loc.Country)
	assert.Equal(t, "Tokyo", loc.City)
	assert.Equal(t, model.SourceIP, loc.Source)
}

func TestIPAPIClientSelfLookup(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"country_name":"France","country_code":"FR"}`))
	}))
	defer srv.Close()

	_, err := NewIPAPIClient(srv.URL + "/").Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/json/", gotPath)
}

func TestIPAPIClientFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"not found", http.StatusNotFound, `{"country_code":"FR"}`},
		{"malformed json", http.StatusOK, `{"country_code":`},
		{"missing country", http.StatusOK, `{"city":"Nowhere"}`},
		{"api error flag", http.StatusOK, `{"error":true,"reason":"Reserved IP Address"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			loc, err := NewIPAPIClient(srv.URL).Lookup(context.Background(), "198.51.100.1")
			assert.Error(t, err)
			assert.Nil(t, loc)
		})
	}
}

func TestIPAPIClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"country_name":"Germany","country_code":"DE"}`))
	}))
	defer srv.Close()

	loc, err := NewIPAPIClient(srv.URL).Lookup(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "DE", loc.CountryCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIPAPIClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewIPAPIClient(srv.URL).Lookup(ctx, "192.0.2.1")
	assert.ErrorIs(t, err, context.Canceled)
}
