package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"RoadPulse/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(primaryURL, fallbackURL string) *Resolver {
	return NewResolver(config.GeocodeConfig{
		NominatimBaseURL: primaryURL,
		PhotonBaseURL:    fallbackURL,
		UserAgent:        "test-agent",
		Timeout:          2 * time.Second,
	}, nil)
}

func TestResolve_PrimarySuccessSkipsFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "paris", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France","address":{"road":"Rue de Rivoli","city":"Paris","country":"France"}}]`))
	}))
	defer primary.Close()

	var fallbackCalls int32
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackCalls, 1)
		w.Write([]byte(`{"features":[]}`))
	}))
	defer fallback.Close()

	r := testResolver(primary.URL, fallback.URL)
	matches, err := r.Resolve(context.Background(), "paris", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 48.8566, matches[0].Latitude)
	assert.Equal(t, 2.3522, matches[0].Longitude)
	assert.Equal(t, "Paris, France", matches[0].DisplayName)
	assert.Equal(t, "Rue de Rivoli", matches[0].Address.Road)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fallbackCalls), "fallback must not be consulted")
}

func TestResolve_ViewboxForwarded(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1.0,2.0,3.0,4.0", r.URL.Query().Get("viewbox"))
		w.Write([]byte(`[{"lat":"1","lon":"2","display_name":"x","address":{}}]`))
	}))
	defer primary.Close()

	r := testResolver(primary.URL, "http://127.0.0.1:0")
	_, err := r.Resolve(context.Background(), "x", "1.0,2.0,3.0,4.0")
	require.NoError(t, err)
}

func TestResolve_EmptyPrimaryFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[2.35,48.85]},"properties":{"name":"Gare du Nord","state":"Île-de-France","country":"France"}}]}`))
	}))
	defer fallback.Close()

	r := testResolver(primary.URL, fallback.URL)
	matches, err := r.Resolve(context.Background(), "gare du nord", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// GeoJSON coordinates arrive [lon, lat] and must be swapped.
	assert.Equal(t, 48.85, matches[0].Latitude)
	assert.Equal(t, 2.35, matches[0].Longitude)
	assert.Equal(t, "Gare du Nord, Île-de-France France", matches[0].DisplayName)
	assert.Equal(t, "Gare du Nord", matches[0].Address.Road, "road falls back to name when street is absent")
}

func TestResolve_BlockedPrimaryFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[6.1,46.2]},"properties":{"name":"Genève","street":"Rue du Rhône","city":"Genève","country":"Suisse"}}]}`))
	}))
	defer fallback.Close()

	r := testResolver(primary.URL, fallback.URL)
	matches, err := r.Resolve(context.Background(), "geneve", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Rue du Rhône", matches[0].Address.Road)
	assert.Equal(t, "Genève, Genève Suisse", matches[0].DisplayName)
}

func TestResolve_BothFail(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"blocked"}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer fallback.Close()

	r := testResolver(primary.URL, fallback.URL)
	matches, err := r.Resolve(context.Background(), "anywhere", "")
	assert.Nil(t, matches)

	var perr *PrimaryError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.JSONEq(t, `{"error":"blocked"}`, string(perr.Body))
}
