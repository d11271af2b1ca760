package audiogen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sonara/soundscape/internal/config"
)

func TestGenerateSendsDescriptionAndReturnsAudio(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sound-generation", r.URL.Path)
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gentle waves", req.Text)
		require.Equal(t, "facebook/audiogen-medium", req.ModelID)
		require.InDelta(t, 5, req.Duration, 1e-9)

		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFFfake-wav"))
	}))
	defer server.Close()

	c := New(config.AudioGenConfig{Endpoint: server.URL, Model: "facebook/audiogen-medium", DurationSec: 5})
	audio, err := c.Generate(context.Background(), "gentle waves")
	require.NoError(t, err)
	require.Equal(t, []byte("RIFFfake-wav"), audio)
}

func TestGenerateBackendFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(config.AudioGenConfig{Endpoint: server.URL, DurationSec: 5})
	_, err := c.Generate(context.Background(), "wind")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
	require.Contains(t, err.Error(), "model busy")
}

func TestGenerateRejectsEmptyDescription(t *testing.T) {
	t.Parallel()

	c := New(config.AudioGenConfig{Endpoint: "http://unused", DurationSec: 5})
	_, err := c.Generate(context.Background(), "  ")
	require.Error(t, err)
}

func TestGenerateRejectsEmptyAudio(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(config.AudioGenConfig{Endpoint: server.URL, DurationSec: 5})
	_, err := c.Generate(context.Background(), "wind")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty audio")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	c := New(config.AudioGenConfig{Endpoint: healthy.URL, DurationSec: 5})
	require.NoError(t, c.Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	c = New(config.AudioGenConfig{Endpoint: down.URL, DurationSec: 5})
	require.Error(t, c.Health(context.Background()))
}
