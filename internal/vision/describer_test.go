package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sonara/soundscape/internal/config"
)

func TestDescribeJoinsTopThreeLabels(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Inputs)
		require.Equal(t, candidateLabels, req.Parameters.CandidateLabels)

		_ = json.NewEncoder(w).Encode([]classifyScore{
			{Label: "rain", Score: 0.61},
			{Label: "a forest", Score: 0.8},
			{Label: "wind through trees", Score: 0.7},
			{Label: "a desert", Score: 0.01},
		})
	}))
	defer server.Close()

	d := New(config.VisionConfig{Endpoint: server.URL, Model: "openai/clip-vit-large-patch14", Token: "hf-token"})
	desc, err := d.Describe(context.Background(), []byte("fake-image-bytes"))
	require.NoError(t, err)
	require.Equal(t, "a forest, wind through trees and rain", desc)
	require.Equal(t, "/models/openai/clip-vit-large-patch14", gotPath)
}

func TestDescribeUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := New(config.VisionConfig{Endpoint: server.URL, Model: "m"})
	_, err := d.Describe(context.Background(), []byte("img"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestDescribeEmptyImage(t *testing.T) {
	t.Parallel()

	d := New(config.VisionConfig{Endpoint: "http://unused", Model: "m"})
	desc, err := d.Describe(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, desc)
}

func TestJoinTopLabels(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", joinTopLabels(nil))
	require.Equal(t, "rain", joinTopLabels([]classifyScore{{Label: "rain", Score: 1}}))
	require.Equal(t, "rain and wind through trees", joinTopLabels([]classifyScore{
		{Label: "wind through trees", Score: 0.2},
		{Label: "rain", Score: 0.9},
	}))
}
