package storyclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyforge/internal/models"
	"storyforge/internal/storyclient"
)

func newServer(t *testing.T, handler http.HandlerFunc) *storyclient.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return storyclient.New(srv.URL+"/", 0, zap.NewNop())
}

func TestGenerate_Success(t *testing.T) {
	var received map[string]any
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"story":"It began.","choice1":"Left","choice2":"Right","imageUrl":"https://img.example.com/1.png"}`))
	})

	story, err := client.Generate(context.Background(), models.NewGenerationRequest("Once", "Français", 4))
	require.NoError(t, err)
	assert.Equal(t, &models.StoryData{
		Story:    "It began.",
		Choice1:  "Left",
		Choice2:  "Right",
		ImageURL: "https://img.example.com/1.png",
	}, story)

	assert.Equal(t, "Once", received["prompt"])
	assert.Equal(t, "Français", received["language"])
	assert.EqualValues(t, 4, received["technicalLevel"])
}

func TestGenerate_APIError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + models.MsgGenerationFailed + `"}`))
	})

	story, err := client.Generate(context.Background(), models.NewGenerationRequest("Once", "English", 3))
	assert.Nil(t, story)

	apiErr, ok := storyclient.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, models.MsgGenerationFailed, apiErr.Message)
}

func TestGenerate_NonJSONErrorFallsBackToStatusText(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})

	_, err := client.Generate(context.Background(), models.NewGenerationRequest("Once", "English", 3))
	apiErr, ok := storyclient.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestGenerate_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.Generate(ctx, models.NewGenerationRequest("Once", "English", 3))
	assert.ErrorIs(t, err, context.Canceled)
	_, isAPI := storyclient.IsAPIError(err)
	assert.False(t, isAPI)
}

func TestLanguages(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/languages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.LanguagesResponse{
			Languages:    models.SupportedLanguages,
			DefaultLevel: 3,
			MinLevel:     1,
			MaxLevel:     5,
		})
	})

	languages, err := client.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SupportedLanguages, languages.Languages)
	assert.Equal(t, 3, languages.DefaultLevel)
}
