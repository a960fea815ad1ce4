package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyforge/internal/config"
	"storyforge/internal/service"
)

// fakeOpenAI эмулирует /v1/chat/completions и /v1/images/generations.
type fakeOpenAI struct {
	t          *testing.T
	chatBody   map[string]any
	imageBody  map[string]any
	chatReply  string
	chatStatus int
	imageReply string
}

func (f *fakeOpenAI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(f.t, json.Unmarshal(body, &f.chatBody))
		w.Header().Set("Content-Type", "application/json")
		if f.chatStatus != 0 {
			w.WriteHeader(f.chatStatus)
		}
		_, _ = io.WriteString(w, f.chatReply)
	})
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(f.t, json.Unmarshal(body, &f.imageBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, f.imageReply)
	})
	return mux
}

func newFakeOpenAI(t *testing.T) (*fakeOpenAI, config.AIConfig) {
	f := &fakeOpenAI{t: t}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, config.AIConfig{
		ClientType: config.AIClientOpenAI,
		APIKey:     "sk-test",
		BaseURL:    srv.URL + "/v1",
		Model:      "gpt-4-turbo",
	}
}

func chatReply(content string) string {
	reply, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
	})
	return string(reply)
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	fake, cfg := newFakeOpenAI(t)
	fake.chatReply = chatReply(validCompletion)

	client, err := service.NewTextGenerator(cfg, zap.NewNop())
	require.NoError(t, err)

	content, usage, err := client.GenerateJSON(context.Background(), "system prompt", testPrompt)
	require.NoError(t, err)
	assert.Equal(t, validCompletion, content)
	assert.Equal(t, service.UsageInfo{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200}, usage)

	assert.Equal(t, "gpt-4-turbo", fake.chatBody["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, fake.chatBody["response_format"])
	messages, ok := fake.chatBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "system prompt", messages[0].(map[string]any)["content"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, testPrompt, messages[1].(map[string]any)["content"])
}

func TestOpenAIClient_GenerateJSON_EmptyContent(t *testing.T) {
	fake, cfg := newFakeOpenAI(t)
	fake.chatReply = chatReply("")

	client, err := service.NewTextGenerator(cfg, zap.NewNop())
	require.NoError(t, err)

	_, _, err = client.GenerateJSON(context.Background(), "system prompt", testPrompt)
	assert.ErrorIs(t, err, service.ErrAIGenerationFailed)
}

func TestOpenAIClient_GenerateJSON_ProviderError(t *testing.T) {
	fake, cfg := newFakeOpenAI(t)
	fake.chatStatus = http.StatusInternalServerError
	fake.chatReply = `{"error": {"message": "upstream exploded", "type": "server_error"}}`

	client, err := service.NewTextGenerator(cfg, zap.NewNop())
	require.NoError(t, err)

	_, _, err = client.GenerateJSON(context.Background(), "system prompt", testPrompt)
	assert.ErrorIs(t, err, service.ErrAIGenerationFailed)
}

func TestOpenAIClient_GenerateJSON_EmptySystemPrompt(t *testing.T) {
	_, cfg := newFakeOpenAI(t)

	client, err := service.NewTextGenerator(cfg, zap.NewNop())
	require.NoError(t, err)

	_, _, err = client.GenerateJSON(context.Background(), "  ", testPrompt)
	assert.ErrorIs(t, err, service.ErrAIGenerationFailed)
}

func TestNewTextGenerator_UnknownType(t *testing.T) {
	_, err := service.NewTextGenerator(config.AIConfig{ClientType: "gemini"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenAIImageClient_GenerateImage(t *testing.T) {
	fake, cfg := newFakeOpenAI(t)
	fake.imageReply = `{"created": 1, "data": [{"url": "` + testImageURL + `"}]}`

	images := service.NewImageGenerator(cfg, config.ImageConfig{Model: "dall-e-3", Size: "1024x1024", Quality: "standard"}, zap.NewNop())

	url, err := images.GenerateImage(context.Background(), testStory+testSuffix)
	require.NoError(t, err)
	assert.Equal(t, testImageURL, url)

	assert.Equal(t, testStory+testSuffix, fake.imageBody["prompt"])
	assert.Equal(t, "dall-e-3", fake.imageBody["model"])
	assert.EqualValues(t, 1, fake.imageBody["n"])
	assert.Equal(t, "1024x1024", fake.imageBody["size"])
	assert.Equal(t, "standard", fake.imageBody["quality"])
	assert.Equal(t, "url", fake.imageBody["response_format"])
}

func TestOpenAIImageClient_GenerateImage_NoURL(t *testing.T) {
	fake, cfg := newFakeOpenAI(t)
	fake.imageReply = `{"created": 1, "data": []}`

	images := service.NewImageGenerator(cfg, config.ImageConfig{Model: "dall-e-3", Size: "1024x1024", Quality: "standard"}, zap.NewNop())

	_, err := images.GenerateImage(context.Background(), "prompt")
	assert.ErrorIs(t, err, service.ErrImageGenerationFailed)
}

func TestOllamaClient_GenerateJSON(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		reply, _ := json.Marshal(map[string]any{
			"model":             "llama3.1",
			"created_at":        "2024-01-01T00:00:00Z",
			"message":           map[string]any{"role": "assistant", "content": validCompletion},
			"done":              true,
			"done_reason":       "stop",
			"prompt_eval_count": 40,
			"eval_count":        60,
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(reply)
	}))
	t.Cleanup(srv.Close)

	client, err := service.NewTextGenerator(config.AIConfig{
		ClientType:    config.AIClientOllama,
		OllamaBaseURL: srv.URL,
		Model:         "llama3.1",
	}, zap.NewNop())
	require.NoError(t, err)

	content, usage, err := client.GenerateJSON(context.Background(), "system prompt", testPrompt)
	require.NoError(t, err)
	assert.Equal(t, validCompletion, content)
	assert.Equal(t, service.UsageInfo{PromptTokens: 40, CompletionTokens: 60, TotalTokens: 100}, usage)

	assert.Equal(t, "json", received["format"])
	assert.Equal(t, false, received["stream"])
	messages, ok := received["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}
