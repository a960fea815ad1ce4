package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storyforge/internal/config"
)

// ErrAIGenerationFailed - ошибка при генерации текста AI.
var ErrAIGenerationFailed = errors.New("AI text generation failed")

// UsageInfo - расход токенов на один запрос.
// Estimated выставляется, когда провайдер не вернул usage и prompt токены посчитаны локально.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Estimated        bool
}

// TextGenerator генерирует одну главу в JSON режиме.
type TextGenerator interface {
	// GenerateJSON отправляет ровно два сообщения (system, user) и возвращает
	// сырой текст ответа модели. Пустой ответ считается ошибкой.
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, UsageInfo, error)
}

// NewTextGenerator создает клиент генерации текста по AI_CLIENT_TYPE.
func NewTextGenerator(cfg config.AIConfig, logger *zap.Logger) (TextGenerator, error) {
	switch cfg.ClientType {
	case config.AIClientOpenAI:
		logger.Info("Using OpenAI text client",
			zap.String("base_url", cfg.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return &openAIClient{
			client: newOpenAIClient(cfg),
			model:  cfg.Model,
			logger: logger.Named("OpenAIClient"),
		}, nil
	case config.AIClientOllama:
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI client type: %q", cfg.ClientType)
	}
}

// newOpenAIClient - общий конструктор go-openai клиента для текста и картинок.
func newOpenAIClient(cfg config.AIConfig) *openaigo.Client {
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return openaigo.NewClientWithConfig(openaiConfig)
}

// --- OpenAI ---

type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, UsageInfo, error) {
	var usage UsageInfo
	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: system prompt is empty", ErrAIGenerationFailed)
	}

	req := openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	c.logger.Debug("Sending chat completion request",
		zap.String("model", c.model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_prompt_bytes", len(userPrompt)),
	)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("Chat completion failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("Chat completion returned empty content", zap.Duration("duration", duration))
		aiRequestsTotal.WithLabelValues(c.model, "error_empty_response").Inc()
		return "", usage, fmt.Errorf("%w: empty completion", ErrAIGenerationFailed)
	}

	aiRequestsTotal.WithLabelValues(c.model, "success").Inc()
	aiRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		usage = UsageInfo{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	} else if n, ok := estimateTokens(c.model, systemPrompt, userPrompt); ok {
		c.logger.Warn("Usage not returned by provider, using estimated prompt tokens", zap.Int("prompt_tokens", n))
		usage = UsageInfo{PromptTokens: n, TotalTokens: n, Estimated: true}
	}
	observeTokens(c.model, usage)

	content := resp.Choices[0].Message.Content
	c.logger.Info("Chat completion received",
		zap.Duration("duration", duration),
		zap.Int("content_length", len(content)),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)
	return content, usage, nil
}

// estimateTokens считает токены промптов через tiktoken.
// Для моделей, которых tiktoken не знает, возвращает false.
func estimateTokens(model string, texts ...string) (int, bool) {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return 0, false
	}
	total := 0
	for _, text := range texts {
		total += len(tke.Encode(text, nil, nil))
	}
	return total, true
}

// --- Ollama ---

// ollamaClient - локальная альтернатива OpenAI для текста (AI_CLIENT_TYPE=ollama).
type ollamaClient struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

func newOllamaClient(cfg config.AIConfig, logger *zap.Logger) (TextGenerator, error) {
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.OllamaBaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL %q: %w", baseURL, err)
	}

	logger.Info("Using Ollama text client",
		zap.String("base_url", baseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return &ollamaClient{
		client: api.NewClient(parsedURL, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
		logger: logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, UsageInfo, error) {
	var usage UsageInfo
	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: system prompt is empty", ErrAIGenerationFailed)
	}

	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	start := time.Now()
	var final api.ChatResponse
	var content strings.Builder
	err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		if r.Done {
			final = r
		}
		return nil
	})
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("Ollama chat failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", usage, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}

	text := content.String()
	if strings.TrimSpace(text) == "" {
		c.logger.Error("Ollama returned empty content", zap.Duration("duration", duration))
		aiRequestsTotal.WithLabelValues(c.model, "error_empty_response").Inc()
		return "", usage, fmt.Errorf("%w: empty completion", ErrAIGenerationFailed)
	}

	aiRequestsTotal.WithLabelValues(c.model, "success").Inc()
	aiRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	usage = UsageInfo{
		PromptTokens:     final.PromptEvalCount,
		CompletionTokens: final.EvalCount,
		TotalTokens:      final.PromptEvalCount + final.EvalCount,
	}
	observeTokens(c.model, usage)

	c.logger.Info("Ollama chat completed",
		zap.Duration("duration", duration),
		zap.Int("content_length", len(text)),
		zap.String("done_reason", final.DoneReason),
	)
	return text, usage, nil
}
