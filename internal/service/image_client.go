package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storyforge/internal/config"
)

// ErrImageGenerationFailed - ошибка при генерации иллюстрации.
var ErrImageGenerationFailed = errors.New("image generation failed")

// ImageGenerator генерирует одну иллюстрацию и возвращает ее URL у провайдера.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type openAIImageClient struct {
	client  *openaigo.Client
	model   string
	size    string
	quality string
	logger  *zap.Logger
}

// NewImageGenerator создает клиент генерации картинок поверх OpenAI Images API.
// Картинка всегда одна, квадратная, отдается ссылкой.
func NewImageGenerator(aiCfg config.AIConfig, imgCfg config.ImageConfig, logger *zap.Logger) ImageGenerator {
	logger.Info("Using OpenAI image client",
		zap.String("model", imgCfg.Model),
		zap.String("size", imgCfg.Size),
		zap.String("quality", imgCfg.Quality),
	)
	return &openAIImageClient{
		client:  newOpenAIClient(aiCfg),
		model:   imgCfg.Model,
		size:    imgCfg.Size,
		quality: imgCfg.Quality,
		logger:  logger.Named("OpenAIImageClient"),
	}
}

func (c *openAIImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	log := c.logger.With(zap.Int("prompt_length", len(prompt)))
	log.Debug("Sending image generation request")

	start := time.Now()
	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.size,
		Quality:        c.quality,
		ResponseFormat: openaigo.CreateImageResponseFormatURL,
	})
	duration := time.Since(start)
	if err != nil {
		log.Error("Image generation request failed", zap.Duration("duration", duration), zap.Error(err))
		imageRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		log.Error("Image generation returned no URL", zap.Duration("duration", duration))
		imageRequestsTotal.WithLabelValues(c.model, "error_empty_response").Inc()
		return "", fmt.Errorf("%w: no image URL in response", ErrImageGenerationFailed)
	}

	imageRequestsTotal.WithLabelValues(c.model, "success").Inc()
	imageRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())
	log.Info("Image generated", zap.Duration("duration", duration))
	return resp.Data[0].URL, nil
}
