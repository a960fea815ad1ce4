// Package storyclient - HTTP клиент к POST /api/generate для не-браузерных клиентов.
package storyclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"storyforge/internal/models"
)

// APIError - ответ сервера с не-2xx статусом.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("story API error (status %d): %s", e.StatusCode, e.Message)
}

// Client обращается к серверу историй.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New создает клиент. timeout == 0 - без таймаута (генерация может идти минутами).
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{
		http:   httpClient,
		logger: logger.Named("StoryClient"),
	}
}

// Generate запрашивает следующую главу.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (*models.StoryData, error) {
	var story models.StoryData
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&story).
		SetError(&models.ErrorResponse{}).
		Post("/api/generate")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("story API request failed: %w", err)
	}
	if resp.IsError() {
		apiErr := toAPIError(resp)
		c.logger.Warn("Story API returned error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("error", apiErr.Message),
		)
		return nil, apiErr
	}

	c.logger.Debug("Story chapter received",
		zap.Int("story_length", len(story.Story)),
		zap.Duration("duration", resp.Time()),
	)
	return &story, nil
}

// Languages получает список языков и диапазон уровня стиля.
func (c *Client) Languages(ctx context.Context) (*models.LanguagesResponse, error) {
	var languages models.LanguagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&languages).
		SetError(&models.ErrorResponse{}).
		Get("/api/languages")
	if err != nil {
		return nil, fmt.Errorf("languages request failed: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp)
	}
	return &languages, nil
}

func toAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*models.ErrorResponse); ok && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

// IsAPIError проверяет, что ошибка пришла от сервера, а не от транспорта.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
