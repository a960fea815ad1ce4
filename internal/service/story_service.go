package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storyforge/internal/models"
)

// ErrMalformedCompletion - модель вернула не JSON или JSON без ключей story/choice1/choice2.
var ErrMalformedCompletion = errors.New("malformed story completion")

// StoryGenerator - одна итерация истории: глава, развилки и иллюстрация.
type StoryGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.StoryData, error)
}

// chapter - ожидаемая форма ответа текстовой модели.
// Указатели отличают отсутствующий ключ от пустой строки.
type chapter struct {
	Story   *string `json:"story"`
	Choice1 *string `json:"choice1"`
	Choice2 *string `json:"choice2"`
}

type storyService struct {
	text        TextGenerator
	images      ImageGenerator
	styleSuffix string
	logger      *zap.Logger
}

// NewStoryService собирает конвейер генерации главы.
func NewStoryService(text TextGenerator, images ImageGenerator, imageStyleSuffix string, logger *zap.Logger) StoryGenerator {
	return &storyService{
		text:        text,
		images:      images,
		styleSuffix: imageStyleSuffix,
		logger:      logger.Named("StoryService"),
	}
}

// Generate выполняет два последовательных запроса: текст, затем картинку по тексту.
// Частичных результатов нет: любая ошибка прерывает генерацию целиком.
// Запрос должен быть уже провалидирован (IsComplete).
func (s *storyService) Generate(ctx context.Context, req models.GenerationRequest) (result *models.StoryData, err error) {
	level := StyleLevel(req.TechnicalLevel)
	log := s.logger.With(zap.String("language", req.Language), zap.Int("style_level", level))

	defer func() {
		status := "success"
		if err != nil {
			status = "failed"
		}
		storyGenerationsTotal.WithLabelValues(status).Inc()
	}()

	systemPrompt, err := BuildSystemPrompt(StyleDescription(level), req.Language)
	if err != nil {
		return nil, err
	}

	log.Info("Generating story")
	content, _, err := s.text.GenerateJSON(ctx, systemPrompt, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("story text: %w", err)
	}

	// Пустые строки пропускаются как есть, отклоняются только отсутствующие ключи.
	ch, err := parseChapter(content)
	if err != nil {
		log.Warn("Story completion could not be parsed", zap.Error(err), zap.Int("content_length", len(content)))
		return nil, err
	}

	log.Info("Generating image")
	imageURL, err := s.images.GenerateImage(ctx, BuildImagePrompt(*ch.Story, s.styleSuffix))
	if err != nil {
		return nil, fmt.Errorf("story image: %w", err)
	}

	log.Info("Generation complete")
	return &models.StoryData{
		Story:    *ch.Story,
		Choice1:  *ch.Choice1,
		Choice2:  *ch.Choice2,
		ImageURL: imageURL,
	}, nil
}

func parseChapter(content string) (chapter, error) {
	var ch chapter
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &ch); err != nil {
		return ch, fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}

	var missing []string
	if ch.Story == nil {
		missing = append(missing, "story")
	}
	if ch.Choice1 == nil {
		missing = append(missing, "choice1")
	}
	if ch.Choice2 == nil {
		missing = append(missing, "choice2")
	}
	if len(missing) > 0 {
		return ch, fmt.Errorf("%w: missing %s", ErrMalformedCompletion, strings.Join(missing, ", "))
	}
	return ch, nil
}
