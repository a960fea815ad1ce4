package models

import (
	"bytes"
	"encoding/json"
)

// GenerationRequest - тело запроса POST /api/generate.
// TechnicalLevel хранится в сыром виде: клиенты присылают и числа, и строки,
// а приведение к уровню стиля выполняет сервис.
type GenerationRequest struct {
	Prompt         string          `json:"prompt"`
	Language       string          `json:"language"`
	TechnicalLevel json.RawMessage `json:"technicalLevel,omitempty"`
}

// HasTechnicalLevel сообщает, передано ли поле technicalLevel.
// Любое значение, включая null и 0, считается переданным.
func (r GenerationRequest) HasTechnicalLevel() bool {
	return len(bytes.TrimSpace(r.TechnicalLevel)) > 0
}

// IsComplete проверяет наличие всех обязательных полей.
func (r GenerationRequest) IsComplete() bool {
	return r.Prompt != "" && r.Language != "" && r.HasTechnicalLevel()
}

// NewGenerationRequest собирает запрос с числовым уровнем стиля.
func NewGenerationRequest(prompt, language string, level int) GenerationRequest {
	raw, _ := json.Marshal(level)
	return GenerationRequest{
		Prompt:         prompt,
		Language:       language,
		TechnicalLevel: raw,
	}
}

// StoryData - одна глава: текст, две развилки и ссылка на иллюстрацию.
type StoryData struct {
	Story    string `json:"story"`
	Choice1  string `json:"choice1"`
	Choice2  string `json:"choice2"`
	ImageURL string `json:"imageUrl"`
}

// Choices возвращает варианты продолжения в порядке отображения.
func (d StoryData) Choices() []string {
	return []string{d.Choice1, d.Choice2}
}

// LanguagesResponse - ответ GET /api/languages.
type LanguagesResponse struct {
	Languages    []string `json:"languages"`
	DefaultLevel int      `json:"defaultLevel"`
	MinLevel     int      `json:"minLevel"`
	MaxLevel     int      `json:"maxLevel"`
}
