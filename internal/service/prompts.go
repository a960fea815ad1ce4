package service

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/system_prompt.tmpl
var systemPromptSource string

var systemPromptTemplate = template.Must(template.New("system_prompt").Parse(systemPromptSource))

type systemPromptData struct {
	Style    string
	Language string
}

// BuildSystemPrompt собирает системный промпт: инструкция о стиле, язык ответа
// и требование вернуть ровно JSON объект {story, choice1, choice2}.
func BuildSystemPrompt(style, language string) (string, error) {
	var sb strings.Builder
	if err := systemPromptTemplate.Execute(&sb, systemPromptData{Style: style, Language: language}); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return sb.String(), nil
}

// BuildImagePrompt склеивает текст главы со стилевым суффиксом для генератора картинок.
func BuildImagePrompt(story, styleSuffix string) string {
	return story + styleSuffix
}
