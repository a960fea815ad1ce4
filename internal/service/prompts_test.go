package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/internal/service"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt, err := service.BuildSystemPrompt(service.StyleDescription(4), "Français")
	require.NoError(t, err)

	assert.Contains(t, prompt, "You MUST write the story using sophisticated vocabulary")
	assert.Contains(t, prompt, "You must respond in the Français language.")
	assert.Contains(t, prompt, `{"story": "...", "choice1": "...", "choice2": "..."}`)
	assert.Contains(t, prompt, "Do not include any other text outside of the JSON object.")
}

func TestBuildSystemPrompt_DoesNotEscapeLanguage(t *testing.T) {
	prompt, err := service.BuildSystemPrompt(service.StyleDescription(3), "日本語 <formal>")
	require.NoError(t, err)
	assert.Contains(t, prompt, "日本語 <formal>")
}

func TestBuildImagePrompt(t *testing.T) {
	got := service.BuildImagePrompt("A lighthouse flickers", ", cinematic, digital painting, atmospheric, concept art")
	assert.Equal(t, "A lighthouse flickers, cinematic, digital painting, atmospheric, concept art", got)
}
