package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyforge/internal/handler"
	"storyforge/internal/mocks"
	"storyforge/internal/models"
	"storyforge/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockStoryGenerator) {
	svc := mocks.NewMockStoryGenerator(t)
	router := gin.New()
	handler.NewStoryHandler(svc, zap.NewNop()).RegisterRoutes(router)
	return router, svc
}

func postGenerate(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestGenerate_Success(t *testing.T) {
	router, svc := newRouter(t)

	story := &models.StoryData{
		Story:    "The door creaked open.",
		Choice1:  "Step inside",
		Choice2:  "Run away",
		ImageURL: "https://images.example.com/door.png",
	}
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req models.GenerationRequest) bool {
		return req.Prompt == "A haunted house" && req.Language == "Deutsch" && string(req.TechnicalLevel) == "5"
	})).Return(story, nil).Once()

	w := postGenerate(router, `{"prompt": "A haunted house", "language": "Deutsch", "technicalLevel": 5}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.StoryData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *story, got)
	assert.JSONEq(t, `{
		"story": "The door creaked open.",
		"choice1": "Step inside",
		"choice2": "Run away",
		"imageUrl": "https://images.example.com/door.png"
	}`, w.Body.String())
}

func TestGenerate_StringTechnicalLevelIsPassedThrough(t *testing.T) {
	router, svc := newRouter(t)

	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req models.GenerationRequest) bool {
		return string(req.TechnicalLevel) == `"2"`
	})).Return(&models.StoryData{Story: "s", Choice1: "a", Choice2: "b", ImageURL: "u"}, nil).Once()

	w := postGenerate(router, `{"prompt": "p", "language": "English", "technicalLevel": "2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerate_MissingFields(t *testing.T) {
	cases := map[string]string{
		"empty object":     `{}`,
		"missing prompt":   `{"language": "English", "technicalLevel": 3}`,
		"empty prompt":     `{"prompt": "", "language": "English", "technicalLevel": 3}`,
		"missing language": `{"prompt": "p", "technicalLevel": 3}`,
		"missing level":    `{"prompt": "p", "language": "English"}`,
		"not json":         `prompt=p`,
		"wrong types":      `{"prompt": 42, "language": "English", "technicalLevel": 3}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			// Сервис не должен вызываться: у мока нет ожиданий.
			router, _ := newRouter(t)

			w := postGenerate(router, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, models.MsgMissingFields, decodeError(t, w))
		})
	}
}

func TestGenerate_ZeroAndNullLevelArePresent(t *testing.T) {
	for _, level := range []string{"0", "null"} {
		t.Run(level, func(t *testing.T) {
			router, svc := newRouter(t)
			svc.On("Generate", mock.Anything, mock.Anything).
				Return(&models.StoryData{Story: "s", Choice1: "a", Choice2: "b", ImageURL: "u"}, nil).Once()

			w := postGenerate(router, `{"prompt": "p", "language": "English", "technicalLevel": `+level+`}`)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestGenerate_ServiceFailureHidesCause(t *testing.T) {
	router, svc := newRouter(t)
	svc.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.Join(service.ErrAIGenerationFailed, errors.New("invalid api key sk-123"))).Once()

	w := postGenerate(router, `{"prompt": "p", "language": "English", "technicalLevel": 3}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, models.MsgGenerationFailed, decodeError(t, w))
	assert.NotContains(t, w.Body.String(), "sk-123")
}

func TestLanguages(t *testing.T) {
	router, _ := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got models.LanguagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.SupportedLanguages, got.Languages)
	assert.Equal(t, 3, got.DefaultLevel)
	assert.Equal(t, 1, got.MinLevel)
	assert.Equal(t, 5, got.MaxLevel)
}

func TestHealth(t *testing.T) {
	router, _ := newRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}
