package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyforge/internal/middleware"
	"storyforge/internal/models"
	"storyforge/internal/service"
)

// StoryHandler обрабатывает HTTP запросы генерации историй.
type StoryHandler struct {
	service service.StoryGenerator
	logger  *zap.Logger
}

// NewStoryHandler создает новый StoryHandler.
func NewStoryHandler(s service.StoryGenerator, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		service: s,
		logger:  logger.Named("StoryHandler"),
	}
}

// RegisterRoutes регистрирует маршруты API.
// generateMiddleware применяется только к POST /api/generate (например, rate limit).
func (h *StoryHandler) RegisterRoutes(router gin.IRouter, generateMiddleware ...gin.HandlerFunc) {
	router.GET("/health", h.health)
	router.HEAD("/health", h.health)

	api := router.Group("/api")
	{
		api.GET("/languages", h.languages)
		api.POST("/generate", append(generateMiddleware, h.generate)...)
	}
}

// generate - POST /api/generate.
// Тело: {"prompt": "...", "language": "...", "technicalLevel": 3}.
func (h *StoryHandler) generate(c *gin.Context) {
	log := h.logger.With(zap.String("request_id", middleware.RequestID(c)))

	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid generate request body", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: models.MsgMissingFields})
		return
	}
	if !req.IsComplete() {
		log.Warn("Generate request is missing required fields",
			zap.Bool("has_prompt", req.Prompt != ""),
			zap.Bool("has_language", req.Language != ""),
			zap.Bool("has_technical_level", req.HasTechnicalLevel()),
		)
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: models.MsgMissingFields})
		return
	}

	story, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		log.Error("Story generation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: models.MsgGenerationFailed})
		return
	}

	c.JSON(http.StatusOK, story)
}

// languages - GET /api/languages. Список языков и диапазон уровня стиля для клиентов.
func (h *StoryHandler) languages(c *gin.Context) {
	c.JSON(http.StatusOK, models.LanguagesResponse{
		Languages:    models.SupportedLanguages,
		DefaultLevel: models.DefaultStyleLevel,
		MinLevel:     models.MinStyleLevel,
		MaxLevel:     models.MaxStyleLevel,
	})
}

func (h *StoryHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
