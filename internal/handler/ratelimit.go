package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storyforge/internal/config"
	"storyforge/internal/models"
)

// NewRateLimiter возвращает middleware ограничения частоты запросов по IP клиента.
// Если redisClient == nil, счетчики живут в памяти процесса.
// PerMinute == 0 отключает ограничение.
func NewRateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if cfg.PerMinute == 0 {
		logger.Info("Rate limiting disabled")
		return func(c *gin.Context) { c.Next() }
	}

	var store rateli.Store
	if redisClient != nil {
		logger.Info("Using Redis rate limit store", zap.Uint("per_minute", cfg.PerMinute))
		store = rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       cfg.PerMinute,
		})
	} else {
		logger.Info("Using in-memory rate limit store", zap.Uint("per_minute", cfg.PerMinute))
		store = rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  time.Minute,
			Limit: cfg.PerMinute,
		})
	}

	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			retryAfter := int(math.Ceil(time.Until(info.ResetTime).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			logger.Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: models.MsgTooManyRequests})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
