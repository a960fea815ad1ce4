package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"storyforge/internal/logger"
)

// Типы AI клиента для генерации текста.
const (
	AIClientOpenAI = "openai"
	AIClientOllama = "ollama"
)

// Config содержит конфигурацию сервера генерации историй.
type Config struct {
	AppEnv string `env:"APP_ENV" env-default:"development"`

	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`
	LogEncoding   string `env:"LOG_ENCODING" env-default:"json"`
	LogOutputPath string `env:"LOG_OUTPUT_PATH" env-default:""`

	Server    ServerConfig
	AI        AIConfig
	Image     ImageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// ServerConfig - настройки HTTP сервера.
// WriteTimeout должен покрывать оба запроса к провайдеру: генерация картинки бывает долгой.
type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"180s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// AIConfig - генерация текста.
type AIConfig struct {
	ClientType    string        `env:"AI_CLIENT_TYPE" env-default:"openai"`
	APIKey        string        `env:"OPENAI_API_KEY" env-required:"true"`
	BaseURL       string        `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OllamaBaseURL string        `env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
	Model         string        `env:"AI_MODEL" env-default:"gpt-4-turbo"`
	Timeout       time.Duration `env:"AI_TIMEOUT" env-default:"0s"` // 0 - без таймаута
}

// ImageConfig - генерация иллюстраций. Ключ и базовый URL берутся из AIConfig.
type ImageConfig struct {
	Model             string `env:"IMAGE_MODEL" env-default:"dall-e-3"`
	Size              string `env:"IMAGE_SIZE" env-default:"1024x1024"`
	Quality           string `env:"IMAGE_QUALITY" env-default:"standard"`
	PromptStyleSuffix string `env:"IMAGE_PROMPT_STYLE_SUFFIX" env-default:", cinematic, digital painting, atmospheric, concept art"`
}

// CORSConfig - разрешенные источники.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:8080"`
}

// RateLimitConfig - ограничение частоты запросов к /api/generate по IP. 0 отключает лимит.
type RateLimitConfig struct {
	PerMinute uint `env:"RATE_LIMIT_PER_MINUTE" env-default:"10"`
}

// RedisConfig - общее хранилище для rate limiter. Пустой адрес - лимит в памяти процесса.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Load загружает конфигурацию из переменных окружения и .env файла (если он есть).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, которые cleanenv проверить не может.
func (c *Config) Validate() error {
	c.AI.ClientType = strings.ToLower(strings.TrimSpace(c.AI.ClientType))
	switch c.AI.ClientType {
	case AIClientOpenAI, AIClientOllama:
	default:
		return fmt.Errorf("unknown AI_CLIENT_TYPE %q (expected %q or %q)", c.AI.ClientType, AIClientOpenAI, AIClientOllama)
	}
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is empty")
	}
	if c.Image.PromptStyleSuffix == "" {
		return fmt.Errorf("IMAGE_PROMPT_STYLE_SUFFIX must not be empty")
	}
	return nil
}

// LoggerConfig собирает настройки для logger.New.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Encoding:   c.LogEncoding,
		OutputPath: c.LogOutputPath,
	}
}

// IsDevelopment - режим разработки (gin в debug режиме).
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
