// Package session - клиентская сессия интерактивной истории.
//
// Состояние хранится одним значением (Initial, Loading, Display, Failed).
// Одновременно выполняется не больше одного запроса генерации. Restart
// отменяет запрос в полете и увеличивает счетчик поколений: ответ, пришедший
// после Restart, отбрасывается и состояние не трогает.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storyforge/internal/models"
)

var (
	ErrEmptyPrompt       = errors.New("prompt is empty")
	ErrBusy              = errors.New("a chapter is already being generated")
	ErrStale             = errors.New("response discarded: session was restarted")
	ErrInvalidTransition = errors.New("action is not allowed in the current state")
	ErrInvalidChoice     = errors.New("choice must be 1 or 2")
)

// Тексты, которые видит пользователь.
const (
	InitialText  = "Your story will appear here..."
	LoadingText  = "Crafting your tale..."
	FailureText  = "An error occurred. Please try starting a new story."
	FailureAlert = "Something went wrong. Please check the console and try again."
)

// Generator - источник глав (storyclient.Client или service.StoryGenerator).
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.StoryData, error)
}

// Phase - вид состояния сессии.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseLoading
	PhaseDisplay
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseLoading:
		return "loading"
	case PhaseDisplay:
		return "display"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State - снимок состояния. Prompt заполнен в Loading, Chapter в Display, Message в Failed.
type State struct {
	Phase   Phase
	Prompt  string
	Chapter *models.StoryData
	Message string
}

// Text возвращает текст, который показывается в области истории.
func (s State) Text() string {
	switch s.Phase {
	case PhaseLoading:
		return LoadingText
	case PhaseDisplay:
		return s.Chapter.Story
	case PhaseFailed:
		return s.Message
	default:
		return InitialText
	}
}

// Session - одна интерактивная история. Безопасна для конкурентного использования.
type Session struct {
	gen    Generator
	logger *zap.Logger

	mu         sync.Mutex
	language   string
	level      int
	state      State
	generation uint64
	cancel     context.CancelFunc
}

// New создает сессию с языком и уровнем стиля по умолчанию (English, 3).
func New(gen Generator, logger *zap.Logger) *Session {
	return &Session{
		gen:      gen,
		logger:   logger.Named("Session"),
		language: models.DefaultLanguage,
		level:    models.DefaultStyleLevel,
	}
}

// State возвращает копию текущего состояния.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Settings возвращает язык и уровень стиля, которые уходят с каждым запросом.
func (s *Session) Settings() (language string, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language, s.level
}

// SetLanguage меняет язык следующих глав. Во время загрузки запрещено.
func (s *Session) SetLanguage(language string) error {
	language = strings.TrimSpace(language)
	if language == "" {
		return fmt.Errorf("%w: language is empty", ErrInvalidTransition)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == PhaseLoading {
		return ErrBusy
	}
	s.language = language
	return nil
}

// SetLevel меняет уровень стиля. Значение вне 1..5 сервер обработает стилем по умолчанию.
func (s *Session) SetLevel(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == PhaseLoading {
		return ErrBusy
	}
	s.level = level
	return nil
}

// Start начинает новую историю. Разрешено из Initial и Failed.
func (s *Session) Start(ctx context.Context, prompt string) (*models.StoryData, error) {
	return s.generate(ctx, prompt, PhaseInitial, PhaseFailed)
}

// Choose продолжает историю выбранной развилкой (1 или 2).
func (s *Session) Choose(ctx context.Context, index int) (*models.StoryData, error) {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if st.Phase == PhaseLoading {
		return nil, ErrBusy
	}
	if st.Phase != PhaseDisplay {
		return nil, fmt.Errorf("%w: choose in %s state", ErrInvalidTransition, st.Phase)
	}
	if index < 1 || index > 2 {
		return nil, ErrInvalidChoice
	}
	return s.generate(ctx, st.Chapter.Choices()[index-1], PhaseDisplay)
}

// Continue продолжает историю произвольным текстом пользователя.
func (s *Session) Continue(ctx context.Context, text string) (*models.StoryData, error) {
	return s.generate(ctx, text, PhaseDisplay)
}

// Restart сбрасывает сессию в Initial из любого другого состояния.
// Запрос в полете отменяется, его ответ будет отброшен.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == PhaseInitial {
		return fmt.Errorf("%w: session is already initial", ErrInvalidTransition)
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.logger.Debug("Session restarted", zap.String("from", s.state.Phase.String()), zap.Uint64("generation", s.generation))
	s.state = State{Phase: PhaseInitial}
	return nil
}

func (s *Session) generate(ctx context.Context, prompt string, allowed ...Phase) (*models.StoryData, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	s.mu.Lock()
	from := s.state.Phase
	if from == PhaseLoading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if !phaseIn(from, allowed) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: generate in %s state", ErrInvalidTransition, from)
	}

	s.generation++
	generation := s.generation
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = State{Phase: PhaseLoading, Prompt: prompt}
	req := models.NewGenerationRequest(prompt, s.language, s.level)
	s.mu.Unlock()

	log := s.logger.With(zap.Uint64("generation", generation))
	log.Debug("Requesting chapter", zap.String("from", from.String()))

	story, err := s.gen.Generate(reqCtx, req)
	cancel()
	if err == nil && story == nil {
		err = errors.New("generator returned no chapter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		log.Debug("Discarding stale response", zap.Error(err))
		return nil, ErrStale
	}
	s.cancel = nil

	if err != nil {
		log.Warn("Chapter generation failed", zap.Error(err))
		s.state = State{Phase: PhaseFailed, Message: FailureText}
		return nil, err
	}

	s.state = State{Phase: PhaseDisplay, Chapter: story}
	return story, nil
}

func phaseIn(p Phase, allowed []Phase) bool {
	for _, a := range allowed {
		if p == a {
			return true
		}
	}
	return false
}
