package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_ai_requests_total",
			Help: "Total number of text generation requests to the AI provider.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_ai_request_duration_seconds",
			Help:    "Histogram of text generation request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 10), // 100..1000
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(50, 50, 10), // 50..500
		},
		[]string{"model"},
	)

	imageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_image_requests_total",
			Help: "Total number of image generation requests.",
		},
		[]string{"model", "status"},
	)
	imageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyforge_image_request_duration_seconds",
			Help:    "Histogram of image generation request durations.",
			Buckets: []float64{1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90},
		},
		[]string{"model"},
	)

	storyGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyforge_story_generations_total",
			Help: "Total number of chapter generations by outcome.",
		},
		[]string{"status"},
	)
)

func observeTokens(model string, usage UsageInfo) {
	if usage.TotalTokens <= 0 && usage.PromptTokens <= 0 {
		return
	}
	aiPromptTokens.WithLabelValues(model).Observe(float64(usage.PromptTokens))
	if usage.CompletionTokens > 0 {
		aiCompletionTokens.WithLabelValues(model).Observe(float64(usage.CompletionTokens))
	}
}
