package models

// Тексты ошибок, которые видит клиент. Причина сбоя наружу не отдается.
const (
	MsgMissingFields    = "Prompt, language, and technicalLevel are required"
	MsgGenerationFailed = "Failed to generate story. Please try again."
	MsgTooManyRequests  = "Too many requests. Please slow down."
)

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Error string `json:"error"`
}
