package models

// SupportedLanguages - языки, которые предлагает интерфейс (отображаемые названия).
// Сервер не ограничивает language этим списком: строка уходит в модель как есть.
var SupportedLanguages = []string{"English", "Español", "Français", "Deutsch", "日本語"}

const (
	DefaultLanguage   = "English"
	MinStyleLevel     = 1
	MaxStyleLevel     = 5
	DefaultStyleLevel = 3
)
