package service

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const fallbackStyle = "using standard, engaging language."

var styleDescriptions = map[int]string{
	1: "using simple, clear, and easy-to-read language suitable for a young audience.",
	2: "using straightforward language with a slightly descriptive flair.",
	3: "using standard, engaging language with a good balance of description and action.",
	4: "using sophisticated vocabulary and more complex sentence structures for a literary feel.",
	5: "using highly technical, verbose, and ornate language with intricate sentence structures, like a classic piece of literature.",
}

// StyleDescription переводит уровень 1-5 в инструкцию о стиле текста.
// Для любого другого значения возвращается нейтральная формулировка.
func StyleDescription(level int) string {
	if desc, ok := styleDescriptions[level]; ok {
		return desc
	}
	return fallbackStyle
}

// StyleLevel приводит сырое значение technicalLevel к целому уровню так же, как Number() в браузере.
// Число берется как есть, строка разбирается как числовой литерал (пустая - 0),
// true/false дают 1/0, массив сначала склеивается в строку через запятую.
// NaN, бесконечность и дробные значения дают 0, то есть fallback.
func StyleLevel(raw json.RawMessage) int {
	value := jsNumber(bytes.TrimSpace(raw))
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0
	}
	if value > math.MaxInt32 || value < math.MinInt32 {
		return 0
	}
	return int(value)
}

func jsNumber(raw []byte) float64 {
	if len(raw) == 0 {
		return 0
	}
	switch raw[0] {
	case 'n', 'f':
		return 0
	case 't':
		return 1
	case '{':
		return math.NaN()
	case '"', '[':
		s, ok := jsString(raw)
		if !ok {
			return math.NaN()
		}
		return parseJSNumber(s)
	default:
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return math.NaN()
		}
		return value
	}
}

// jsString повторяет String(value) для примитивов и массивов.
// Для объектов ok == false: "[object Object]" все равно не число.
func jsString(raw []byte) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", false
		}
		parts := make([]string, len(items))
		for i, item := range items {
			// null внутри массива превращается в пустую строку.
			if string(bytes.TrimSpace(item)) == "null" {
				continue
			}
			part, ok := jsString(item)
			if !ok {
				return "", false
			}
			parts[i] = part
		}
		return strings.Join(parts, ","), true
	case '{':
		return "", false
	default:
		// Числа и true/false: текст JSON совпадает с String() по числовому значению.
		return string(raw), true
	}
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?)$`)

func parseJSNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	// При переполнении ParseFloat возвращает ±Inf вместе с ошибкой, это и нужно.
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
