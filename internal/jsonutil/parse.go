// Package jsonutil pulls a JSON object out of a model's text response. Models
// are asked for bare JSON but sometimes wrap it in markdown fences or add a
// sentence before or after it.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNoJSON is returned when the text holds no JSON object.
var ErrNoJSON = errors.New("no JSON object found")

// StripFences removes a surrounding ```json ... ``` or ``` ... ``` block.
// Text without an opening fence is returned trimmed.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line, including any language tag.
	nl := strings.IndexByte(text, '\n')
	if nl == -1 {
		return text
	}
	body := text[nl+1:]
	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ExtractObject returns the first balanced {...} in text. Braces inside JSON
// strings are ignored.
func ExtractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object starting at offset %d", start)
}

// ParseObject strips fences, extracts the first object, and unmarshals it
// into T.
func ParseObject[T any](raw string) (T, error) {
	var zero T
	obj, err := ExtractObject(StripFences(raw))
	if err != nil {
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	var result T
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, Preview(obj, 200))
	}
	return result, nil
}

// Preview truncates s to at most n bytes for log and error messages,
// without splitting a UTF-8 sequence.
func Preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
