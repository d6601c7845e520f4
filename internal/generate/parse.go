package generate

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"writer-studio/internal/apperr"
)

// Strategy pulls generated text out of a decoded response payload.
type Strategy struct {
	Name    string
	Extract func(payload any) (string, bool)
}

// Field reads a non-blank string at a dotted path such as "data.email".
func Field(path string) Strategy {
	keys := strings.Split(path, ".")
	return Strategy{
		Name: path,
		Extract: func(payload any) (string, bool) {
			cur := payload
			for _, k := range keys {
				obj, ok := cur.(map[string]any)
				if !ok {
					return "", false
				}
				if cur, ok = obj[k]; !ok {
					return "", false
				}
			}
			s, ok := cur.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return "", false
			}
			return s, true
		},
	}
}

// Text accepts a payload that is itself a JSON string.
func Text() Strategy {
	return Strategy{
		Name: "text",
		Extract: func(payload any) (string, bool) {
			s, ok := payload.(string)
			return s, ok && strings.TrimSpace(s) != ""
		},
	}
}

var (
	EmailStrategies = []Strategy{
		Field("email"),
		Field("data.email"),
		Field("output"),
		Field("message"),
		Text(),
	}

	PromptStrategies = []Strategy{
		Field("output"),
		Field("message"),
		Field("prompt"),
		Field("optimizedPrompt"),
		Field("data.optimizedPrompt"),
		Text(),
	}
)

// Parse decodes body, unwraps a single-element array and returns the text
// found by the first matching strategy. When none matches the error is a
// MALFORMED_RESPONSE naming every strategy tried.
func Parse(body []byte, strategies []Strategy) (string, error) {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperr.NewMalformedResponse(names)
	}
	if arr, ok := payload.([]any); ok {
		if len(arr) == 0 {
			return "", apperr.NewMalformedResponse(names)
		}
		payload = arr[0]
	}

	for _, s := range strategies {
		if text, ok := s.Extract(payload); ok {
			return text, nil
		}
	}
	return "", apperr.NewMalformedResponse(names)
}

var subjectLine = regexp.MustCompile(`Subject: (.+?)(?:\n\n|$)`)

// ExtractSubject returns the "Subject: ..." line of an email, or
// "<Purpose> Email" when the text has none.
func ExtractSubject(text, purpose string) string {
	if m := subjectLine.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return capitalize(strings.TrimSpace(purpose)) + " Email"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
