package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a response holds no decodable JSON object.
var ErrNoJSON = errors.New("ai: response contains no JSON object")

var (
	fenceRe  = regexp.MustCompile("```(?i:json)?")
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// DecodeJSON strips markdown code fences from text and decodes the JSON object
// it holds into out. When the cleaned text does not parse, the outermost
// {...} span is extracted and decoded instead.
func DecodeJSON(text string, out any) error {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if cleaned == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}
	span := objectRe.FindString(cleaned)
	if span == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		return errors.Join(ErrNoJSON, err)
	}
	return nil
}
