package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSchemaViolation is returned when model output cannot be decoded into
// the declared target schema, either directly or from a markdown code fence.
// A violating response is a failure, never a partial success.
var ErrSchemaViolation = errors.New("model output violates target schema")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Decode strictly unmarshals model output into T. If direct decoding fails,
// it extracts JSON from a markdown code fence and retries. Unknown fields are
// rejected. Returns ErrSchemaViolation if no attempt yields a conforming value.
func Decode[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := decodeStrict(content, &result); err == nil {
		return result, nil
	}

	matches := jsonBlockRegex.FindStringSubmatch(content)
	if len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := decodeStrict(cleaned, &result); err == nil {
			return result, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("%w: %s", ErrSchemaViolation, content)
}

func decodeStrict(content string, v any) error {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
