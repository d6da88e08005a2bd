package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse reports that a model reply carried no decodable JSON payload.
var ErrParse = errors.New("no parsable JSON in model reply")

// DecodeObject decodes a JSON object out of a free-text model reply.
// It attempts a strict parse of the whole reply first and only falls back to
// scanning for the outermost brace pair as salvage. Decode failures are
// reported as ErrParse, never propagated as panics.
func DecodeObject(reply string, v any) error {
	return decodeLoose(reply, "{", "}", v)
}

// DecodeArray is DecodeObject for top-level JSON arrays.
func DecodeArray(reply string, v any) error {
	return decodeLoose(reply, "[", "]", v)
}

func decodeLoose(reply, opener, closer string, v any) error {
	cleaned := stripFences(reply)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	start := strings.Index(cleaned, opener)
	end := strings.LastIndex(cleaned, closer)
	if start == -1 || end == -1 || end < start {
		return ErrParse
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// stripFences removes markdown code blocks if present (e.g. ```json ... ```).
func stripFences(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
