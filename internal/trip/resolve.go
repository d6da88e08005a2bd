package trip

import (
	"context"
	"fmt"
	"strings"

	"trippy/internal/ai"
)

const (
	airportCodePromptTemplate = `What is the short form of %s airport to book flight from API? Just reply with the short form, nothing else. If there is no airport, reply with 'N/A'.`

	datePromptTemplate = `Convert the following date in YYYY-MM-DD format: %s. Just reply with the date, nothing else. Assume that the current year is 2025`
)

// NoAirportError reports the N/A sentinel from airport-code resolution. It is
// surfaced to the user and halts flight search only.
type NoAirportError struct {
	Location string
}

func (e *NoAirportError) Error() string {
	return fmt.Sprintf("no airport found for %s", e.Location)
}

// ResolveAirportCode asks the model for the IATA short code of a free-text
// location. The literal sentinel "N/A" (case-insensitive, trimmed) becomes a
// NoAirportError carrying the offending location.
func ResolveAirportCode(ctx context.Context, llm ai.Inferencer, location string) (string, error) {
	reply, err := llm.Infer(ctx, fmt.Sprintf(airportCodePromptTemplate, location))
	if err != nil {
		return "", err
	}
	code := strings.TrimSpace(reply)
	if strings.EqualFold(code, "N/A") {
		return "", &NoAirportError{Location: location}
	}
	return code, nil
}

// ConvertDate normalizes a free-text date to YYYY-MM-DD with one model call.
func ConvertDate(ctx context.Context, llm ai.Inferencer, raw string) (string, error) {
	reply, err := llm.Infer(ctx, fmt.Sprintf(datePromptTemplate, raw))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
