package trip

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"trippy/internal/ai"
)

const extractionPromptTemplate = `You are a data extraction agent. Your task is to extract the following fields from user input: %s.

User Input: %s

Response Format:
` + "```" + `
{
    "source": "value",
    "destination": "value",
    "start_date": "value",
    "end_date": "value",
    "number_of_adults": "value",
    "budget_per_person": "value",
    "number_of_children": "value",
    "travel_style": "value"
}
` + "```" + `

If a field is not mentioned in the user input, do not include it in your response.

Any response other than this format will be rejected by the system.`

// Extraction is the outcome of one structured-extraction call. Reply always
// carries the raw model reply; Parsed is false when it held no decodable
// JSON. That case is silent — the caller simply learns no new fields.
type Extraction struct {
	Fields map[string]string
	Reply  string
	Parsed bool
}

// Extractor turns free-text user input into a partial field record with one
// model call.
type Extractor struct {
	llm ai.Inferencer
	log *zap.Logger
}

func NewExtractor(llm ai.Inferencer, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{llm: llm, log: log}
}

// Extract asks the model for the trip fields present in userInput. The prior
// transcript is passed along so references like "same as before" resolve.
// A parse failure yields an unparsed Extraction and no error; only transport
// exhaustion is returned as an error.
func (e *Extractor) Extract(ctx context.Context, history []ai.Message, userInput string) (Extraction, error) {
	prompt := fmt.Sprintf(extractionPromptTemplate, strings.Join(RequiredFields, ", "), userInput)

	reply, err := e.llm.InferMessages(ctx, history, prompt)
	if err != nil {
		return Extraction{}, err
	}

	raw := map[string]any{}
	if err := ai.DecodeObject(reply, &raw); err != nil {
		e.log.Debug("extraction reply not parsable, treating as no new info", zap.Error(err))
		return Extraction{Reply: reply}, nil
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if s := stringifyField(v); s != "" {
			fields[k] = s
		}
	}

	return Extraction{Fields: fields, Reply: reply, Parsed: true}, nil
}

// stringifyField tolerates models emitting numbers where strings were asked for.
func stringifyField(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
