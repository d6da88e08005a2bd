package trip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAllFieldsAtOnce(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{{
		contains: "data extraction agent",
		reply: `{
			"source": "Delhi",
			"destination": "Goa",
			"start_date": "June 10",
			"end_date": "June 15",
			"number_of_adults": "2",
			"number_of_children": "0",
			"budget_per_person": "20000",
			"travel_style": "economy"
		}`,
	}}}

	ext := NewExtractor(llm, nil)
	got, err := ext.Extract(context.Background(),
		nil, "I want to go from Delhi to Goa, 2 adults, no kids, budget 20000 INR, economy, June 10 to June 15")
	require.NoError(t, err)
	require.True(t, got.Parsed)

	req := NewRequest()
	req.Merge(got.Fields)
	assert.True(t, req.Complete())
	assert.Equal(t, "Goa", req["destination"])
	assert.Equal(t, "0", req["number_of_children"])
	require.Len(t, llm.calls, 1)
}

func TestExtractPartialInput(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{{
		contains: "data extraction agent",
		reply:    `{"destination": "Goa"}`,
	}}}

	ext := NewExtractor(llm, nil)
	got, err := ext.Extract(context.Background(), nil, "I want to go to Goa")
	require.NoError(t, err)
	require.True(t, got.Parsed)

	req := NewRequest()
	req.Merge(got.Fields)
	assert.False(t, req.Complete())
	assert.Equal(t,
		[]string{"source", "start_date", "end_date", "number_of_adults", "budget_per_person", "number_of_children", "travel_style"},
		req.Missing())
}

func TestExtractParseFailureIsSilent(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{{
		contains: "data extraction agent",
		reply:    "Sorry, I couldn't identify any travel details in that.",
	}}}

	ext := NewExtractor(llm, nil)
	got, err := ext.Extract(context.Background(), nil, "hmmmm")
	require.NoError(t, err)
	assert.False(t, got.Parsed)
	assert.Empty(t, got.Fields)

	// The raw reply is still surfaced so callers can show what the model said.
	assert.Equal(t, "Sorry, I couldn't identify any travel details in that.", got.Reply)
}

func TestExtractToleratesNumericValues(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{{
		contains: "data extraction agent",
		reply:    `{"number_of_adults": 2, "budget_per_person": 20000.5, "destination": "Goa"}`,
	}}}

	ext := NewExtractor(llm, nil)
	got, err := ext.Extract(context.Background(), nil, "2 adults, 20000.5 each, Goa")
	require.NoError(t, err)
	require.True(t, got.Parsed)
	assert.Equal(t, "2", got.Fields["number_of_adults"])
	assert.Equal(t, "20000.5", got.Fields["budget_per_person"])
}

func TestExtractAllEmptyValuesProducesNoChanges(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{{
		contains: "data extraction agent",
		reply:    `{"source": "", "destination": ""}`,
	}}}

	ext := NewExtractor(llm, nil)
	got, err := ext.Extract(context.Background(), nil, "nothing useful")
	require.NoError(t, err)
	require.True(t, got.Parsed)

	req := Request{"destination": "Goa"}
	req.Merge(got.Fields)
	assert.Equal(t, "Goa", req["destination"])
}

func TestExtractTransportErrorPropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	llm := &stubLLM{err: boom}

	ext := NewExtractor(llm, nil)
	_, err := ext.Extract(context.Background(), nil, "anything")
	assert.ErrorIs(t, err, boom)
}
