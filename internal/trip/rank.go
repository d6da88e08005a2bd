package trip

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"trippy/internal/ai"
)

// The tie-break policy below is advisory text to the model, not a computed
// score: "balanced" in particular has no algorithmic definition.
const bestFlightPromptTemplate = `You are a flight booking assistant. Your task is to find the best flight based on user's budget and travel style.

Budget per person: %s
Travel style: %s

Here are the available flights:
%s

The best flight depends on both budget and travel style. For example,
- if the travel style is "economy", prioritize cheaper flights even if they have longer durations, off timings or more stops.
- if the travel style is "luxury", prioritize shorter durations, better timings and fewer stops even if they are more expensive.
- if the travel style is "balanced", find a good compromise between cost and convenience.

Based on the above criteria, select the best flight and provide the details in the following format:
` + "```" + `
{
    "ongoing_flight": {
        "airline": "value",
        "price": "value",
        "duration": "value",
        "stops": "value",
        "departure": "value",
        "arrival": "value",
        "travel_class": "value"
    },
    "return_flight": {
        "airline": "value",
        "price": "value",
        "duration": "value",
        "stops": "value",
        "departure": "value",
        "arrival": "value",
        "travel_class": "value"
    }
}
` + "```" + `

Any response other than this format will be rejected by the system.`

const bestHotelPromptTemplate = `You are a hotel booking assistant. Your task is to find the best hotel based on user's budget and travel style.

Budget per person: %s
Travel style: %s

Here are the available hotels:
%s

The best hotel depends on both budget and travel style. For example,
- if the travel style is "economy", prioritize cheaper hotels even if they have fewer amenities or less desirable locations.
- if the travel style is "luxury", prioritize hotels with more amenities, better locations, and higher ratings even if they are more expensive.
- if the travel style is "balanced", find a good compromise between cost and quality.

Based on the above criteria, select the best hotel and provide the details in the following format:
` + "```" + `
{
    "hotel": {
        "name": "value",
        "price": "value",
        "rating": "value",
        "location": "value",
        "amenities": "value"
    }
}
` + "```" + `

Any response other than this format will be rejected by the system.`

// Ranker asks the model to pick one best option from a normalized list.
type Ranker struct {
	llm ai.Inferencer
	log *zap.Logger
}

func NewRanker(llm ai.Inferencer, log *zap.Logger) *Ranker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ranker{llm: llm, log: log}
}

// BestFlight selects the best outbound/return pair. A malformed model reply is
// reported as ai.ErrParse; callers proceed with a nil selection.
func (r *Ranker) BestFlight(ctx context.Context, flights FlightResults, budget, style string) (*FlightSelection, error) {
	payload, err := json.Marshal(flights)
	if err != nil {
		return nil, fmt.Errorf("marshal flight options: %w", err)
	}

	reply, err := r.llm.Infer(ctx, fmt.Sprintf(bestFlightPromptTemplate, budget, style, payload))
	if err != nil {
		return nil, err
	}

	var sel FlightSelection
	if err := ai.DecodeObject(reply, &sel); err != nil {
		r.log.Warn("could not parse best-flight reply", zap.Error(err))
		return nil, err
	}
	return &sel, nil
}

// BestHotel selects the best hotel from the normalized list.
func (r *Ranker) BestHotel(ctx context.Context, hotels []HotelOption, budget, style string) (*HotelSelection, error) {
	payload, err := json.Marshal(hotels)
	if err != nil {
		return nil, fmt.Errorf("marshal hotel options: %w", err)
	}

	reply, err := r.llm.Infer(ctx, fmt.Sprintf(bestHotelPromptTemplate, budget, style, payload))
	if err != nil {
		return nil, err
	}

	var sel HotelSelection
	if err := ai.DecodeObject(reply, &sel); err != nil {
		r.log.Warn("could not parse best-hotel reply", zap.Error(err))
		return nil, err
	}
	return &sel, nil
}
