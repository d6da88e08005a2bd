package weather

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"trippy/internal/ai"
)

const suggestionPromptTemplate = `Given the following travel parameters:
    - Total Budget: ₹%s
    - Start Date: %s
    - End Date: %s
    - Duration: %d days

    Suggest 5 suitable travel destinations that fit within this budget.
    For each destination, provide only the city name and country.

    Return the response in this exact JSON format:
    ` + "```" + `
    [
        {
            "destination": "City Name",
            "country": "Country Name"
        },
        ...
    ]
    ` + "```" + `
    Only return the JSON array, no other text.`

const rerankPromptTemplate = `Based on the weather forecasts for different destinations:

%s

Travel Dates: %s to %s

Analyze the weather conditions and recommend the best destination to visit during these dates.
Consider factors like temperature, rain probability, and overall conditions.
Return the suggestions in order of preference (best first).

Return the response in this exact JSON format:
[
    {"destination": "City Name", "country": "Country Name"}
]

Order the destinations from best to worst weather conditions.
Only return the JSON array, no other text.`

// horizonDays bounds how far ahead the forecast-based re-rank applies; trips
// starting later fall back to the budget-only suggestions.
const horizonDays = 14

// Suggestion is one candidate destination proposed by the model.
type Suggestion struct {
	Destination string `json:"destination"`
	Country     string `json:"country"`
}

func (s Suggestion) String() string {
	return s.Destination + ", " + s.Country
}

// Recommender proposes candidate destinations from the trip budget and
// dates, then re-ranks them by forecast when the trip starts within the
// provider's horizon.
type Recommender struct {
	llm      ai.Inferencer
	forecast *Client
	log      *zap.Logger

	now func() time.Time
}

func NewRecommender(llm ai.Inferencer, forecast *Client, log *zap.Logger) *Recommender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recommender{
		llm:      llm,
		forecast: forecast,
		log:      log,
		now:      time.Now,
	}
}

// Recommend returns the best destination for the trip window as display
// text. Within the forecast horizon it is the single weather-ranked winner;
// beyond it, the full candidate list.
func (r *Recommender) Recommend(ctx context.Context, startDate, endDate, budget string) (string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", fmt.Errorf("weather: parse start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return "", fmt.Errorf("weather: parse end date %q: %w", endDate, err)
	}
	duration := int(end.Sub(start).Hours()/24) + 1

	prompt := fmt.Sprintf(suggestionPromptTemplate, budget, startDate, endDate, duration)
	reply, err := r.llm.Infer(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("weather: suggest destinations: %w", err)
	}
	var suggestions []Suggestion
	if err := ai.DecodeArray(reply, &suggestions); err != nil {
		return "", fmt.Errorf("weather: parse suggestions: %w", err)
	}
	if len(suggestions) == 0 {
		return "", fmt.Errorf("weather: model returned no destination suggestions")
	}

	if !r.withinHorizon(start) {
		return formatSuggestions(suggestions), nil
	}

	summary := r.weatherSummary(ctx, suggestions, startDate, endDate)
	if summary == "" {
		// No forecast reachable for any candidate; budget ranking stands.
		return formatSuggestions(suggestions), nil
	}

	reply, err = r.llm.Infer(ctx, fmt.Sprintf(rerankPromptTemplate, summary, startDate, endDate))
	if err != nil {
		return "", fmt.Errorf("weather: rank destinations: %w", err)
	}
	var ranked []Suggestion
	if err := ai.DecodeArray(reply, &ranked); err != nil {
		return "", fmt.Errorf("weather: parse ranking: %w", err)
	}
	if len(ranked) == 0 {
		return formatSuggestions(suggestions), nil
	}
	return ranked[0].String(), nil
}

// withinHorizon reports whether the trip starts between today and
// horizonDays from now.
func (r *Recommender) withinHorizon(start time.Time) bool {
	days := int(math.Floor(start.Sub(r.now()).Hours() / 24))
	return days >= 0 && days <= horizonDays
}

// weatherSummary fetches the forecast for each candidate and renders the
// block fed to the ranking prompt. Candidates whose forecast fails are
// skipped; an empty string means none succeeded.
func (r *Recommender) weatherSummary(ctx context.Context, suggestions []Suggestion, startDate, endDate string) string {
	var b strings.Builder
	b.WriteString("Weather conditions for each destination:\n\n")

	found := false
	for _, s := range suggestions {
		location := s.String()
		days, err := r.forecast.Forecast(ctx, location, startDate, endDate)
		if err != nil {
			r.log.Warn("forecast unavailable", zap.String("location", location), zap.Error(err))
			continue
		}
		if len(days) == 0 {
			continue
		}
		found = true
		b.WriteString(location + ":\n")
		for _, d := range days {
			fmt.Fprintf(&b, "- %s: %s, %g°C to %g°C, %g%% chance of rain\n",
				d.Date, d.Conditions, d.TempMin, d.TempMax, d.RainChance)
		}
		b.WriteString("\n")
	}
	if !found {
		return ""
	}
	return b.String()
}

func formatSuggestions(suggestions []Suggestion) string {
	names := make([]string, len(suggestions))
	for i, s := range suggestions {
		names[i] = s.String()
	}
	return strings.Join(names, "; ")
}
