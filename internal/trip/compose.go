package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trippy/internal/ai"
)

// researchQueryTemplates are the fixed destination-research searches run before
// composition, each parameterized by destination.
var researchQueryTemplates = []string{
	"Must visit places in %s",
	"Crowd favourite places in %s",
	"Off beat places in %s",
	"Best food, drinks, restaurants to try in %s",
	"Best shopping places in %s",
}

const researchPromptTemplate = `Search Query: %s
Webpage Content: %s
Extract the relevant information from the webpage content based on the search query.

If possible extract the cost per person for each activity or place mentioned in the content.

If there is no webpage content found, you can use your own knowledge to answer the query.`

const itineraryPromptTemplate = `You are an excellent trip planner who is expert in creating detailed itineraries tailored to customer's need.

Based on the following information, create a detailed itinerary grouping the activities and places to visit for each day.

Try to include the places close to each other in the same day.

Information:
` + "```" + `
Destination: %s
Start Date: %s
End Date: %s
Budget per person: %s
Travel style: %s
Flights Info: %s
Hotels Info: %s
%s
` + "```" + `

The budget mention by the user is in INR (Indian Rupees).
The cost of flights and hotels provided to you are in USD (US Dollars). Assume 1 USD = 83 INR for conversion.

At the end of itinerary:
- Make a section to provide additional tips, must try food, sweets and beverages.
- Provide a summary of the total cost per person for the entire trip.
- Include the list of other important information like local transport, local customs and traditions etc.
- Include other famous places/activities which can be added to the itinerary based on user's feedback.
- Include the flight details and hotel details in the itinerary.

At the very end, also include that according to the dates, weather and budget, the best destination to visit is %s.
You are allowed to use knowledge of your own in addition to the information provided to create the itinerary.`

// Searcher returns the first usable result link for a query.
type Searcher interface {
	FirstLink(ctx context.Context, query string) (string, error)
}

// Fetcher retrieves a page as plain text. Failures come back as an inline
// error string, never as an error value.
type Fetcher interface {
	PlainText(ctx context.Context, url string) string
}

// Recommender resolves the weather-informed best-destination suggestion.
// Dates passed in are the already-converted YYYY-MM-DD forms.
type Recommender interface {
	Recommend(ctx context.Context, startDate, endDate, budget string) (string, error)
}

// Composer assembles the final narrative itinerary from destination research,
// the selected flights/hotels and the weather recommendation.
type Composer struct {
	llm       ai.Inferencer
	search    Searcher
	fetch     Fetcher
	recommend Recommender
	log       *zap.Logger
}

func NewComposer(llm ai.Inferencer, search Searcher, fetch Fetcher, recommend Recommender, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{llm: llm, search: search, fetch: fetch, recommend: recommend, log: log}
}

// Compose returns the itinerary text verbatim from the model; no structured
// parsing is attempted on it. Any error is converted by the caller into a
// user-visible message — composition never takes the session down.
func (c *Composer) Compose(ctx context.Context, req Request, flights *FlightSelection, hotels *HotelSelection) (string, error) {
	destination := req["destination"]

	// The five research queries are independent; run them concurrently and let
	// each collect its own failure inline.
	results := make([]string, len(researchQueryTemplates))
	queries := make([]string, len(researchQueryTemplates))
	g, gctx := errgroup.WithContext(ctx)
	for i, tpl := range researchQueryTemplates {
		query := fmt.Sprintf(tpl, destination)
		queries[i] = query
		g.Go(func() error {
			results[i] = c.researchQuery(gctx, query)
			return nil
		})
	}
	_ = g.Wait()

	startDate, err := ConvertDate(ctx, c.llm, req["start_date"])
	if err != nil {
		return "", fmt.Errorf("convert start date: %w", err)
	}
	endDate, err := ConvertDate(ctx, c.llm, req["end_date"])
	if err != nil {
		return "", fmt.Errorf("convert end date: %w", err)
	}

	bestDestination, err := c.recommend.Recommend(ctx, startDate, endDate, req["budget_per_person"])
	if err != nil {
		return "", fmt.Errorf("resolve best destination: %w", err)
	}

	var research strings.Builder
	for i, query := range queries {
		fmt.Fprintf(&research, "%s: %s\n", query, results[i])
	}

	prompt := fmt.Sprintf(itineraryPromptTemplate,
		destination,
		req["start_date"],
		req["end_date"],
		req["budget_per_person"],
		req.Style(),
		marshalSelection(flights),
		marshalSelection(hotels),
		strings.TrimRight(research.String(), "\n"),
		bestDestination,
	)

	return c.llm.Infer(ctx, prompt)
}

// researchQuery runs one search → scrape → model extraction round. All
// failures degrade to an inline message in place of findings.
func (c *Composer) researchQuery(ctx context.Context, query string) string {
	link, err := c.search.FirstLink(ctx, query)
	if err != nil {
		c.log.Warn("research search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Error retrieving information: %v", err)
	}

	var content string
	if link != "" {
		content = c.fetch.PlainText(ctx, link)
	}

	answer, err := c.llm.Infer(ctx, fmt.Sprintf(researchPromptTemplate, query, content))
	if err != nil {
		c.log.Warn("research extraction failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Error retrieving information: %v", err)
	}
	return answer
}

func marshalSelection(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(payload)
}
