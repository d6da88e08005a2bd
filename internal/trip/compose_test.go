package trip

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	mu    sync.Mutex
	links map[string]string
	err   error
	calls []string
}

func (s *stubSearcher) FirstLink(_ context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	if s.err != nil {
		return "", s.err
	}
	return s.links[query], nil
}

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) PlainText(_ context.Context, url string) string {
	if text, ok := f.pages[url]; ok {
		return text
	}
	return "Error scraping URL " + url + ": connection refused"
}

type stubRecommender struct {
	suggestion string
	err        error
	gotStart   string
	gotEnd     string
}

func (r *stubRecommender) Recommend(_ context.Context, startDate, endDate, _ string) (string, error) {
	r.gotStart, r.gotEnd = startDate, endDate
	return r.suggestion, r.err
}

func composerRequest() Request {
	return Request{
		"source": "Delhi", "destination": "Goa",
		"start_date": "June 10", "end_date": "June 15",
		"number_of_adults": "2", "number_of_children": "0",
		"budget_per_person": "20000", "travel_style": "economy",
	}
}

func TestComposeProducesItinerary(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{
		{contains: "Convert the following date in YYYY-MM-DD format: June 10", reply: "2025-06-10"},
		{contains: "Convert the following date in YYYY-MM-DD format: June 15", reply: "2025-06-15"},
		{contains: "Search Query:", reply: "Beaches and forts are the highlights."},
		{contains: "excellent trip planner", reply: "Day 1: arrive in Goa..."},
	}}
	search := &stubSearcher{links: map[string]string{
		"Must visit places in Goa": "https://example.com/goa",
	}}
	fetch := &stubFetcher{pages: map[string]string{
		"https://example.com/goa": "Baga Beach, Fort Aguada, spice farms.",
	}}
	rec := &stubRecommender{suggestion: "Goa, India"}

	c := NewComposer(llm, search, fetch, rec, nil)
	flights := &FlightSelection{Ongoing: &FlightOption{Airline: "IndiGo", Price: "120"}}
	hotel := &HotelSelection{Hotel: &HotelChoice{Name: "Budget Inn", Price: "25", Rating: "3.9"}}
	got, err := c.Compose(context.Background(), composerRequest(), flights, hotel)
	require.NoError(t, err)
	assert.Equal(t, "Day 1: arrive in Goa...", got)

	// All five research queries issued, each parameterized by destination.
	require.Len(t, search.calls, 5)
	for _, q := range search.calls {
		assert.Contains(t, q, "Goa")
	}

	// Recommender receives the already-converted dates.
	assert.Equal(t, "2025-06-10", rec.gotStart)
	assert.Equal(t, "2025-06-15", rec.gotEnd)

	// The composition prompt carries the fixed conversion rate, the selected
	// flights and hotel with their prices, and the resolved best destination.
	final := llm.calls[len(llm.calls)-1]
	assert.Contains(t, final, "Assume 1 USD = 83 INR")
	assert.Contains(t, final, "IndiGo")
	assert.Contains(t, final, `"return_flight":null`)
	assert.Contains(t, final, `"name":"Budget Inn"`)
	assert.Contains(t, final, `"price":"25"`)
	assert.Contains(t, final, "Goa, India")
}

func TestComposeSearchFailureIsInline(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{
		{contains: "Convert the following date", reply: "2025-06-10"},
		{contains: "excellent trip planner", reply: "itinerary text"},
	}}
	search := &stubSearcher{err: errors.New("quota exceeded")}
	rec := &stubRecommender{suggestion: "Goa, India"}

	c := NewComposer(llm, search, &stubFetcher{}, rec, nil)
	got, err := c.Compose(context.Background(), composerRequest(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "itinerary text", got)

	final := llm.calls[len(llm.calls)-1]
	assert.Contains(t, final, "Error retrieving information: quota exceeded")
}

func TestComposeScrapeFailureStillExtracts(t *testing.T) {
	var sawInline bool
	llm := &stubLLM{rules: []stubRule{
		{contains: "Convert the following date", reply: "2025-06-10"},
		{contains: "Error scraping URL", reply: "from my own knowledge: beaches"},
		{contains: "Search Query:", reply: "generic findings"},
		{contains: "excellent trip planner", reply: "itinerary text"},
	}}
	search := &stubSearcher{links: map[string]string{
		"Must visit places in Goa": "https://dead.example.com/page",
	}}
	rec := &stubRecommender{suggestion: "Goa, India"}

	c := NewComposer(llm, search, &stubFetcher{}, rec, nil)
	_, err := c.Compose(context.Background(), composerRequest(), nil, nil)
	require.NoError(t, err)

	for _, call := range llm.calls {
		if strings.Contains(call, "Error scraping URL") {
			sawInline = true
		}
	}
	assert.True(t, sawInline, "scrape error string should be substituted as webpage content")
}

func TestComposeRecommenderFailureAborts(t *testing.T) {
	llm := &stubLLM{rules: []stubRule{
		{contains: "Convert the following date", reply: "2025-06-10"},
		{contains: "Search Query:", reply: "findings"},
	}}
	rec := &stubRecommender{err: errors.New("weather api down")}

	c := NewComposer(llm, &stubSearcher{}, &stubFetcher{}, rec, nil)
	_, err := c.Compose(context.Background(), composerRequest(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "best destination")
}
