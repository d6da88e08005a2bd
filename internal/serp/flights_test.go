package serp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flightsFixture = `{
	"best_flights": [
		{
			"flights": [
				{
					"departure_airport": {"name": "Indira Gandhi International Airport", "id": "DEL", "time": "2025-06-10 08:00"},
					"arrival_airport": {"name": "Goa International Airport", "id": "GOI", "time": "2025-06-10 10:30"},
					"airline": "IndiGo",
					"airline_logo": "https://example.com/6e.png",
					"travel_class": "Economy"
				}
			],
			"total_duration": 150,
			"price": 120
		},
		{
			"flights": [
				{
					"departure_airport": {"name": "Indira Gandhi International Airport", "id": "DEL", "time": "2025-06-10 06:00"},
					"arrival_airport": {"name": "Chhatrapati Shivaji Airport", "id": "BOM", "time": "2025-06-10 08:05"},
					"airline": "Vistara",
					"travel_class": "Economy"
				},
				{
					"departure_airport": {"name": "Chhatrapati Shivaji Airport", "id": "BOM", "time": "2025-06-10 09:10"},
					"arrival_airport": {"name": "Goa International Airport", "id": "GOI", "time": "2025-06-10 10:20"},
					"airline": "Vistara",
					"travel_class": "Economy"
				}
			],
			"total_duration": 260,
			"price": 95
		},
		{
			"flights": []
		}
	]
}`

func TestSearchFlights(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(flightsFixture))
	}))
	defer srv.Close()

	c := NewClient("test-key", nil).WithEndpoint(srv.URL)
	got, err := c.SearchFlights(context.Background(), FlightQuery{
		Origin:       " del ",
		Destination:  "goi",
		OutboundDate: "2025-06-10",
		ReturnDate:   "2025-06-15",
	})
	require.NoError(t, err)

	// Request mapping.
	assert.Equal(t, "google_flights", gotQuery["engine"])
	assert.Equal(t, "DEL", gotQuery["departure_id"])
	assert.Equal(t, "GOI", gotQuery["arrival_id"])
	assert.Equal(t, "1", gotQuery["type"]) // round trip
	assert.Equal(t, "USD", gotQuery["currency"])

	// Normalization: segmentless entries are skipped.
	require.Len(t, got, 2)
	assert.Equal(t, "IndiGo", got[0].Airline)
	assert.Equal(t, "120", got[0].Price)
	assert.Equal(t, "150 min", got[0].Duration)
	assert.Equal(t, "Nonstop", got[0].Stops)
	assert.Equal(t, "Indira Gandhi International Airport (DEL) at 2025-06-10 08:00", got[0].Departure)
	assert.Equal(t, "Goa International Airport (GOI) at 2025-06-10 10:30", got[0].Arrival)

	assert.Equal(t, "1 stop(s)", got[1].Stops)
	assert.Equal(t, "95", got[1].Price)
}

func TestSearchFlightsOneWay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("type"))
		assert.Empty(t, r.URL.Query().Get("return_date"))
		_, _ = w.Write([]byte(`{"best_flights": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", nil).WithEndpoint(srv.URL)
	got, err := c.SearchFlights(context.Background(), FlightQuery{
		Origin: "DEL", Destination: "GOI", OutboundDate: "2025-06-10",
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchFlightsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Your searches for the month are exhausted."}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", nil).WithEndpoint(srv.URL)
	_, err := c.SearchFlights(context.Background(), FlightQuery{
		Origin: "DEL", Destination: "GOI", OutboundDate: "2025-06-10",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "google_flights", apiErr.Engine)
	assert.Contains(t, apiErr.Message, "exhausted")
}
