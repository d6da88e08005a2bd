package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"trippy/internal/trip"
)

// FlightQuery is one Google Flights search. ReturnDate empty means one-way.
type FlightQuery struct {
	Origin       string
	Destination  string
	OutboundDate string
	ReturnDate   string
}

type flightsResponse struct {
	BestFlights []struct {
		Flights []struct {
			DepartureAirport airportInfo `json:"departure_airport"`
			ArrivalAirport   airportInfo `json:"arrival_airport"`
			Airline          string      `json:"airline"`
			AirlineLogo      string      `json:"airline_logo"`
			TravelClass      string      `json:"travel_class"`
		} `json:"flights"`
		TotalDuration int         `json:"total_duration"`
		Price         json.Number `json:"price"`
	} `json:"best_flights"`
}

type airportInfo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// SearchFlights runs one flight search and normalizes the results.
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) ([]trip.FlightOption, error) {
	params := url.Values{}
	params.Set("hl", "en")
	params.Set("gl", "us")
	params.Set("departure_id", strings.ToUpper(strings.TrimSpace(q.Origin)))
	params.Set("arrival_id", strings.ToUpper(strings.TrimSpace(q.Destination)))
	params.Set("outbound_date", q.OutboundDate)
	params.Set("currency", "USD")
	if q.ReturnDate != "" {
		params.Set("return_date", q.ReturnDate)
		params.Set("type", "1") // round trip
	} else {
		params.Set("type", "2") // one-way
	}

	var resp flightsResponse
	if err := c.get(ctx, "google_flights", params, &resp); err != nil {
		return nil, err
	}

	c.log.Info("flight search completed",
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.Int("results", len(resp.BestFlights)))

	options := make([]trip.FlightOption, 0, len(resp.BestFlights))
	for _, f := range resp.BestFlights {
		if len(f.Flights) == 0 {
			continue
		}
		primary := f.Flights[0]

		duration := "N/A"
		if f.TotalDuration > 0 {
			duration = fmt.Sprintf("%d min", f.TotalDuration)
		}

		stops := "Nonstop"
		if n := len(f.Flights); n > 1 {
			stops = fmt.Sprintf("%d stop(s)", n-1)
		}

		airline := primary.Airline
		if airline == "" {
			airline = "Unknown Airline"
		}
		class := primary.TravelClass
		if class == "" {
			class = "Economy"
		}
		price := f.Price.String()
		if price == "" {
			price = "N/A"
		}

		options = append(options, trip.FlightOption{
			Airline:     airline,
			Price:       price,
			Duration:    duration,
			Stops:       stops,
			Departure:   formatAirport(primary.DepartureAirport, "departure"),
			Arrival:     formatAirport(primary.ArrivalAirport, "arrival"),
			TravelClass: class,
			AirlineLogo: primary.AirlineLogo,
		})
	}
	return options, nil
}

func formatAirport(a airportInfo, kind string) string {
	if a.Name == "" && a.ID == "" && a.Time == "" {
		return "Unknown " + kind
	}
	name := a.Name
	if name == "" {
		name = "Unknown Airport"
	}
	code := a.ID
	if code == "" {
		code = "???"
	}
	at := a.Time
	if at == "" {
		at = "N/A"
	}
	return fmt.Sprintf("%s (%s) at %s", name, code, at)
}
