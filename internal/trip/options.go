package trip

import (
	"fmt"
	"strings"
)

// FlightOption is one normalized flight record produced by the flight adapter.
// Values stay strings: they are rendered into prompts and chat messages, never
// computed on.
type FlightOption struct {
	Airline     string `json:"airline"`
	Price       string `json:"price"`
	Duration    string `json:"duration"`
	Stops       string `json:"stops"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	TravelClass string `json:"travel_class"`
	AirlineLogo string `json:"airline_logo,omitempty"`
}

// FlightResults pairs the two one-way searches of a round trip.
type FlightResults struct {
	Outbound []FlightOption `json:"start_flights"`
	Return   []FlightOption `json:"end_flights"`
}

// HotelOption is one normalized hotel record produced by the hotel adapter.
type HotelOption struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	PricePerNight string   `json:"price_per_night"`
	TotalPrice    string   `json:"total_price"`
	Rating        string   `json:"rating"`
	Reviews       int      `json:"reviews"`
	HotelClass    string   `json:"hotel_class"`
	Location      string   `json:"location"`
	Amenities     string   `json:"amenities"`
	Images        []string `json:"images"`
	CheckInTime   string   `json:"check_in_time"`
	CheckOutTime  string   `json:"check_out_time"`
	PropertyToken string   `json:"property_token,omitempty"`
	Link          string   `json:"link,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// FlightSelection is the model-chosen best outbound/return pair. Either leg may
// be nil when the model reply omits it.
type FlightSelection struct {
	Ongoing *FlightOption `json:"ongoing_flight"`
	Return  *FlightOption `json:"return_flight"`
}

// HotelChoice is the model-chosen best hotel. Its fields mirror the reply
// format the ranking prompt dictates, which is narrower than HotelOption and
// names the nightly rate plain "price".
type HotelChoice struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Rating    string `json:"rating"`
	Location  string `json:"location"`
	Amenities string `json:"amenities"`
}

// HotelSelection is the model-chosen best hotel.
type HotelSelection struct {
	Hotel *HotelChoice `json:"hotel"`
}

// FormatFlights renders a compact, human-readable summary of flight options for
// the chat transcript. limit <= 0 shows every option.
func FormatFlights(flights []FlightOption, limit int) string {
	if len(flights) == 0 {
		return "No flights found."
	}
	count := len(flights)
	if limit > 0 && limit < count {
		count = limit
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Flight search results (showing %d of %d):\n", count, len(flights))
	for i, f := range flights[:count] {
		fmt.Fprintf(&sb, "%d. %s — %s$, %s, %s\n   Departure: %s\n   Arrival: %s\n   Class: %s\n",
			i+1, f.Airline, f.Price, f.Duration, f.Stops, f.Departure, f.Arrival, f.TravelClass)
	}
	return strings.TrimRight(sb.String(), "\n")
}
