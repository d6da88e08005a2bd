// README: Trip domain model — accumulated request fields, stages, normalized options.
package trip

import (
	"fmt"
	"strings"
)

// RequiredFields lists the trip parameters the assistant must collect before
// searching. Missing fields are always reported in this declared order.
var RequiredFields = []string{
	"source",
	"destination",
	"start_date",
	"end_date",
	"number_of_adults",
	"budget_per_person",
	"number_of_children",
	"travel_style",
}

// displayNames maps field keys to the wording shown to the user. A key absent
// here falls back to the raw field name.
var displayNames = map[string]string{
	"source":             "departure city/location",
	"destination":        "destination city/country",
	"start_date":         "start date of travel",
	"end_date":           "end date of travel",
	"number_of_adults":   "number of adults",
	"budget_per_person":  "budget per person",
	"number_of_children": "number of children",
	"travel_style":       "travel style (economy/balanced/luxury)",
}

// DisplayName returns the user-facing wording for a field key, falling back
// to the raw key.
func DisplayName(field string) string {
	if name, ok := displayNames[field]; ok {
		return name
	}
	return field
}

// Request accumulates user-supplied trip parameters. Values are kept as the
// loosely-typed strings the model extracts; normalization (airport codes,
// YYYY-MM-DD dates) happens at the provider boundary.
type Request map[string]string

func NewRequest() Request {
	return Request{}
}

// Merge folds non-empty extracted fields into the request. A field once set to
// a non-empty value is retained even when a later extraction omits it.
func (r Request) Merge(fields map[string]string) {
	for k, v := range fields {
		if v != "" {
			r[k] = v
		}
	}
}

// Missing returns the required fields that are absent or empty, in declared order.
func (r Request) Missing() []string {
	var missing []string
	for _, field := range RequiredFields {
		if r[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Complete reports whether every required field has a non-empty value.
func (r Request) Complete() bool {
	return len(r.Missing()) == 0
}

// MissingMessage renders a user-facing sentence naming the still-needed fields.
func (r Request) MissingMessage() string {
	missing := r.Missing()
	if len(missing) == 0 {
		return "All required information collected!"
	}
	readable := make([]string, len(missing))
	for i, field := range missing {
		readable[i] = DisplayName(field)
	}
	return fmt.Sprintf("I still need the following information: %s. Please provide these details.", strings.Join(readable, ", "))
}

// Style returns the travel style, defaulting to "balanced" when unset.
func (r Request) Style() string {
	if s := r["travel_style"]; s != "" {
		return s
	}
	return "balanced"
}

// Stage is the conversation's phase in the fixed forward-only sequence.
type Stage string

const (
	StageCollectingInfo    Stage = "collecting_info"
	StageSearching         Stage = "searching_flights_hotels"
	StageCreatingItinerary Stage = "creating_itinerary"
	StageCompleted         Stage = "completed"
)

// Progress maps the stage onto the monotonic 4-step indicator.
func (s Stage) Progress() int {
	switch s {
	case StageCollectingInfo:
		return 25
	case StageSearching:
		return 50
	case StageCreatingItinerary:
		return 75
	case StageCompleted:
		return 100
	}
	return 0
}
