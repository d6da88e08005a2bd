// Package session holds per-conversation planner state and its stores.
package session

import (
	"context"
	"errors"
	"time"

	"trippy/internal/ai"
	"trippy/internal/trip"
)

// ErrNotFound is returned by stores when no session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Session is the full state of one planning conversation.
type Session struct {
	ID         string          `json:"id"`
	Stage      trip.Stage      `json:"stage"`
	Request    trip.Request    `json:"request"`
	Transcript []ai.Message    `json:"transcript"`

	FlightOptions *trip.FlightResults   `json:"flight_options,omitempty"`
	HotelOptions  []trip.HotelOption    `json:"hotel_options,omitempty"`
	Flights       *trip.FlightSelection `json:"flights,omitempty"`
	Hotel         *trip.HotelSelection  `json:"hotel,omitempty"`
	Itinerary     string                `json:"itinerary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh session at the information-gathering stage.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Stage:     trip.StageCollectingInfo,
		Request:   trip.NewRequest(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset wipes everything except the ID and creation time, returning the
// conversation to the first stage.
func (s *Session) Reset() {
	s.Stage = trip.StageCollectingInfo
	s.Request = trip.NewRequest()
	s.Transcript = nil
	s.FlightOptions = nil
	s.HotelOptions = nil
	s.Flights = nil
	s.Hotel = nil
	s.Itinerary = ""
	s.UpdatedAt = time.Now().UTC()
}

// Store persists sessions between turns.
type Store interface {
	// Get loads a session; ErrNotFound when the ID is unknown.
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
