// Package service orchestrates the conversation: field extraction, provider
// searches, ranking and itinerary composition, advancing the session stage.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trippy/internal/ai"
	"trippy/internal/history"
	"trippy/internal/serp"
	"trippy/internal/session"
	"trippy/internal/trip"
)

const (
	msgInfoComplete    = "Great! I have all the information I need. Let me search for flights and hotels for you..."
	msgFlightsFound    = "✅ Found flight options!"
	msgHotelsFound     = "✅ Found hotel options!"
	msgFlightsSelected = "✅ Selected best flights based on your preferences!"
	msgHotelsSelected  = "✅ Selected best hotels based on your preferences!"
	msgCreating        = "Now let me create your personalized itinerary..."
	msgItineraryReady  = "🎉 **Your Personalized Travel Itinerary is Ready!**\n\n"
)

// FlightSearcher finds flight options for a one-way or round trip.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, q serp.FlightQuery) ([]trip.FlightOption, error)
}

// HotelSearcher finds hotel options for a stay.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, q serp.HotelQuery) ([]trip.HotelOption, error)
}

// ItineraryComposer produces the final itinerary text.
type ItineraryComposer interface {
	Compose(ctx context.Context, req trip.Request, flights *trip.FlightSelection, hotels *trip.HotelSelection) (string, error)
}

// Archiver persists completed itineraries. Failures are logged, never
// surfaced to the user.
type Archiver interface {
	Save(ctx context.Context, r *history.Record) error
}

// Reply carries the assistant messages produced by one user turn, in order.
type Reply struct {
	Messages []string   `json:"messages"`
	Stage    trip.Stage `json:"stage"`
	Progress int        `json:"progress"`
}

func (r *Reply) add(msg string) {
	r.Messages = append(r.Messages, msg)
}

// Planner drives a session through the planning stages.
type Planner struct {
	llm       ai.Inferencer
	extractor *trip.Extractor
	ranker    *trip.Ranker
	composer  ItineraryComposer
	flights   FlightSearcher
	hotels    HotelSearcher
	sessions  session.Store
	archive   Archiver
	log       *zap.Logger
}

func NewPlanner(
	llm ai.Inferencer,
	composer ItineraryComposer,
	flights FlightSearcher,
	hotels HotelSearcher,
	sessions session.Store,
	archive Archiver,
	log *zap.Logger,
) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		llm:       llm,
		extractor: trip.NewExtractor(llm, log),
		ranker:    trip.NewRanker(llm, log),
		composer:  composer,
		flights:   flights,
		hotels:    hotels,
		sessions:  sessions,
		archive:   archive,
		log:       log,
	}
}

// HandleMessage processes one user turn and returns all assistant messages it
// produced. Completing the field set runs search, ranking and composition in
// the same turn.
func (p *Planner) HandleMessage(ctx context.Context, sessionID, input string) (*Reply, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		s = session.New(sessionID)
	} else if err != nil {
		return nil, err
	}

	reply := &Reply{}
	switch s.Stage {
	case trip.StageCollectingInfo:
		if err := p.collect(ctx, s, input, reply); err != nil {
			return nil, err
		}
	case trip.StageSearching:
		// A previous turn was interrupted mid-search; resume it.
		p.search(ctx, s, reply)
		p.compose(ctx, s, reply)
	case trip.StageCreatingItinerary:
		p.compose(ctx, s, reply)
	case trip.StageCompleted:
		if err := p.followUp(ctx, s, input, reply); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("session %s in unknown stage %q", s.ID, s.Stage)
	}

	s.UpdatedAt = time.Now().UTC()
	if err := p.sessions.Put(ctx, s); err != nil {
		return nil, err
	}

	reply.Stage = s.Stage
	reply.Progress = s.Stage.Progress()
	return reply, nil
}

// collect extracts fields from the input and either asks for what is still
// missing or, once complete, runs the whole pipeline.
func (p *Planner) collect(ctx context.Context, s *session.Session, input string, reply *Reply) error {
	ext, err := p.extractor.Extract(ctx, s.Transcript, input)
	if err != nil {
		return err
	}
	if ext.Parsed {
		s.Request.Merge(ext.Fields)
		s.Transcript = append(s.Transcript,
			ai.Message{Role: "user", Content: input},
			ai.Message{Role: "assistant", Content: ext.Reply},
		)
	}

	if !s.Request.Complete() {
		reply.add(s.Request.MissingMessage())
		return nil
	}

	reply.add(msgInfoComplete)
	s.Stage = trip.StageSearching
	p.search(ctx, s, reply)
	p.compose(ctx, s, reply)
	return nil
}

// search runs the flight and hotel lookups concurrently, then ranks whatever
// came back. Provider failures become chat messages, never errors; a failed
// leg just leaves its selection empty for the composer.
func (p *Planner) search(ctx context.Context, s *session.Session, reply *Reply) {
	startDate, endDate, err := p.convertDates(ctx, s.Request)
	if err != nil {
		reply.add(fmt.Sprintf("⚠️ Flight search error: %v", err))
		reply.add(fmt.Sprintf("⚠️ Hotel search error: %v", err))
		reply.add(msgCreating)
		s.Stage = trip.StageCreatingItinerary
		return
	}

	var (
		flightResults *trip.FlightResults
		hotelOptions  []trip.HotelOption
		flightErr     error
		hotelErr      error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		flightResults, flightErr = p.searchFlights(gctx, s.Request, startDate, endDate)
		return nil
	})
	g.Go(func() error {
		hotelOptions, hotelErr = p.searchHotels(gctx, s.Request, startDate, endDate)
		return nil
	})
	_ = g.Wait()

	if flightErr != nil {
		reply.add(fmt.Sprintf("⚠️ Flight search error: %v", flightErr))
	} else {
		s.FlightOptions = flightResults
		reply.add(msgFlightsFound + "\n\n" + trip.FormatFlights(flightResults.Outbound, 3))
	}

	if hotelErr != nil {
		reply.add(fmt.Sprintf("⚠️ Hotel search error: %v", hotelErr))
	} else {
		s.HotelOptions = hotelOptions
		reply.add(msgHotelsFound)
	}

	budget := s.Request["budget_per_person"]
	style := s.Request.Style()
	if s.FlightOptions != nil {
		selection, err := p.ranker.BestFlight(ctx, *s.FlightOptions, budget, style)
		if err != nil {
			p.log.Warn("flight ranking failed", zap.String("session", s.ID), zap.Error(err))
		} else {
			s.Flights = selection
			reply.add(msgFlightsSelected)
		}
	}
	if s.HotelOptions != nil {
		selection, err := p.ranker.BestHotel(ctx, s.HotelOptions, budget, style)
		if err != nil {
			p.log.Warn("hotel ranking failed", zap.String("session", s.ID), zap.Error(err))
		} else {
			s.Hotel = selection
			reply.add(msgHotelsSelected)
		}
	}

	reply.add(msgCreating)
	s.Stage = trip.StageCreatingItinerary
}

func (p *Planner) convertDates(ctx context.Context, req trip.Request) (string, string, error) {
	startDate, err := trip.ConvertDate(ctx, p.llm, req["start_date"])
	if err != nil {
		return "", "", fmt.Errorf("could not normalize start date: %v", err)
	}
	endDate, err := trip.ConvertDate(ctx, p.llm, req["end_date"])
	if err != nil {
		return "", "", fmt.Errorf("could not normalize end date: %v", err)
	}
	return startDate, endDate, nil
}

// searchFlights resolves airport codes and runs the outbound and return legs
// as two one-way searches.
func (p *Planner) searchFlights(ctx context.Context, req trip.Request, startDate, endDate string) (*trip.FlightResults, error) {
	sourceCode, err := trip.ResolveAirportCode(ctx, p.llm, req["source"])
	if err != nil {
		var noAirport *trip.NoAirportError
		if errors.As(err, &noAirport) {
			return nil, fmt.Errorf("No airport found for source: %s", req["source"])
		}
		return nil, err
	}
	destCode, err := trip.ResolveAirportCode(ctx, p.llm, req["destination"])
	if err != nil {
		var noAirport *trip.NoAirportError
		if errors.As(err, &noAirport) {
			return nil, fmt.Errorf("No airport found for destination: %s", req["destination"])
		}
		return nil, err
	}

	outbound, err := p.flights.SearchFlights(ctx, serp.FlightQuery{
		Origin:       sourceCode,
		Destination:  destCode,
		OutboundDate: startDate,
	})
	if err != nil {
		return nil, err
	}
	returning, err := p.flights.SearchFlights(ctx, serp.FlightQuery{
		Origin:       destCode,
		Destination:  sourceCode,
		OutboundDate: endDate,
	})
	if err != nil {
		return nil, err
	}
	return &trip.FlightResults{Outbound: outbound, Return: returning}, nil
}

func (p *Planner) searchHotels(ctx context.Context, req trip.Request, startDate, endDate string) ([]trip.HotelOption, error) {
	adults, err := strconv.Atoi(strings.TrimSpace(req["number_of_adults"]))
	if err != nil {
		return nil, fmt.Errorf("invalid number of adults: %q", req["number_of_adults"])
	}
	children, err := strconv.Atoi(strings.TrimSpace(req["number_of_children"]))
	if err != nil {
		return nil, fmt.Errorf("invalid number of children: %q", req["number_of_children"])
	}

	return p.hotels.SearchHotels(ctx, serp.HotelQuery{
		Location:     req["destination"],
		CheckIn:      startDate,
		CheckOut:     endDate,
		Adults:       adults,
		Children:     children,
		ChildrenAges: childrenAges(children),
	})
}

// childrenAges fills in a placeholder age per child since age is not part of
// the collected fields.
func childrenAges(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("8,", count), ",")
}

// compose builds the final itinerary and closes out the session. The ready
// banner is emitted either way; a composition failure is reported inside it.
func (p *Planner) compose(ctx context.Context, s *session.Session, reply *Reply) {
	itinerary, err := p.composer.Compose(ctx, s.Request, s.Flights, s.Hotel)
	if err != nil {
		p.log.Warn("itinerary composition failed", zap.String("session", s.ID), zap.Error(err))
		itinerary = fmt.Sprintf("Error creating itinerary: %v", err)
	} else {
		p.archiveItinerary(ctx, s, itinerary)
	}

	s.Itinerary = itinerary
	s.Stage = trip.StageCompleted
	reply.add(msgItineraryReady + itinerary)
}

func (p *Planner) archiveItinerary(ctx context.Context, s *session.Session, itinerary string) {
	if p.archive == nil {
		return
	}
	err := p.archive.Save(ctx, &history.Record{
		SessionID:   s.ID,
		Source:      s.Request["source"],
		Destination: s.Request["destination"],
		StartDate:   s.Request["start_date"],
		EndDate:     s.Request["end_date"],
		Itinerary:   itinerary,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		p.log.Warn("itinerary archive failed", zap.String("session", s.ID), zap.Error(err))
	}
}

// followUp answers free-form questions about the finished itinerary.
func (p *Planner) followUp(ctx context.Context, s *session.Session, input string, reply *Reply) error {
	prompt := fmt.Sprintf("Based on the travel itinerary I created for you:\n\n%s\n\n%s", s.Itinerary, input)
	answer, err := p.llm.Infer(ctx, prompt)
	if err != nil {
		return err
	}
	s.Transcript = append(s.Transcript,
		ai.Message{Role: "user", Content: input},
		ai.Message{Role: "assistant", Content: answer},
	)
	reply.add(answer)
	return nil
}

// Reset returns the session to a blank collecting state, preserving the ID.
func (p *Planner) Reset(ctx context.Context, sessionID string) error {
	s, err := p.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.Reset()
	return p.sessions.Put(ctx, s)
}

// View is the sidebar snapshot of a session.
type View struct {
	ID        string            `json:"id"`
	Stage     trip.Stage        `json:"stage"`
	Progress  int               `json:"progress"`
	Collected map[string]string `json:"collected"`
	Missing   []string          `json:"missing"`
	Itinerary string            `json:"itinerary,omitempty"`
}

// SessionView reports collected fields, still-missing fields (display names)
// and stage progress for a session.
func (p *Planner) SessionView(ctx context.Context, sessionID string) (*View, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	missing := s.Request.Missing()
	readable := make([]string, len(missing))
	for i, field := range missing {
		readable[i] = trip.DisplayName(field)
	}
	return &View{
		ID:        s.ID,
		Stage:     s.Stage,
		Progress:  s.Stage.Progress(),
		Collected: s.Request,
		Missing:   readable,
		Itinerary: s.Itinerary,
	}, nil
}
