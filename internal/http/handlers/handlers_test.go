// README: Handler tests over a stub-backed planner.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trippy/internal/ai"
	"trippy/internal/history"
	"trippy/internal/http/handlers"
	"trippy/internal/serp"
	"trippy/internal/service"
	"trippy/internal/session"
	"trippy/internal/trip"
)

type stubLLM struct{}

func (stubLLM) Infer(_ context.Context, _ string) (string, error) {
	return "OK", nil
}

func (stubLLM) InferMessages(_ context.Context, _ []ai.Message, _ string) (string, error) {
	return `{"destination": "Goa"}`, nil
}

type stubFlights struct{}

func (stubFlights) SearchFlights(_ context.Context, _ serp.FlightQuery) ([]trip.FlightOption, error) {
	return nil, nil
}

type stubHotels struct{}

func (stubHotels) SearchHotels(_ context.Context, _ serp.HotelQuery) ([]trip.HotelOption, error) {
	return nil, nil
}

type stubComposer struct{}

func (stubComposer) Compose(_ context.Context, _ trip.Request, _ *trip.FlightSelection, _ *trip.HotelSelection) (string, error) {
	return "itinerary", nil
}

type stubHistory struct {
	records []history.Record
	err     error
}

func (s *stubHistory) ListBySession(_ context.Context, _ string) ([]history.Record, error) {
	return s.records, s.err
}

func buildTestRouter(t *testing.T, hist handlers.HistoryLister) (*gin.Engine, *session.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := session.NewMemoryStore()
	planner := service.NewPlanner(stubLLM{}, stubComposer{}, stubFlights{}, stubHotels{}, sessions, nil, nil)

	r := gin.New()
	chatHandler := handlers.NewChatHandler(planner)
	r.POST("/api/chat", chatHandler.Chat)
	sessionHandler := handlers.NewSessionHandler(planner, hist)
	r.GET("/api/sessions/:id", sessionHandler.View)
	r.POST("/api/sessions/:id/reset", sessionHandler.Reset)
	r.GET("/api/sessions/:id/history", sessionHandler.History)
	return r, sessions
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat(t *testing.T) {
	r, _ := buildTestRouter(t, nil)

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{
		"session_id": "sess-1",
		"message":    "I want to go to Goa",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reply service.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0], "I still need the following information:")
	assert.Equal(t, trip.StageCollectingInfo, reply.Stage)
	assert.Equal(t, 25, reply.Progress)
}

func TestChatValidation(t *testing.T) {
	r, _ := buildTestRouter(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing session_id", map[string]string{"message": "hi"}},
		{"missing message", map[string]string{"session_id": "sess-1"}},
		{"bad session_id", map[string]string{"session_id": "no spaces allowed", "message": "hi"}},
		{"not json", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSessionView(t *testing.T) {
	r, _ := buildTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/sessions/sess-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	doRequest(r, http.MethodPost, "/api/chat", map[string]string{
		"session_id": "sess-1",
		"message":    "I want to go to Goa",
	})

	w = doRequest(r, http.MethodGet, "/api/sessions/sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view service.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "sess-1", view.ID)
	assert.Equal(t, "Goa", view.Collected["destination"])
	assert.Contains(t, view.Missing, "departure city/location")
}

func TestSessionReset(t *testing.T) {
	r, sessions := buildTestRouter(t, nil)

	doRequest(r, http.MethodPost, "/api/chat", map[string]string{
		"session_id": "sess-1",
		"message":    "I want to go to Goa",
	})

	w := doRequest(r, http.MethodPost, "/api/sessions/sess-1/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	s, err := sessions.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, s.Request)
	assert.Equal(t, trip.StageCollectingInfo, s.Stage)

	// Unknown session resets are not an error.
	w = doRequest(r, http.MethodPost, "/api/sessions/never-seen/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHistory(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		hist := &stubHistory{records: []history.Record{
			{ID: 1, SessionID: "sess-1", Destination: "Goa", Itinerary: "Day 1"},
		}}
		r, _ := buildTestRouter(t, hist)

		w := doRequest(r, http.MethodGet, "/api/sessions/sess-1/history", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Itineraries []history.Record `json:"itineraries"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Itineraries, 1)
		assert.Equal(t, "Goa", body.Itineraries[0].Destination)
	})

	t.Run("not configured", func(t *testing.T) {
		r, _ := buildTestRouter(t, nil)
		w := doRequest(r, http.MethodGet, "/api/sessions/sess-1/history", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		r, _ := buildTestRouter(t, &stubHistory{err: errors.New("connection refused")})
		w := doRequest(r, http.MethodGet, "/api/sessions/sess-1/history", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
