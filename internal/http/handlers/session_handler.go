// README: Session handlers — sidebar view, reset, itinerary history.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trippy/internal/history"
	"trippy/internal/service"
)

// HistoryLister reads a session's archived itineraries. Nil when the archive
// is not configured.
type HistoryLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]history.Record, error)
}

type SessionHandler struct {
	planner *service.Planner
	history HistoryLister
}

func NewSessionHandler(planner *service.Planner, history HistoryLister) *SessionHandler {
	return &SessionHandler{planner: planner, history: history}
}

// View handles GET /api/sessions/:id.
func (h *SessionHandler) View(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}

	view, err := h.planner.SessionView(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

// Reset handles POST /api/sessions/:id/reset.
func (h *SessionHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := h.planner.Reset(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "reset"})
}

// History handles GET /api/sessions/:id/history.
func (h *SessionHandler) History(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	if h.history == nil {
		writeError(c, http.StatusNotFound, "itinerary archive not configured")
		return
	}

	records, err := h.history.ListBySession(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"itineraries": records})
}
