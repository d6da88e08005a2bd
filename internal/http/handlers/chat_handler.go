// README: Chat handler — one user turn through the planner.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trippy/internal/service"
)

// chatTimeout bounds a full turn. Completing the field set triggers provider
// searches and itinerary composition in the same request, so this is long.
const chatTimeout = 5 * time.Minute

type ChatHandler struct {
	planner *service.Planner
}

func NewChatHandler(planner *service.Planner) *ChatHandler {
	return &ChatHandler{planner: planner}
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)
	if req.SessionID == "" || req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing session_id or message")
		return
	}
	if !isValidID(req.SessionID) {
		writeError(c, http.StatusBadRequest, "invalid session_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	reply, err := h.planner.HandleMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, reply)
}
