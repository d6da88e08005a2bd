// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trippy/internal/http/handlers"
	"trippy/internal/http/middleware"
	"trippy/internal/service"
)

func NewRouter(planner *service.Planner, historyStore handlers.HistoryLister, log *zap.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	chatHandler := handlers.NewChatHandler(planner)
	r.POST("/api/chat", chatHandler.Chat)

	sessionHandler := handlers.NewSessionHandler(planner, historyStore)
	r.GET("/api/sessions/:id", sessionHandler.View)
	r.POST("/api/sessions/:id/reset", sessionHandler.Reset)
	r.GET("/api/sessions/:id/history", sessionHandler.History)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
