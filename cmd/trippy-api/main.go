// README: Entry point; loads config, wires providers and the planner, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trippy/internal/ai"
	"trippy/internal/config"
	"trippy/internal/history"
	httptransport "trippy/internal/http"
	"trippy/internal/http/handlers"
	"trippy/internal/infra"
	"trippy/internal/search"
	"trippy/internal/serp"
	"trippy/internal/service"
	"trippy/internal/session"
	"trippy/internal/trip"
	"trippy/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := ai.NewClient(ctx, ai.StaticKey(cfg.GeminiKey), logger)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}

	serpClient := serp.NewClient(cfg.SerpKey, logger)

	searchClient := search.NewClient(cfg.GoogleSearchKey, cfg.GoogleSearchEngineID, logger)
	if cfg.GoogleSearchEndpoint != "" {
		searchClient = searchClient.WithEndpoint(cfg.GoogleSearchEndpoint)
	}

	weatherClient := weather.NewClient(cfg.WeatherKey, logger)
	recommender := weather.NewRecommender(llm, weatherClient, logger)

	composer := trip.NewComposer(llm, searchClient, search.NewPageFetcher(), recommender, logger)

	redisClient := infra.NewRedis(cfg.RedisAddr)
	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL)

	var (
		archive       service.Archiver
		historyLister handlers.HistoryLister
	)
	if cfg.PostgresDSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		store := history.NewStore(dbPool)
		archive = store
		historyLister = store
	}

	planner := service.NewPlanner(llm, composer, serpClient, serpClient, sessions, archive, logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httptransport.NewRouter(planner, historyLister, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
